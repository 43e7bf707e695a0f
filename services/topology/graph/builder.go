// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"log/slog"
	"strings"

	"github.com/AleutianAI/mqtopo/services/topology/cmdb"
	"github.com/AleutianAI/mqtopo/services/topology/registry"
)

// Stats holds per-build counters for operator diagnostics. Nothing
// downstream consumes them.
type Stats struct {
	// TotalRecords is the number of records handed to Build.
	TotalRecords int `json:"total_records"`

	// SkippedRecords counts records dropped for a missing manager name.
	SkippedRecords int `json:"skipped_records"`

	// SenderRecords counts SENDER records with a non-empty asset.
	SenderRecords int `json:"sender_records"`

	// ReceiverRecords counts RECEIVER records with a non-empty asset.
	ReceiverRecords int `json:"receiver_records"`

	// InboundResolved counts receive endpoints resolved to a manager.
	InboundResolved int `json:"inbound_resolved"`

	// OutboundResolved counts send endpoints resolved to a manager.
	OutboundResolved int `json:"outbound_resolved"`

	// InboundExtra counts unresolved receive endpoints.
	InboundExtra int `json:"inbound_extra"`

	// OutboundExtra counts unresolved send endpoints.
	OutboundExtra int `json:"outbound_extra"`

	// AppMatches counts endpoints classified as catalog applications.
	AppMatches int `json:"app_matches"`

	// AliasResolutions counts name lookups that went through an alias
	// binding, for record managers and matched endpoints alike.
	AliasResolutions int `json:"alias_resolutions"`
}

// Builder constructs queue manager graphs from CMDB records.
//
// The builder is stateless and can be reused across runs. Each Build()
// call creates a new frozen graph.
//
// Thread Safety:
//
//	Builder is safe for concurrent use. Each Build() call operates
//	independently with its own internal state.
type Builder struct {
	aliases *registry.AliasTable
	apps    *registry.AppCatalog
	logger  *slog.Logger
}

// NewBuilder creates a Builder with the given reference tables.
//
// Description:
//
//	The alias table feeds manager name resolution; the application
//	catalog classifies endpoints that are not managers. Either may be
//	nil, which behaves like an empty table: a deployment with no
//	reference data still builds a graph, with every non-manager
//	endpoint landing in the extra sets.
//
// Inputs:
//
//	aliases - Manager alias table, may be nil.
//	apps - Application catalog, may be nil.
//	logger - Build summary logging. Nil falls back to slog.Default().
func NewBuilder(aliases *registry.AliasTable, apps *registry.AppCatalog, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if aliases == nil {
		aliases = registry.NewAliasTable(nil, logger)
	}
	if apps == nil {
		apps = registry.NewAppCatalog(nil, nil, logger)
	}
	return &Builder{aliases: aliases, apps: apps, logger: logger}
}

// Build constructs a frozen graph from the given records.
//
// Description:
//
//	Runs the index pass over all records, then the resolve pass, then
//	freezes the graph. Records without a manager name are skipped and
//	counted. The ordering of SENDER and RECEIVER records does not
//	affect the result because edge insertion is commutative and
//	idempotent on sets.
//
// Inputs:
//
//	records - Parsed CMDB records, in export order.
//
// Outputs:
//
//	*Graph - The frozen graph. Nil on error.
//	Stats - Build counters, valid even on error.
//	error - ErrNoRecords when the record list is empty.
func (b *Builder) Build(records []cmdb.Record) (*Graph, Stats, error) {
	stats := Stats{TotalRecords: len(records)}
	if len(records) == 0 {
		return nil, stats, ErrNoRecords
	}

	idx := buildIndex(records, b.aliases)
	b.logger.Info("manager index built", "managers", len(idx.valid))

	g := NewGraph()
	for _, rec := range records {
		b.resolveRecord(g, idx, rec, &stats)
	}
	g.Freeze()

	b.logger.Info("manager graph built",
		"managers", g.NodeCount(),
		"edges", g.EdgeCount(),
		"directorates", len(g.Directorates()),
		"sender_records", stats.SenderRecords,
		"receiver_records", stats.ReceiverRecords,
		"alias_resolutions", stats.AliasResolutions)
	return g, stats, nil
}

// resolveRecord applies one record to the graph: queue counts first,
// then edge inference for SENDER/RECEIVER roles.
func (b *Builder) resolveRecord(g *Graph, idx *managerIndex, rec cmdb.Record, stats *Stats) {
	if rec.Manager == "" {
		stats.SkippedRecords++
		return
	}

	canon := b.aliases.Resolve(rec.Manager)
	if b.aliases.IsAlias(rec.Manager) {
		stats.AliasResolutions++
	}
	node, err := g.EnsureNode(idx.directorateOf(canon), idx.displayOf(canon))
	if err != nil {
		// Build owns the graph until Freeze, so this cannot happen.
		return
	}

	switch classifyAssetType(rec.AssetType) {
	case queueLocal:
		node.QLocal++
		node.Total++
	case queueRemote:
		node.QRemote++
		node.Total++
	case queueAlias:
		node.QAlias++
		node.Total++
	}

	role := strings.ToUpper(rec.Role)
	switch {
	case strings.Contains(role, "SENDER") && rec.Asset != "":
		stats.SenderRecords++
		if remainder := deriveRemainder(rec.Asset, rec.Manager); remainder != "" {
			b.resolveSender(g, idx, node, canon, remainder, stats)
		}
	case strings.Contains(role, "RECEIVER") && rec.Asset != "":
		stats.ReceiverRecords++
		if remainder := deriveRemainder(rec.Asset, rec.Manager); remainder != "" {
			b.resolveReceiver(g, idx, node, canon, remainder, stats)
		}
	}
}

// resolveSender classifies a SENDER remainder: peer manager, then
// catalog application, then verbatim extra. A resolved peer gets the
// inverse inbound edge on its own node, whichever bucket that is in.
func (b *Builder) resolveSender(g *Graph, idx *managerIndex, node *Node, self, remainder string, stats *Stats) {
	if canon, viaAlias, ok := idx.resolveEndpoint(remainder, self); ok {
		peerName := idx.displayOf(canon)
		node.Outbound.Add(peerName)
		stats.OutboundResolved++
		if viaAlias {
			stats.AliasResolutions++
		}

		peer, err := g.EnsureNode(idx.directorateOf(canon), peerName)
		if err != nil {
			return
		}
		peer.Inbound.Add(node.Name)
		return
	}

	if entry, ok := b.matchApp(remainder); ok {
		if entry.Class == registry.AppInternal {
			node.OutboundApps.Add(entry.Name)
		} else {
			node.OutboundAppsExternal.Add(entry.Name)
		}
		stats.AppMatches++
		return
	}

	node.OutboundExtra.Add(remainder)
	stats.OutboundExtra++
}

// resolveReceiver mirrors resolveSender for the receive direction.
func (b *Builder) resolveReceiver(g *Graph, idx *managerIndex, node *Node, self, remainder string, stats *Stats) {
	if canon, viaAlias, ok := idx.resolveEndpoint(remainder, self); ok {
		peerName := idx.displayOf(canon)
		node.Inbound.Add(peerName)
		stats.InboundResolved++
		if viaAlias {
			stats.AliasResolutions++
		}

		peer, err := g.EnsureNode(idx.directorateOf(canon), peerName)
		if err != nil {
			return
		}
		peer.Outbound.Add(node.Name)
		return
	}

	if entry, ok := b.matchApp(remainder); ok {
		if entry.Class == registry.AppInternal {
			node.InboundApps.Add(entry.Name)
		} else {
			node.InboundAppsExternal.Add(entry.Name)
		}
		stats.AppMatches++
		return
	}

	node.InboundExtra.Add(remainder)
	stats.InboundExtra++
}

// matchApp checks the remainder against the application catalog, whole
// string first, then each dot token.
func (b *Builder) matchApp(remainder string) (registry.AppEntry, bool) {
	if entry, ok := b.apps.Match(remainder); ok {
		return entry, true
	}
	for _, part := range strings.Split(remainder, ".") {
		if entry, ok := b.apps.Match(part); ok {
			return entry, true
		}
	}
	return registry.AppEntry{}, false
}
