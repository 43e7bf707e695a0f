// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package hierarchy

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/mqtopo/services/topology/graph"
	"github.com/AleutianAI/mqtopo/services/topology/registry"
)

// ErrNilGraph is returned when Enrich is handed a nil graph.
var ErrNilGraph = errors.New("graph is nil")

// Enricher joins the manager graph with the organizational reference
// tables.
//
// Thread Safety:
//
//	Enricher is safe for concurrent use. Each Enrich() call reads the
//	frozen graph and the immutable tables and builds a fresh tree.
type Enricher struct {
	orgs     *registry.OrgHierarchy
	mapping  *registry.AppMapping
	gateways *registry.GatewayCatalog
	logger   *slog.Logger
}

// NewEnricher creates an Enricher over the given reference tables.
//
// Description:
//
//	Any table may be nil, which behaves like an empty table: every
//	directorate then maps to "Unknown Organization", every manager to
//	"No Application", and no manager is a gateway. Enrichment never
//	fails on sparse reference data.
//
// Inputs:
//
//	orgs - Business owner hierarchy, may be nil.
//	mapping - Application-to-manager mapping, may be nil.
//	gateways - Gateway catalog, may be nil.
//	logger - Summary logging. Nil falls back to slog.Default().
func NewEnricher(orgs *registry.OrgHierarchy, mapping *registry.AppMapping, gateways *registry.GatewayCatalog, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	if orgs == nil {
		orgs = registry.NewOrgHierarchy(nil)
	}
	if mapping == nil {
		mapping = registry.NewAppMapping(nil)
	}
	if gateways == nil {
		gateways = registry.NewGatewayCatalog(nil)
	}
	return &Enricher{orgs: orgs, mapping: mapping, gateways: gateways, logger: logger}
}

// Enrich builds the four-level tree and its flat lookup index.
//
// Description:
//
//	Walks every directorate bucket of the graph. The directorate is
//	the business owner: owners present in the hierarchy contribute
//	their Organization/Department/OrgType, absent ones default to
//	{Unknown Organization, Unknown Department, Internal} with the
//	owner id preserved. Gateway managers are filed only under the
//	synthetic "Gateway (<Scope>)" application with their Application
//	field overwritten; everyone else files under their mapped
//	application or "No Application".
//
// Inputs:
//
//	g - The frozen manager graph.
//
// Outputs:
//
//	Tree - The enriched tree. Deterministic for a given graph and tables.
//	*Lookup - Flat manager index rebuilt from the tree.
//	error - ErrNilGraph only.
func (e *Enricher) Enrich(g *graph.Graph) (Tree, *Lookup, error) {
	if g == nil {
		return nil, nil, ErrNilGraph
	}

	tree := make(Tree)
	gatewayCount := 0

	for _, directorate := range g.Directorates() {
		info, ok := e.orgs.LookupOwner(directorate)
		if !ok {
			info = registry.OrgInfo{
				Organization: "Unknown Organization",
				Department:   "Unknown Department",
				BizOwnr:      directorate,
				OrgType:      "Internal",
			}
		}

		for _, node := range g.Nodes(directorate) {
			m := e.enrichNode(info, node)
			if m.IsGateway {
				gatewayCount++
			}
			tree.Place(info.Organization, info.OrgType, info.Department, info.BizOwnr, m.Application, m)
		}
	}

	lookup := BuildLookup(tree)
	e.logger.Info("hierarchy enriched",
		"organizations", len(tree),
		"managers", lookup.Len(),
		"gateways", gatewayCount)
	return tree, lookup, nil
}

// enrichNode builds one manager leaf from a graph node.
func (e *Enricher) enrichNode(info registry.OrgInfo, node *graph.Node) *Manager {
	m := &Manager{
		Organization: info.Organization,
		OrgType:      info.OrgType,
		Department:   info.Department,
		BizOwnr:      info.BizOwnr,
		MQManager:    node.Name,

		QLocal:  node.QLocal,
		QRemote: node.QRemote,
		QAlias:  node.QAlias,
		Total:   node.Total,

		Inbound:              node.Inbound.Sorted(),
		Outbound:             node.Outbound.Sorted(),
		InboundExtra:         node.InboundExtra.Sorted(),
		OutboundExtra:        node.OutboundExtra.Sorted(),
		InboundApps:          node.InboundApps.Sorted(),
		OutboundApps:         node.OutboundApps.Sorted(),
		InboundAppsExternal:  node.InboundAppsExternal.Sorted(),
		OutboundAppsExternal: node.OutboundAppsExternal.Sorted(),
	}

	if gw, ok := e.gateways.GatewayFor(node.Name); ok {
		m.IsGateway = true
		m.GatewayScope = gw.Scope
		m.GatewayDescription = gw.Description
		m.Application = fmt.Sprintf("%s%s)", GatewayAppPrefix, gw.Scope)
		return m
	}

	app, ok := e.mapping.ApplicationFor(node.Name)
	if !ok {
		app = "No Application"
	}
	m.Application = app
	return m
}
