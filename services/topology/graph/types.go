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
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// GraphState represents the lifecycle state of the graph.
type GraphState int

const (
	// GraphStateBuilding indicates the graph is accepting node mutations.
	GraphStateBuilding GraphState = iota

	// GraphStateReadOnly indicates the graph is frozen and read-only.
	GraphStateReadOnly
)

// String returns the string representation of the GraphState.
func (s GraphState) String() string {
	switch s {
	case GraphStateBuilding:
		return "building"
	case GraphStateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// Node is one queue manager in the topology.
//
// Name preserves the first-seen casing from the CMDB export; lookups
// are case-insensitive through the graph. The edge sets hold peer
// manager names in their display casing, application names as
// registered in the catalog, and unresolved remainders verbatim.
type Node struct {
	// Directorate is the bucket this manager lives in. "Unknown" when
	// no record carried a directorate for it.
	Directorate string `json:"directorate"`

	// Name is the manager's display name.
	Name string `json:"mqmanager"`

	// QLocal counts local queue assets.
	QLocal int `json:"qlocal_count"`

	// QRemote counts remote queue assets.
	QRemote int `json:"qremote_count"`

	// QAlias counts alias queue assets.
	QAlias int `json:"qalias_count"`

	// Total counts all classified queue assets. Records with an
	// unrecognized asset type increment nothing, including Total.
	Total int `json:"total_count"`

	// Inbound holds managers this manager receives from.
	Inbound Set `json:"inbound"`

	// Outbound holds managers this manager sends to.
	Outbound Set `json:"outbound"`

	// InboundExtra holds unresolved receive endpoints, verbatim.
	InboundExtra Set `json:"inbound_extra"`

	// OutboundExtra holds unresolved send endpoints, verbatim.
	OutboundExtra Set `json:"outbound_extra"`

	// InboundApps holds internal applications this manager receives from.
	InboundApps Set `json:"inbound_apps"`

	// OutboundApps holds internal applications this manager sends to.
	OutboundApps Set `json:"outbound_apps"`

	// InboundAppsExternal holds external applications on the receive side.
	InboundAppsExternal Set `json:"inbound_apps_external"`

	// OutboundAppsExternal holds external applications on the send side.
	OutboundAppsExternal Set `json:"outbound_apps_external"`
}

// newNode returns an empty node for a manager in a directorate.
func newNode(directorate, name string) *Node {
	return &Node{
		Directorate:          directorate,
		Name:                 name,
		Inbound:              NewSet(),
		Outbound:             NewSet(),
		InboundExtra:         NewSet(),
		OutboundExtra:        NewSet(),
		InboundApps:          NewSet(),
		OutboundApps:         NewSet(),
		InboundAppsExternal:  NewSet(),
		OutboundAppsExternal: NewSet(),
	}
}

// Graph is the directorate-bucketed queue manager topology.
//
// Every manager lives in exactly one directorate bucket and is keyed
// case-insensitively by its canonical name. Nodes are created lazily
// when a record references them; a manager with zero records never
// appears.
//
// Thread Safety:
//
//	Graph is NOT safe for concurrent use during building. After
//	Freeze() it can be read from multiple goroutines concurrently.
type Graph struct {
	// buckets maps directorate -> upper(canonical name) -> node.
	buckets map[string]map[string]*Node

	// byName maps upper(canonical name) -> node, across all buckets.
	// Enforces the one-bucket-per-manager invariant.
	byName map[string]*Node

	// state is the current lifecycle state.
	state GraphState

	// BuiltAtMilli is the Unix timestamp in milliseconds when Freeze()
	// was called. Zero if the graph has not been frozen.
	BuiltAtMilli int64
}

// NewGraph creates a new empty graph in the Building state.
func NewGraph() *Graph {
	return &Graph{
		buckets: make(map[string]map[string]*Node),
		byName:  make(map[string]*Node),
		state:   GraphStateBuilding,
	}
}

// State returns the current lifecycle state of the graph.
func (g *Graph) State() GraphState {
	return g.state
}

// IsFrozen returns true if the graph is in read-only mode.
func (g *Graph) IsFrozen() bool {
	return g.state == GraphStateReadOnly
}

// Freeze transitions the graph to read-only mode.
//
// After Freeze(), EnsureNode returns ErrGraphFrozen. This operation is
// irreversible. The BuiltAtMilli timestamp is set to the current time.
func (g *Graph) Freeze() {
	g.state = GraphStateReadOnly
	g.BuiltAtMilli = time.Now().UnixMilli()
}

// EnsureNode returns the node for name, creating it if absent.
//
// Description:
//
//	Lookup is case-insensitive. When the node already exists it is
//	returned as is, keeping its original directorate and display name
//	regardless of the arguments. New nodes are filed under directorate
//	with name as their display form.
//
// Inputs:
//
//	directorate - Bucket for a newly created node.
//	name - Manager display name; its uppercase form is the node key.
//
// Outputs:
//
//	*Node - The existing or newly created node.
//	error - ErrGraphFrozen if the graph has been frozen.
func (g *Graph) EnsureNode(directorate, name string) (*Node, error) {
	key := strings.ToUpper(name)
	if node, ok := g.byName[key]; ok {
		return node, nil
	}
	if g.state == GraphStateReadOnly {
		return nil, ErrGraphFrozen
	}

	node := newNode(directorate, name)
	bucket, ok := g.buckets[directorate]
	if !ok {
		bucket = make(map[string]*Node)
		g.buckets[directorate] = bucket
	}
	bucket[key] = node
	g.byName[key] = node
	return node, nil
}

// Node retrieves a node by manager name, case-insensitively.
func (g *Graph) Node(name string) (*Node, bool) {
	node, ok := g.byName[strings.ToUpper(name)]
	return node, ok
}

// Directorates returns all directorate bucket names, sorted.
func (g *Graph) Directorates() []string {
	names := make([]string, 0, len(g.buckets))
	for name := range g.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Nodes returns the nodes in a directorate bucket, sorted by name.
func (g *Graph) Nodes(directorate string) []*Node {
	bucket := g.buckets[directorate]
	nodes := make([]*Node, 0, len(bucket))
	for _, node := range bucket {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Name < nodes[j].Name
	})
	return nodes
}

// NodeCount returns the number of managers in the graph.
func (g *Graph) NodeCount() int {
	return len(g.byName)
}

// EdgeCount returns the number of resolved manager-to-manager edges,
// counted from the outbound side.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, node := range g.byName {
		count += node.Outbound.Len()
	}
	return count
}

// MarshalJSON renders the graph as {directorate: {manager: node}} with
// nodes keyed by display name. Map keys marshal sorted, so the output
// is deterministic.
func (g *Graph) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]*Node, len(g.buckets))
	for directorate, bucket := range g.buckets {
		nodes := make(map[string]*Node, len(bucket))
		for _, node := range bucket {
			nodes[node.Name] = node
		}
		out[directorate] = nodes
	}
	return json.Marshal(out)
}
