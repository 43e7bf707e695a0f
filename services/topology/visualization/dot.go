// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package visualization renders the enriched tree as a Graphviz DOT
// digraph.
//
// The export is structural: organization clusters, manager nodes,
// solid edges for resolved connections, dashed edges for unresolved
// extras. Styling and layout belong to whatever renders the DOT.
package visualization

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/AleutianAI/mqtopo/services/topology/hierarchy"
)

// ErrNilTree is returned by Generate when the tree is nil.
var ErrNilTree = errors.New("tree is nil")

// Options configures DOT generation.
type Options struct {
	// Direction is the graph rank direction (TB, LR, BT, RL).
	// Default: "LR"
	Direction string
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{Direction: "LR"}
}

// DOTGenerator renders enriched trees as DOT digraphs.
//
// Thread Safety:
//
//	Safe for concurrent use.
type DOTGenerator struct {
	options Options
}

// NewDOTGenerator creates a generator. A nil opts uses defaults.
func NewDOTGenerator(opts *Options) *DOTGenerator {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	if opts.Direction == "" {
		opts.Direction = DefaultOptions().Direction
	}
	return &DOTGenerator{options: *opts}
}

// Generate renders one tree as a DOT digraph.
//
// Description:
//
//	Organizations become clusters holding their manager nodes. Edges
//	come from each manager's outbound lists: resolved targets draw
//	solid, unresolved extras draw dashed toward ellipse endpoint
//	nodes outside every cluster. Identifiers are the quoted display
//	names with quotes escaped, and output order is the sorted tree
//	walk, so the same tree always renders identical bytes.
//
// Inputs:
//
//	t - The enriched tree.
//
// Outputs:
//
//	string - The DOT source.
//	error - ErrNilTree only.
func (g *DOTGenerator) Generate(t hierarchy.Tree) (string, error) {
	if t == nil {
		return "", ErrNilTree
	}

	var sb strings.Builder
	sb.WriteString("digraph mq_topology {\n")
	sb.WriteString(fmt.Sprintf("    rankdir=%s;\n", g.options.Direction))
	sb.WriteString("    node [shape=box, style=filled, fillcolor=white];\n")
	sb.WriteString("\n")

	g.writeClusters(&sb, t)
	g.writeExternalEndpoints(&sb, t)
	g.writeEdges(&sb, t)

	sb.WriteString("}\n")
	return sb.String(), nil
}

// writeClusters emits one cluster per organization with its manager
// nodes. A gateway node carries its scope in the label.
func (g *DOTGenerator) writeClusters(sb *strings.Builder, t hierarchy.Tree) {
	current := ""
	t.Walk(func(org, _, _, _ string, m *hierarchy.Manager) {
		if org != current {
			if current != "" {
				sb.WriteString("    }\n")
			}
			current = org
			sb.WriteString(fmt.Sprintf("    subgraph %s {\n", quoteID("cluster_"+org)))
			sb.WriteString(fmt.Sprintf("        label=\"%s\";\n", escapeLabel(org)))
		}

		label := m.MQManager
		if m.IsGateway {
			label = m.MQManager + "\n[gateway: " + m.GatewayScope + "]"
		}
		sb.WriteString(fmt.Sprintf("        %s [label=\"%s\"];\n", quoteID(m.MQManager), escapeLabel(label)))
	})
	if current != "" {
		sb.WriteString("    }\n")
	}
	sb.WriteString("\n")
}

// writeExternalEndpoints declares the unresolved extra targets so
// they render outside every cluster.
func (g *DOTGenerator) writeExternalEndpoints(sb *strings.Builder, t hierarchy.Tree) {
	seen := make(map[string]struct{})
	t.Walk(func(_, _, _, _ string, m *hierarchy.Manager) {
		for _, target := range m.OutboundExtra {
			seen[target] = struct{}{}
		}
		for _, source := range m.InboundExtra {
			seen[source] = struct{}{}
		}
	})
	if len(seen) == 0 {
		return
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sb.WriteString(fmt.Sprintf("    %s [shape=ellipse];\n", quoteID(name)))
	}
	sb.WriteString("\n")
}

// writeEdges emits each manager's outbound edges once, from the flat
// dedup view. Resolved inbound lists mirror outbound and are not
// drawn; inbound extras have no sending manager in the graph, so
// they draw here from their endpoint node.
func (g *DOTGenerator) writeEdges(sb *strings.Builder, t hierarchy.Tree) {
	managers := t.Managers()
	names := make([]string, 0, len(managers))
	for name := range managers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := managers[name]
		for _, target := range m.Outbound {
			sb.WriteString(fmt.Sprintf("    %s -> %s;\n", quoteID(name), quoteID(target)))
		}
		for _, target := range m.OutboundExtra {
			sb.WriteString(fmt.Sprintf("    %s -> %s [style=dashed];\n", quoteID(name), quoteID(target)))
		}
		for _, source := range m.InboundExtra {
			sb.WriteString(fmt.Sprintf("    %s -> %s [style=dashed];\n", quoteID(source), quoteID(name)))
		}
	}
}

// quoteID renders a string as a quoted DOT identifier.
func quoteID(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// escapeLabel escapes quotes and newlines for a DOT label.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	return strings.ReplaceAll(s, "\n", `\n`)
}
