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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGraph_EnsureNode verifies lazy creation and the one-bucket rule.
func TestGraph_EnsureNode(t *testing.T) {
	g := NewGraph()

	node, err := g.EnsureNode("DeptX", "QM_A")
	require.NoError(t, err)
	assert.Equal(t, "QM_A", node.Name)
	assert.Equal(t, "DeptX", node.Directorate)

	// A second call with a different directorate and casing returns the
	// same node untouched.
	again, err := g.EnsureNode("DeptY", "qm_a")
	require.NoError(t, err)
	assert.Same(t, node, again)
	assert.Equal(t, "DeptX", again.Directorate)
	assert.Equal(t, "QM_A", again.Name)

	assert.Equal(t, 1, g.NodeCount())
	assert.Equal(t, []string{"DeptX"}, g.Directorates())
}

// TestGraph_Node verifies case-insensitive lookup.
func TestGraph_Node(t *testing.T) {
	g := NewGraph()
	_, err := g.EnsureNode("DeptX", "Qm_Mixed")
	require.NoError(t, err)

	node, ok := g.Node("QM_MIXED")
	require.True(t, ok)
	assert.Equal(t, "Qm_Mixed", node.Name)

	_, ok = g.Node("QM_ABSENT")
	assert.False(t, ok)
}

// TestGraph_Nodes verifies bucket listing order.
func TestGraph_Nodes(t *testing.T) {
	g := NewGraph()
	for _, name := range []string{"QM_C", "QM_A", "QM_B"} {
		_, err := g.EnsureNode("DeptX", name)
		require.NoError(t, err)
	}

	nodes := g.Nodes("DeptX")
	require.Len(t, nodes, 3)
	assert.Equal(t, "QM_A", nodes[0].Name)
	assert.Equal(t, "QM_B", nodes[1].Name)
	assert.Equal(t, "QM_C", nodes[2].Name)

	assert.Empty(t, g.Nodes("DeptMissing"))
}

// TestGraph_Freeze verifies the lifecycle transition.
func TestGraph_Freeze(t *testing.T) {
	g := NewGraph()
	assert.Equal(t, GraphStateBuilding, g.State())
	assert.Equal(t, "building", g.State().String())
	assert.False(t, g.IsFrozen())
	assert.Zero(t, g.BuiltAtMilli)

	g.Freeze()
	assert.True(t, g.IsFrozen())
	assert.Equal(t, "readonly", g.State().String())
	assert.NotZero(t, g.BuiltAtMilli)

	_, err := g.EnsureNode("DeptX", "QM_A")
	assert.ErrorIs(t, err, ErrGraphFrozen)
}

// TestGraph_MarshalJSON verifies the wire shape downstream consumers
// depend on.
func TestGraph_MarshalJSON(t *testing.T) {
	g := NewGraph()
	node, err := g.EnsureNode("DeptX", "QM_A")
	require.NoError(t, err)
	node.QLocal = 2
	node.Total = 2
	node.Outbound.Add("QM_B")
	node.OutboundExtra.Add("UNKNOWN.QUEUE")
	g.Freeze()

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var decoded map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	deptX, ok := decoded["DeptX"]
	require.True(t, ok)
	entry, ok := deptX["QM_A"]
	require.True(t, ok)

	assert.Equal(t, "DeptX", entry["directorate"])
	assert.Equal(t, "QM_A", entry["mqmanager"])
	assert.Equal(t, float64(2), entry["qlocal_count"])
	assert.Equal(t, float64(0), entry["qremote_count"])
	assert.Equal(t, float64(0), entry["qalias_count"])
	assert.Equal(t, float64(2), entry["total_count"])
	assert.Equal(t, []any{"QM_B"}, entry["outbound"])
	assert.Equal(t, []any{"UNKNOWN.QUEUE"}, entry["outbound_extra"])
	assert.Equal(t, []any{}, entry["inbound"])
	assert.Equal(t, []any{}, entry["inbound_apps"])
	assert.Equal(t, []any{}, entry["outbound_apps_external"])
}

// TestGraphState_String covers the unknown state branch.
func TestGraphState_String(t *testing.T) {
	assert.Equal(t, "unknown", GraphState(99).String())
}
