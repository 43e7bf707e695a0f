// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAppMapping_ApplicationFor verifies case-insensitive lookup.
func TestAppMapping_ApplicationFor(t *testing.T) {
	m := NewAppMapping([]AppMappingRow{
		{QmgrName: "QM_PAY_01", Application: "Payments Engine"},
		{QmgrName: "QM_ORD_01", Application: "Order Router"},
	})

	app, ok := m.ApplicationFor("QM_PAY_01")
	require.True(t, ok)
	assert.Equal(t, "Payments Engine", app)

	app, ok = m.ApplicationFor("qm_pay_01")
	require.True(t, ok)
	assert.Equal(t, "Payments Engine", app)

	_, ok = m.ApplicationFor("QM_UNKNOWN")
	assert.False(t, ok)
}

// TestAppMapping_EmptyApplicationDefaults verifies blank applications
// never produce a blank bucket.
func TestAppMapping_EmptyApplicationDefaults(t *testing.T) {
	m := NewAppMapping([]AppMappingRow{{QmgrName: "QM_X", Application: "  "}})

	app, ok := m.ApplicationFor("QM_X")
	require.True(t, ok)
	assert.Equal(t, "No Application", app)
}

// TestAppMapping_Applications verifies the distinct sorted name list.
func TestAppMapping_Applications(t *testing.T) {
	m := NewAppMapping([]AppMappingRow{
		{QmgrName: "QM_A", Application: "Order Router"},
		{QmgrName: "QM_B", Application: "Payments Engine"},
		{QmgrName: "QM_C", Application: "Order Router"},
	})

	assert.Equal(t, []string{"Order Router", "Payments Engine"}, m.Applications())
}

// TestAppMapping_SkipsEmptyManagers verifies blank rows are dropped.
func TestAppMapping_SkipsEmptyManagers(t *testing.T) {
	m := NewAppMapping([]AppMappingRow{
		{QmgrName: "", Application: "Ghost"},
		{QmgrName: "QM_A", Application: "Order Router"},
	})
	assert.Equal(t, 1, m.Len())
}

// TestGatewayCatalog_GatewayFor verifies lookup and scope default.
func TestGatewayCatalog_GatewayFor(t *testing.T) {
	c := NewGatewayCatalog([]GatewayRow{
		{QmgrName: "QM_GW_EU", Scope: "External", Description: "EU partner bridge"},
		{QmgrName: "QM_GW_CORE"},
	})

	info, ok := c.GatewayFor("QM_GW_EU")
	require.True(t, ok)
	assert.Equal(t, "External", info.Scope)
	assert.Equal(t, "EU partner bridge", info.Description)

	info, ok = c.GatewayFor("qm_gw_core")
	require.True(t, ok)
	assert.Equal(t, "Internal", info.Scope)
	assert.Equal(t, "", info.Description)

	_, ok = c.GatewayFor("QM_PAY_01")
	assert.False(t, ok)
}

// TestGatewayCatalog_AcceptsEitherKeyName verifies both manager column
// spellings load.
func TestGatewayCatalog_AcceptsEitherKeyName(t *testing.T) {
	c := NewGatewayCatalog([]GatewayRow{
		{QmgrName: "QM_GW_OLD", Scope: "Internal"},
		{Name: "QM_GW_NEW", Scope: "External"},
		{QmgrName: "QM_GW_BOTH", Name: "QM_IGNORED", Scope: "Internal"},
	})

	_, ok := c.GatewayFor("QM_GW_OLD")
	assert.True(t, ok)
	_, ok = c.GatewayFor("QM_GW_NEW")
	assert.True(t, ok)
	_, ok = c.GatewayFor("QM_GW_BOTH")
	assert.True(t, ok)
	_, ok = c.GatewayFor("QM_IGNORED")
	assert.False(t, ok)
}

// TestGatewayCatalog_SkipsNamelessRows verifies rows without a manager
// are dropped.
func TestGatewayCatalog_SkipsNamelessRows(t *testing.T) {
	c := NewGatewayCatalog([]GatewayRow{{Scope: "External"}})
	assert.Equal(t, 0, c.Len())
}
