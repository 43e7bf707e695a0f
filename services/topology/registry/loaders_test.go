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
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTable(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestLoadAliasTable verifies file-backed alias loading.
func TestLoadAliasTable(t *testing.T) {
	dir := t.TempDir()
	path := writeTable(t, dir, "aliases.json", `[
		{"canonical": "QM_PROD_A", "aliases": ["QMA", "QM_A_LEGACY"]}
	]`)

	table := LoadAliasTable(path, discardLogger())
	assert.Equal(t, "QM_PROD_A", table.Resolve("QMA"))
	assert.Equal(t, 3, table.Len())
}

// TestLoadAliasTable_Missing verifies missing files load empty.
func TestLoadAliasTable_Missing(t *testing.T) {
	table := LoadAliasTable(filepath.Join(t.TempDir(), "absent.json"), discardLogger())
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, "QMA", table.Resolve("qma"))
}

// TestLoadAliasTable_Malformed verifies bad JSON loads empty.
func TestLoadAliasTable_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := writeTable(t, dir, "aliases.json", `{"canonical": "not an array"}`)

	table := LoadAliasTable(path, discardLogger())
	assert.Equal(t, 0, table.Len())
}

// TestLoadExternalApps verifies the partner table loads.
func TestLoadExternalApps(t *testing.T) {
	dir := t.TempDir()
	path := writeTable(t, dir, "external_apps.json", `[
		{"name": "SwiftNet", "type": "External"},
		{"name": "TreasuryLink", "type": "Internal"}
	]`)

	apps := LoadExternalApps(path, discardLogger())
	require.Len(t, apps, 2)
	assert.Equal(t, "SwiftNet", apps[0].Name)
}

// TestLoadExternalApps_Missing verifies missing files load empty.
func TestLoadExternalApps_Missing(t *testing.T) {
	apps := LoadExternalApps(filepath.Join(t.TempDir(), "absent.json"), discardLogger())
	assert.Empty(t, apps)
}

// TestLoadOrgHierarchy verifies the hierarchy loads.
func TestLoadOrgHierarchy(t *testing.T) {
	dir := t.TempDir()
	path := writeTable(t, dir, "org_hierarchy.json", `[
		{"Biz_Ownr": "CTO-PAY", "Organization": "Group IT", "Department": "Payments", "Org_Type": "Internal"}
	]`)

	h := LoadOrgHierarchy(path, discardLogger())
	info, ok := h.LookupOwner("CTO-PAY")
	require.True(t, ok)
	assert.Equal(t, "Group IT", info.Organization)
}

// TestLoadAppMapping verifies the mapping loads.
func TestLoadAppMapping(t *testing.T) {
	dir := t.TempDir()
	path := writeTable(t, dir, "app_to_qmgr.json", `[
		{"QmgrName": "QM_PAY_01", "Application": "Payments Engine"}
	]`)

	m := LoadAppMapping(path, discardLogger())
	app, ok := m.ApplicationFor("qm_pay_01")
	require.True(t, ok)
	assert.Equal(t, "Payments Engine", app)
}

// TestLoadGatewayCatalog verifies the catalog loads.
func TestLoadGatewayCatalog(t *testing.T) {
	dir := t.TempDir()
	path := writeTable(t, dir, "gateways.json", `[
		{"QmgrName": "QM_GW_EU", "Scope": "External"}
	]`)

	c := LoadGatewayCatalog(path, discardLogger())
	info, ok := c.GatewayFor("QM_GW_EU")
	require.True(t, ok)
	assert.Equal(t, "External", info.Scope)
}

// TestLoadSet verifies bundled loading and catalog assembly.
func TestLoadSet(t *testing.T) {
	dir := t.TempDir()
	paths := SetPaths{
		Aliases: writeTable(t, dir, "aliases.json",
			`[{"canonical": "QM_PROD_A", "aliases": ["QMA"]}]`),
		AppMapping: writeTable(t, dir, "app_to_qmgr.json",
			`[{"QmgrName": "QM_PAY_01", "Application": "Payments Engine"}]`),
		ExternalApps: writeTable(t, dir, "external_apps.json",
			`[{"name": "SwiftNet", "type": "External"}]`),
		OrgHierarchy: writeTable(t, dir, "org_hierarchy.json",
			`[{"Biz_Ownr": "CTO-PAY", "Organization": "Group IT"}]`),
		Gateways: writeTable(t, dir, "gateways.json",
			`[{"QmgrName": "QM_GW_EU", "Scope": "External"}]`),
	}

	set := LoadSet(paths, discardLogger())

	assert.Equal(t, "QM_PROD_A", set.Aliases.Resolve("QMA"))

	// The app catalog contains the mapping's applications (internal)
	// plus the external table.
	class, ok := set.Apps.Classify("Payments Engine")
	require.True(t, ok)
	assert.Equal(t, AppInternal, class)
	class, ok = set.Apps.Classify("SwiftNet")
	require.True(t, ok)
	assert.Equal(t, AppExternal, class)

	_, ok = set.Orgs.LookupOwner("CTO-PAY")
	assert.True(t, ok)
	_, ok = set.Gateways.GatewayFor("QM_GW_EU")
	assert.True(t, ok)
}

// TestLoadSet_AllMissing verifies a table-less deployment still loads.
func TestLoadSet_AllMissing(t *testing.T) {
	dir := t.TempDir()
	set := LoadSet(SetPaths{
		Aliases:      filepath.Join(dir, "a.json"),
		AppMapping:   filepath.Join(dir, "b.json"),
		ExternalApps: filepath.Join(dir, "c.json"),
		OrgHierarchy: filepath.Join(dir, "d.json"),
		Gateways:     filepath.Join(dir, "e.json"),
	}, discardLogger())

	assert.Equal(t, 0, set.Aliases.Len())
	assert.Equal(t, 0, set.Apps.Len())
	assert.Equal(t, 0, set.Orgs.Len())
	assert.Equal(t, 0, set.AppMapping.Len())
	assert.Equal(t, 0, set.Gateways.Len())
}
