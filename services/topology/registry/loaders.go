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
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/AleutianAI/mqtopo/pkg/validation"
)

// Reference tables are optional context, not pipeline inputs: a run
// must succeed with none of them present. Every loader therefore
// degrades to an empty table with a warning instead of returning an
// error. Malformed JSON is treated the same as a missing file.

// LoadAliasTable reads the alias table at path.
func LoadAliasTable(path string, logger *slog.Logger) *AliasTable {
	logger = ensureLogger(logger)
	var rows []AliasRow
	if !loadRows(path, "alias table", &rows, logger) {
		return NewAliasTable(nil, logger)
	}
	for _, row := range rows {
		warnIfInvalidName(row.Canonical, "alias table", logger)
		for _, alias := range row.Aliases {
			warnIfInvalidName(alias, "alias table", logger)
		}
	}
	return NewAliasTable(rows, logger)
}

// LoadExternalApps reads the external application table at path.
func LoadExternalApps(path string, logger *slog.Logger) []ExternalApp {
	logger = ensureLogger(logger)
	var rows []ExternalApp
	if !loadRows(path, "external application table", &rows, logger) {
		return nil
	}
	return rows
}

// LoadOrgHierarchy reads the organizational hierarchy at path.
func LoadOrgHierarchy(path string, logger *slog.Logger) *OrgHierarchy {
	logger = ensureLogger(logger)
	var rows []OrgRow
	if !loadRows(path, "org hierarchy", &rows, logger) {
		return NewOrgHierarchy(nil)
	}
	return NewOrgHierarchy(rows)
}

// LoadAppMapping reads the application-to-manager mapping at path.
func LoadAppMapping(path string, logger *slog.Logger) *AppMapping {
	logger = ensureLogger(logger)
	var rows []AppMappingRow
	if !loadRows(path, "application mapping", &rows, logger) {
		return NewAppMapping(nil)
	}
	for _, row := range rows {
		warnIfInvalidName(row.QmgrName, "application mapping", logger)
	}
	return NewAppMapping(rows)
}

// LoadGatewayCatalog reads the gateway catalog at path.
func LoadGatewayCatalog(path string, logger *slog.Logger) *GatewayCatalog {
	logger = ensureLogger(logger)
	var rows []GatewayRow
	if !loadRows(path, "gateway catalog", &rows, logger) {
		return NewGatewayCatalog(nil)
	}
	for _, row := range rows {
		name := row.QmgrName
		if name == "" {
			name = row.Name
		}
		warnIfInvalidName(name, "gateway catalog", logger)
	}
	return NewGatewayCatalog(rows)
}

// =============================================================================
// Bundled loading
// =============================================================================

// SetPaths names the reference table files for LoadSet.
type SetPaths struct {
	Aliases      string
	AppMapping   string
	ExternalApps string
	OrgHierarchy string
	Gateways     string
}

// Set bundles the loaded reference tables for the pipeline.
type Set struct {
	Aliases    *AliasTable
	Apps       *AppCatalog
	Orgs       *OrgHierarchy
	AppMapping *AppMapping
	Gateways   *GatewayCatalog
}

// LoadSet loads every reference table, assembling the application
// catalog from the mapping's application names plus the external table.
//
// Never fails; absent tables load empty.
func LoadSet(paths SetPaths, logger *slog.Logger) Set {
	logger = ensureLogger(logger)

	aliases := LoadAliasTable(paths.Aliases, logger)
	appMapping := LoadAppMapping(paths.AppMapping, logger)
	external := LoadExternalApps(paths.ExternalApps, logger)
	orgs := LoadOrgHierarchy(paths.OrgHierarchy, logger)
	gateways := LoadGatewayCatalog(paths.Gateways, logger)

	logger.Info("reference tables loaded",
		"aliases", aliases.Len(),
		"app_mappings", appMapping.Len(),
		"external_apps", len(external),
		"owners", orgs.Len(),
		"gateways", gateways.Len())

	return Set{
		Aliases:    aliases,
		Apps:       NewAppCatalog(appMapping.Applications(), external, logger),
		Orgs:       orgs,
		AppMapping: appMapping,
		Gateways:   gateways,
	}
}

// =============================================================================
// Helpers
// =============================================================================

// loadRows reads and decodes a JSON array file into out. Returns false
// after logging when the table should load empty.
func loadRows(path, table string, out any, logger *slog.Logger) bool {
	if path == "" {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("reference table not found, loading empty",
				"table", table, "path", path)
		} else {
			logger.Warn("reference table unreadable, loading empty",
				"table", table, "path", path, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("reference table malformed, loading empty",
			"table", table, "path", path, "error", err)
		return false
	}
	return true
}

// warnIfInvalidName flags manager names that cannot be real MQ object
// names. Diagnostic only; the row still loads.
func warnIfInvalidName(name, table string, logger *slog.Logger) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	if err := validation.ValidateManagerName(trimmed); err != nil {
		logger.Warn("suspicious manager name in reference table",
			"table", table, "name", trimmed, "error", err)
	}
}

func ensureLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
