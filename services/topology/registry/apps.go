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
	"log/slog"
	"strings"
)

// AppClass distinguishes applications inside the organization from
// external partners.
type AppClass int

const (
	AppInternal AppClass = iota
	AppExternal
)

// String returns the class name for logs and reports.
func (c AppClass) String() string {
	switch c {
	case AppInternal:
		return "Internal"
	case AppExternal:
		return "External"
	default:
		return "Unknown"
	}
}

// ExternalApp is one row of the external application table.
type ExternalApp struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// AppEntry is a catalog hit: the registered display name and class.
type AppEntry struct {
	Name  string
	Class AppClass
}

// AppCatalog classifies names found in asset strings as known
// applications.
//
// The internal catalog comes from the application-to-manager mapping;
// the external catalog from the partner table. Matching is
// case-insensitive and returns the name as registered, so graph edges
// carry consistent casing regardless of how the CMDB spells the asset.
//
// Thread Safety: Safe for concurrent use after construction.
type AppCatalog struct {
	entries map[string]AppEntry
}

// NewAppCatalog builds a catalog from internal names and external rows.
//
// Description:
//
//	Internal names classify as AppInternal. External rows classify by
//	their type: "internal" (any case) maps to AppInternal, anything
//	else to AppExternal. A name registered twice keeps its first entry
//	and the conflict is logged. Empty names are ignored.
//
// Inputs:
//
//	internal - Application names from the app-to-manager mapping.
//	external - Partner application rows.
//	logger - Conflict warnings. Nil falls back to slog.Default().
func NewAppCatalog(internal []string, external []ExternalApp, logger *slog.Logger) *AppCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &AppCatalog{entries: make(map[string]AppEntry)}

	add := func(name string, class AppClass) {
		display := strings.TrimSpace(name)
		key := strings.ToUpper(display)
		if key == "" {
			return
		}
		if existing, ok := c.entries[key]; ok {
			if existing.Class != class {
				logger.Warn("application catalog conflict, keeping first entry",
					"name", display, "kept", existing.Class.String(), "ignored", class.String())
			}
			return
		}
		c.entries[key] = AppEntry{Name: display, Class: class}
	}

	for _, name := range internal {
		add(name, AppInternal)
	}
	for _, app := range external {
		add(app.Name, classifyType(app.Type))
	}
	return c
}

// classifyType maps an external table type value to an AppClass.
func classifyType(t string) AppClass {
	if strings.EqualFold(strings.TrimSpace(t), "internal") {
		return AppInternal
	}
	return AppExternal
}

// Match looks up name in the catalog, case-insensitively.
func (c *AppCatalog) Match(name string) (AppEntry, bool) {
	entry, ok := c.entries[strings.ToUpper(strings.TrimSpace(name))]
	return entry, ok
}

// Classify reports the class of name when it is a known application.
func (c *AppCatalog) Classify(name string) (AppClass, bool) {
	entry, ok := c.Match(name)
	return entry.Class, ok
}

// Len returns the number of cataloged applications.
func (c *AppCatalog) Len() int {
	return len(c.entries)
}
