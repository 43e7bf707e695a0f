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
	"sort"
	"strings"
)

// AppMappingRow is one row of the application-to-manager mapping.
type AppMappingRow struct {
	QmgrName    string `json:"QmgrName"`
	Application string `json:"Application"`
}

// AppMapping maps queue manager names to their owning application.
//
// Lookups are case-insensitive on the manager name; application names
// keep their registered casing.
//
// Thread Safety: Safe for concurrent use after construction.
type AppMapping struct {
	apps map[string]string
}

// NewAppMapping builds the mapping from rows.
//
// Rows with an empty manager name are skipped; an empty application
// defaults to "No Application" so lookups never return a blank bucket.
// Duplicate manager names keep the last row.
func NewAppMapping(rows []AppMappingRow) *AppMapping {
	m := &AppMapping{apps: make(map[string]string, len(rows))}
	for _, row := range rows {
		qmgr := strings.ToUpper(strings.TrimSpace(row.QmgrName))
		if qmgr == "" {
			continue
		}
		m.apps[qmgr] = defaultIfEmpty(row.Application, "No Application")
	}
	return m
}

// ApplicationFor returns the application owning a queue manager.
func (m *AppMapping) ApplicationFor(mgr string) (string, bool) {
	app, ok := m.apps[strings.ToUpper(strings.TrimSpace(mgr))]
	return app, ok
}

// Applications returns the distinct application names, sorted.
// These names seed the internal application catalog.
func (m *AppMapping) Applications() []string {
	seen := make(map[string]struct{}, len(m.apps))
	var names []string
	for _, app := range m.apps {
		if _, ok := seen[app]; ok {
			continue
		}
		seen[app] = struct{}{}
		names = append(names, app)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of mapped queue managers.
func (m *AppMapping) Len() int {
	return len(m.apps)
}
