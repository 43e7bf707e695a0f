// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package registry holds the reference tables that contextualize the
// raw CMDB export: manager aliases, application catalogs, the
// organizational hierarchy, application-to-manager mappings, and the
// gateway catalog.
//
// Every table follows the same contract: constructors accept in-memory
// rows and never touch the filesystem; the Load* helpers in loaders.go
// do the I/O and degrade to an empty table with a warning when a file
// is missing or unreadable. A deployment with no reference tables at
// all still produces a valid (if unenriched) topology.
package registry

import (
	"log/slog"
	"strings"
)

// AliasRow is one alias-table entry: a canonical manager name and the
// alternate names it is known by elsewhere in the CMDB.
type AliasRow struct {
	Canonical string   `json:"canonical"`
	Aliases   []string `json:"aliases"`
}

// AliasTable resolves alternate queue manager names to canonical ones.
//
// Resolution is case-insensitive and total: unknown names resolve to
// themselves, so callers can resolve unconditionally.
//
// Thread Safety: Safe for concurrent use after construction.
type AliasTable struct {
	// canonical maps upper(name) -> upper(canonical) for every
	// canonical and alias name in the table.
	canonical map[string]string
}

// NewAliasTable builds an alias table from rows.
//
// Description:
//
//	Canonical names map to themselves; each alias maps to its
//	canonical. A name bound twice (duplicate alias, or an alias that
//	is also a canonical) keeps its first binding and the conflict is
//	logged. Empty names are ignored.
//
// Inputs:
//
//	rows - Alias table rows.
//	logger - Conflict warnings. Nil falls back to slog.Default().
//
// Outputs:
//
//	*AliasTable - Never nil.
func NewAliasTable(rows []AliasRow, logger *slog.Logger) *AliasTable {
	if logger == nil {
		logger = slog.Default()
	}
	t := &AliasTable{canonical: make(map[string]string)}

	bind := func(name, canon string) {
		key := strings.ToUpper(strings.TrimSpace(name))
		if key == "" {
			return
		}
		if existing, ok := t.canonical[key]; ok {
			if existing != canon {
				logger.Warn("alias table conflict, keeping first binding",
					"name", name, "kept", existing, "ignored", canon)
			}
			return
		}
		t.canonical[key] = canon
	}

	for _, row := range rows {
		canon := strings.ToUpper(strings.TrimSpace(row.Canonical))
		if canon == "" {
			continue
		}
		bind(row.Canonical, canon)
		for _, alias := range row.Aliases {
			bind(alias, canon)
		}
	}
	return t
}

// Resolve returns the uppercase canonical name for name.
//
// Unknown names resolve to their own uppercase form, so the result is
// always usable as a canonical map key.
func (t *AliasTable) Resolve(name string) string {
	key := strings.ToUpper(strings.TrimSpace(name))
	if canon, ok := t.canonical[key]; ok {
		return canon
	}
	return key
}

// IsAlias reports whether name resolves to a different canonical name.
func (t *AliasTable) IsAlias(name string) bool {
	key := strings.ToUpper(strings.TrimSpace(name))
	canon, ok := t.canonical[key]
	return ok && canon != key
}

// Len returns the number of bound names (canonicals plus aliases).
func (t *AliasTable) Len() int {
	return len(t.canonical)
}
