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
	"strings"

	"github.com/AleutianAI/mqtopo/services/topology/cmdb"
	"github.com/AleutianAI/mqtopo/services/topology/registry"
)

// managerIndex is the first-pass index over the record list.
//
// It holds the universe of valid manager names so the resolve pass can
// recognize a manager referenced by record N even when it is only
// introduced by record M > N. All keys are canonical uppercase names
// after alias resolution.
type managerIndex struct {
	// valid holds every canonical manager name seen in the records.
	valid map[string]struct{}

	// display maps canonical name -> first-seen display casing. When a
	// manager only ever appears through an alias, the display form is
	// the canonical name itself.
	display map[string]string

	// directorate maps canonical name -> home directorate. The first
	// record with a non-empty directorate wins.
	directorate map[string]string

	// aliases resolves alternate names during endpoint search.
	aliases *registry.AliasTable
}

// buildIndex scans all records once and collects the manager universe.
//
// This pass must run to completion before any relationship resolution.
func buildIndex(records []cmdb.Record, aliases *registry.AliasTable) *managerIndex {
	idx := &managerIndex{
		valid:       make(map[string]struct{}),
		display:     make(map[string]string),
		directorate: make(map[string]string),
		aliases:     aliases,
	}

	for _, rec := range records {
		if rec.Manager == "" {
			continue
		}
		canon := aliases.Resolve(rec.Manager)
		idx.valid[canon] = struct{}{}

		if _, ok := idx.display[canon]; !ok {
			if strings.ToUpper(rec.Manager) == canon {
				idx.display[canon] = rec.Manager
			} else {
				idx.display[canon] = canon
			}
		}
		if _, ok := idx.directorate[canon]; !ok && rec.Directorate != "" {
			idx.directorate[canon] = rec.Directorate
		}
	}
	return idx
}

// displayOf returns the display casing for a canonical name.
func (idx *managerIndex) displayOf(canon string) string {
	if display, ok := idx.display[canon]; ok {
		return display
	}
	return canon
}

// directorateOf returns the home directorate for a canonical name.
func (idx *managerIndex) directorateOf(canon string) string {
	if directorate, ok := idx.directorate[canon]; ok {
		return directorate
	}
	return "Unknown"
}

// resolveEndpoint searches text for a known manager other than self.
//
// Description:
//
//	Dot-separated tokens are tried first, then the whole string. Every
//	candidate is alias-resolved before the membership and self checks,
//	so a token naming the current manager by any of its aliases never
//	matches and falls through to the caller's next classification.
//
// Inputs:
//
//	text - The remainder string to search.
//	self - Canonical name of the current manager.
//
// Outputs:
//
//	string - Canonical name of the matched manager.
//	bool - True when the match went through an alias binding.
//	bool - True when a manager was found.
func (idx *managerIndex) resolveEndpoint(text, self string) (string, bool, bool) {
	for _, part := range strings.Split(text, ".") {
		canon := idx.aliases.Resolve(part)
		if canon == self {
			continue
		}
		if _, ok := idx.valid[canon]; ok {
			return canon, idx.aliases.IsAlias(part), true
		}
	}

	canon := idx.aliases.Resolve(text)
	if canon != self {
		if _, ok := idx.valid[canon]; ok {
			return canon, idx.aliases.IsAlias(text), true
		}
	}
	return "", false, false
}
