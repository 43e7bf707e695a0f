// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package hierarchy

import (
	"sort"
	"strings"
)

// Context is the flat organizational context of one manager, served to
// downstream consumers that need constant-time lookups instead of tree
// walks.
type Context struct {
	Organization  string `json:"Organization"`
	Department    string `json:"Department"`
	BusinessOwner string `json:"Biz_Ownr"`
	Application   string `json:"Application"`
	OrgType       string `json:"Org_Type"`
}

// Lookup indexes manager context by uppercase manager name.
//
// Thread Safety: Safe for concurrent use after construction.
type Lookup struct {
	byManager map[string]Context
}

// BuildLookup walks a tree and indexes every manager leaf.
//
// The lookup is derived state: rebuilding it from the same tree always
// yields the same index, so it is never persisted alongside the tree.
func BuildLookup(t Tree) *Lookup {
	l := &Lookup{byManager: make(map[string]Context)}
	t.Walk(func(org, dept, owner, app string, m *Manager) {
		l.byManager[strings.ToUpper(m.MQManager)] = Context{
			Organization:  org,
			Department:    dept,
			BusinessOwner: owner,
			Application:   app,
			OrgType:       m.OrgType,
		}
	})
	return l
}

// Context returns the organizational context for a manager,
// case-insensitively.
func (l *Lookup) Context(mgr string) (Context, bool) {
	ctx, ok := l.byManager[strings.ToUpper(strings.TrimSpace(mgr))]
	return ctx, ok
}

// Managers returns all indexed manager names, sorted.
func (l *Lookup) Managers() []string {
	names := make([]string, 0, len(l.byManager))
	for name := range l.byManager {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of indexed managers.
func (l *Lookup) Len() int {
	return len(l.byManager)
}
