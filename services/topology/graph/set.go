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
	"sort"
)

// Set is a deduplicating string set for edge collections.
//
// Adding the same endpoint twice is a no-op, which makes inverse edge
// insertion idempotent regardless of record order. Sets marshal to
// sorted JSON arrays so graph output is deterministic.
type Set map[string]struct{}

// NewSet returns a set containing the given items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts item into the set.
func (s Set) Add(item string) {
	s[item] = struct{}{}
}

// Has reports whether item is in the set.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Len returns the number of items in the set.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the set's items as a sorted slice.
func (s Set) Sorted() []string {
	items := make([]string, 0, len(s))
	for item := range s {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

// MarshalJSON renders the set as a sorted JSON array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON reads the set from a JSON array.
func (s *Set) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}
