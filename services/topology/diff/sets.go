// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diff

import (
	"sort"

	"github.com/AleutianAI/mqtopo/services/topology/hierarchy"
)

// setDiff returns names present in a but not in b, sorted.
func setDiff(a, b map[string]*hierarchy.Manager) []string {
	var names []string
	for name := range a {
		if _, ok := b[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// setCommon returns names present in both maps, sorted.
func setCommon(a, b map[string]*hierarchy.Manager) []string {
	var names []string
	for name := range a {
		if _, ok := b[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// gatewaysOf filters a manager map down to its gateway subset.
func gatewaysOf(managers map[string]*hierarchy.Manager) map[string]*hierarchy.Manager {
	gateways := make(map[string]*hierarchy.Manager)
	for name, m := range managers {
		if m.IsGateway {
			gateways[name] = m
		}
	}
	return gateways
}

// connPair is one directed edge used for set comparison.
type connPair struct {
	source string
	target string
}

// connectionsOf collects the (source, target) pairs from every
// manager's outbound and outbound_extra lists. Inbound lists are the
// mirror image of outbound and are deliberately not walked, so an
// edge is counted once from its sending side.
func connectionsOf(managers map[string]*hierarchy.Manager) map[connPair]struct{} {
	pairs := make(map[connPair]struct{})
	for name, m := range managers {
		for _, target := range m.Outbound {
			pairs[connPair{source: name, target: target}] = struct{}{}
		}
		for _, target := range m.OutboundExtra {
			pairs[connPair{source: name, target: target}] = struct{}{}
		}
	}
	return pairs
}

// connDiff returns pairs present in a but not in b, sorted by source
// then target.
func connDiff(a, b map[connPair]struct{}) []connPair {
	var pairs []connPair
	for pair := range a {
		if _, ok := b[pair]; !ok {
			pairs = append(pairs, pair)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].source != pairs[j].source {
			return pairs[i].source < pairs[j].source
		}
		return pairs[i].target < pairs[j].target
	})
	return pairs
}

// orgOf resolves a name to its organization within one snapshot.
// Names that are not managers there, such as outbound_extra targets,
// resolve to "Unknown".
func orgOf(managers map[string]*hierarchy.Manager, name string) string {
	if m, ok := managers[name]; ok {
		return m.Organization
	}
	return "Unknown"
}
