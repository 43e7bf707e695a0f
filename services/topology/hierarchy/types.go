// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package hierarchy reshapes the flat manager graph into the four-level
// organizational tree.
//
// The tree nests Organization, Department, business owner, and
// Application levels, with enriched manager leaves. Its JSON form is
// the one semi-stable wire format downstream tools depend on: at the
// Organization level the keys "_org_type" and "_departments" are
// structural sentinels separating metadata from child nodes, and every
// other level maps child names directly to child objects.
//
// Enrichment is a best-effort join: missing hierarchy rows, unmapped
// managers, and absent gateway catalogs all degrade to explicit
// defaults rather than errors, because CMDB reference data is expected
// to be incomplete.
package hierarchy

import (
	"encoding/json"
	"sort"
	"strings"
)

// GatewayAppPrefix prefixes the synthetic application buckets gateway
// managers are filed under, as in "Gateway (Internal)".
const GatewayAppPrefix = "Gateway ("

// Manager is one enriched queue manager leaf.
type Manager struct {
	Organization string `json:"Organization"`
	OrgType      string `json:"Org_Type"`
	Department   string `json:"Department"`
	BizOwnr      string `json:"Biz_Ownr"`
	Application  string `json:"Application"`
	MQManager    string `json:"MQmanager"`

	QLocal  int `json:"qlocal_count"`
	QRemote int `json:"qremote_count"`
	QAlias  int `json:"qalias_count"`
	Total   int `json:"total_count"`

	Inbound              []string `json:"inbound"`
	Outbound             []string `json:"outbound"`
	InboundExtra         []string `json:"inbound_extra"`
	OutboundExtra        []string `json:"outbound_extra"`
	InboundApps          []string `json:"inbound_apps"`
	OutboundApps         []string `json:"outbound_apps"`
	InboundAppsExternal  []string `json:"inbound_apps_external"`
	OutboundAppsExternal []string `json:"outbound_apps_external"`

	// IsGateway marks managers from the gateway catalog. Gateways are
	// filed under a synthetic "Gateway (<Scope>)" application and carry
	// the two fields below; for everyone else both are omitted.
	IsGateway          bool   `json:"IsGateway"`
	GatewayScope       string `json:"GatewayScope,omitempty"`
	GatewayDescription string `json:"GatewayDescription,omitempty"`
}

// Application maps manager names to their enriched leaves.
type Application map[string]*Manager

// OwnerGroup maps application names to their managers.
type OwnerGroup map[string]Application

// Department maps business owner names to their application groups.
type Department map[string]OwnerGroup

// Organization is one top-level tree entry.
type Organization struct {
	// OrgType classifies the organization, typically "Internal" or
	// "External". The first business owner filed under the
	// organization fixes it.
	OrgType string

	// Departments holds the organization's child level.
	Departments map[string]Department
}

// organizationJSON is the sentinel-keyed wire form of Organization.
type organizationJSON struct {
	OrgType     string                `json:"_org_type"`
	Departments map[string]Department `json:"_departments"`
}

// MarshalJSON renders the organization with its sentinel keys.
func (o *Organization) MarshalJSON() ([]byte, error) {
	return json.Marshal(organizationJSON{
		OrgType:     o.OrgType,
		Departments: o.Departments,
	})
}

// UnmarshalJSON reads the sentinel-keyed wire form.
func (o *Organization) UnmarshalJSON(data []byte) error {
	var wire organizationJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	o.OrgType = wire.OrgType
	o.Departments = wire.Departments
	if o.Departments == nil {
		o.Departments = make(map[string]Department)
	}
	return nil
}

// Tree is the enriched four-level organizational tree, keyed by
// organization name.
type Tree map[string]*Organization

// Place files a manager leaf under org/dept/owner/app, creating the
// intermediate levels as needed. The organization's OrgType is fixed by
// the first leaf placed in it.
func (t Tree) Place(org, orgType, dept, owner, app string, m *Manager) {
	o, ok := t[org]
	if !ok {
		o = &Organization{
			OrgType:     orgType,
			Departments: make(map[string]Department),
		}
		t[org] = o
	}
	d, ok := o.Departments[dept]
	if !ok {
		d = make(Department)
		o.Departments[dept] = d
	}
	g, ok := d[owner]
	if !ok {
		g = make(OwnerGroup)
		d[owner] = g
	}
	a, ok := g[app]
	if !ok {
		a = make(Application)
		g[app] = a
	}
	a[m.MQManager] = m
}

// Walk visits every manager leaf in deterministic sorted order.
func (t Tree) Walk(fn func(org, dept, owner, app string, m *Manager)) {
	for _, org := range sortedKeys(t) {
		o := t[org]
		for _, dept := range sortedKeys(o.Departments) {
			d := o.Departments[dept]
			for _, owner := range sortedKeys(d) {
				g := d[owner]
				for _, app := range sortedKeys(g) {
					a := g[app]
					for _, name := range sortedKeys(a) {
						fn(org, dept, owner, app, a[name])
					}
				}
			}
		}
	}
}

// ManagerCount returns the number of manager leaves in the tree.
func (t Tree) ManagerCount() int {
	count := 0
	t.Walk(func(string, string, string, string, *Manager) {
		count++
	})
	return count
}

// Managers collapses the tree into a flat map keyed by manager display
// name. A manager filed under several branches keeps the last leaf
// visited; the walk is sorted, so the lexically greatest branch wins.
func (t Tree) Managers() map[string]*Manager {
	managers := make(map[string]*Manager)
	t.Walk(func(_, _, _, _ string, m *Manager) {
		managers[m.MQManager] = m
	})
	return managers
}

// IsGatewayApp reports whether an application bucket name is one of the
// synthetic gateway buckets.
func IsGatewayApp(app string) bool {
	return strings.HasPrefix(app, GatewayAppPrefix)
}

// sortedKeys returns a map's keys in sorted order.
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
