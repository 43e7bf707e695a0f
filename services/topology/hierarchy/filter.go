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

import "strings"

// Filters return new trees that share leaves with the source tree.
// Treat filtered trees as read-only views.

// ByOrganization returns the subtree for one organization, matched
// case-insensitively. The result is empty when the organization is
// absent.
func (t Tree) ByOrganization(name string) Tree {
	out := make(Tree)
	for org, o := range t {
		if strings.EqualFold(org, name) {
			out[org] = o
		}
	}
	return out
}

// ByDepartment returns the subtree for one department of one
// organization, matched case-insensitively.
func (t Tree) ByDepartment(orgName, deptName string) Tree {
	out := make(Tree)
	for org, o := range t {
		if !strings.EqualFold(org, orgName) {
			continue
		}
		for dept, d := range o.Departments {
			if !strings.EqualFold(dept, deptName) {
				continue
			}
			out[org] = &Organization{
				OrgType:     o.OrgType,
				Departments: map[string]Department{dept: d},
			}
		}
	}
	return out
}

// GatewaysOnly returns a tree containing only the synthetic gateway
// application buckets. A non-empty scope keeps only "Gateway (<scope>)"
// buckets; an empty scope keeps gateways of every scope.
func (t Tree) GatewaysOnly(scope string) Tree {
	wanted := ""
	if scope != "" {
		wanted = GatewayAppPrefix + scope + ")"
	}

	out := make(Tree)
	t.Walk(func(org, dept, owner, app string, m *Manager) {
		if !IsGatewayApp(app) {
			return
		}
		if wanted != "" && !strings.EqualFold(app, wanted) {
			return
		}
		out.Place(org, m.OrgType, dept, owner, app, m)
	})
	return out
}
