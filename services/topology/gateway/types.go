// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gateway

// Report is the full gateway analytics result.
//
// Maps and slices are non-nil, so empty sections serialize as {} and
// [] rather than null. Map keys marshal sorted and every slice has a
// defined order, so the same tree always produces identical bytes.
type Report struct {
	Summary          Summary                 `json:"summary"`
	Traffic          map[string]Traffic      `json:"gateway_traffic"`
	OrgConnectivity  map[string]Route        `json:"org_connectivity"`
	DeptConnectivity map[string]Route        `json:"department_connectivity"`
	Dependencies     map[string]Dependencies `json:"gateway_dependencies"`
	Load             LoadDistribution        `json:"load_distribution"`
	Redundancy       Redundancy              `json:"redundancy_analysis"`
}

// Summary counts the gateway population and its edge volume.
type Summary struct {
	TotalGateways    int `json:"total_gateways"`
	InternalGateways int `json:"internal_gateways"`
	ExternalGateways int `json:"external_gateways"`
	TotalConnections int `json:"total_gateway_connections"`
}

// Traffic describes one gateway's edge volume and reach. Inbound and
// outbound counts include the unresolved extras; the connected
// organization and department counts cover only endpoints that
// resolve to managers.
type Traffic struct {
	Scope                  string `json:"scope"`
	Organization           string `json:"organization"`
	Department             string `json:"department"`
	InboundConnections     int    `json:"inbound_connections"`
	OutboundConnections    int    `json:"outbound_connections"`
	TotalConnections       int    `json:"total_connections"`
	ConnectedOrganizations int    `json:"connected_organizations"`
	ConnectedDepartments   int    `json:"connected_departments"`
	QueueLocal             int    `json:"queue_local"`
	QueueRemote            int    `json:"queue_remote"`
	QueueAlias             int    `json:"queue_alias"`
}

// Route aggregates the gateways mediating one connectivity pair. The
// map key has the form "A <-> B" with the endpoints sorted.
type Route struct {
	Gateways        []string `json:"gateways"`
	ConnectionCount int      `json:"connection_count"`
}

// Dependencies lists what leans on one gateway. DependentManagers is
// the raw endpoint count across all four edge lists; the application
// list covers resolvable endpoints outside the synthetic gateway
// buckets.
type Dependencies struct {
	DependentManagers     int      `json:"dependent_mqmanagers"`
	DependentApplications []string `json:"dependent_applications"`
	ApplicationCount      int      `json:"application_count"`
}

// LoadDistribution splits per-gateway load by scope, each list sorted
// by descending score. Gateways with a scope other than Internal are
// grouped with the external ones.
type LoadDistribution struct {
	Internal []Load `json:"internal_gateways"`
	External []Load `json:"external_gateways"`
}

// Load is one gateway's weighted load score.
type Load struct {
	Gateway     string `json:"gateway"`
	Connections int    `json:"connections"`
	Queues      int    `json:"queues"`
	LoadScore   int    `json:"load_score"`
}

// Redundancy reports routes with and without gateway fallback.
type Redundancy struct {
	SinglePointsOfFailure []SPOF `json:"single_points_of_failure"`
	SPOFCount             int    `json:"spof_count"`
	RoutesWithRedundancy  int    `json:"routes_with_redundancy"`
}

// SPOF is a route served by exactly one gateway. Type is
// "Organization" or "Department" depending on the connectivity matrix
// the route came from.
type SPOF struct {
	Route           string `json:"route"`
	Gateway         string `json:"gateway"`
	ConnectionCount int    `json:"connection_count"`
	Type            string `json:"type"`
}

// newReport returns a Report with every map and slice initialized.
func newReport() *Report {
	return &Report{
		Traffic:          make(map[string]Traffic),
		OrgConnectivity:  make(map[string]Route),
		DeptConnectivity: make(map[string]Route),
		Dependencies:     make(map[string]Dependencies),
		Load: LoadDistribution{
			Internal: []Load{},
			External: []Load{},
		},
		Redundancy: Redundancy{
			SinglePointsOfFailure: []SPOF{},
		},
	}
}
