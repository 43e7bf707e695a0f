// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gateway analyzes the gateway managers of an enriched tree.
//
// Gateways are the designated boundary-crossing managers. The
// analyzer reports their traffic volume, which organization and
// department pairs communicate through them, what applications depend
// on each one, how load distributes across them, and which routes
// hang off a single gateway with no fallback.
//
// # Route model
//
// A route is an unordered pair of organizations (or departments, for
// Internal-scope gateways) observed communicating through at least
// one gateway. An organization whose only Internal gateway mediates a
// route is a single point of failure for it; routes served by two or
// more gateways are redundant.
package gateway

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/AleutianAI/mqtopo/services/topology/hierarchy"
)

// ErrNilTree is returned by Analyze when the tree is nil.
var ErrNilTree = errors.New("tree is nil")

// Analyzer computes gateway analytics over enriched trees.
//
// Thread Safety:
//
//	Analyzer is safe for concurrent use. Analyze keeps no state
//	between calls.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates a gateway analyzer.
//
// Inputs:
//
//	logger - Summary logging. Nil falls back to slog.Default().
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// Analyze runs the full gateway analysis over one enriched tree.
//
// Description:
//
//	Works on the flat manager view of the tree. Edge endpoints that
//	resolve to managers contribute organization, department, and
//	application context; unresolved extras still count toward raw
//	connection volume but carry no context. A tree without gateways
//	yields an empty report, not an error.
//
// Inputs:
//
//	t - The enriched tree.
//
// Outputs:
//
//	*Report - The analytics report, never nil on success.
//	error - ErrNilTree only.
func (a *Analyzer) Analyze(t hierarchy.Tree) (*Report, error) {
	if t == nil {
		return nil, ErrNilTree
	}

	managers := t.Managers()
	gateways := make(map[string]*hierarchy.Manager)
	for name, m := range managers {
		if m.IsGateway {
			gateways[name] = m
		}
	}

	r := newReport()
	a.summarize(r, gateways)
	a.analyzeTraffic(r, gateways, managers)
	a.analyzeConnectivity(r, gateways, managers)
	a.analyzeDependencies(r, gateways, managers)
	a.analyzeLoad(r, gateways)
	a.analyzeRedundancy(r)

	a.logger.Info("gateway analysis complete",
		"gateways", r.Summary.TotalGateways,
		"org_routes", len(r.OrgConnectivity),
		"spof_routes", r.Redundancy.SPOFCount)
	return r, nil
}

// summarize counts the gateway population by scope and its total edge
// volume across all four edge lists.
func (a *Analyzer) summarize(r *Report, gateways map[string]*hierarchy.Manager) {
	internal, external, connections := 0, 0, 0
	for _, gw := range gateways {
		switch gw.GatewayScope {
		case "Internal":
			internal++
		case "External":
			external++
		}
		connections += edgeCount(gw)
	}
	r.Summary = Summary{
		TotalGateways:    len(gateways),
		InternalGateways: internal,
		ExternalGateways: external,
		TotalConnections: connections,
	}
}

// analyzeTraffic fills the per-gateway traffic table.
func (a *Analyzer) analyzeTraffic(r *Report, gateways, managers map[string]*hierarchy.Manager) {
	for name, gw := range gateways {
		inbound := concat(gw.Inbound, gw.InboundExtra)
		outbound := concat(gw.Outbound, gw.OutboundExtra)

		orgs := make(map[string]struct{})
		depts := make(map[string]struct{})
		for _, endpoint := range concat(inbound, outbound) {
			if remote, ok := managers[endpoint]; ok {
				orgs[remote.Organization] = struct{}{}
				depts[remote.Department] = struct{}{}
			}
		}

		r.Traffic[name] = Traffic{
			Scope:                  gw.GatewayScope,
			Organization:           gw.Organization,
			Department:             gw.Department,
			InboundConnections:     len(inbound),
			OutboundConnections:    len(outbound),
			TotalConnections:       len(inbound) + len(outbound),
			ConnectedOrganizations: len(orgs),
			ConnectedDepartments:   len(depts),
			QueueLocal:             gw.QLocal,
			QueueRemote:            gw.QRemote,
			QueueAlias:             gw.QAlias,
		}
	}
}

// analyzeConnectivity builds the organization matrix over every
// gateway and the department matrix over Internal-scope gateways.
// Each resolvable endpoint occurrence on a differing org or
// department counts toward its route.
func (a *Analyzer) analyzeConnectivity(r *Report, gateways, managers map[string]*hierarchy.Manager) {
	orgRoutes := make(map[string]*routeAgg)
	deptRoutes := make(map[string]*routeAgg)

	for name, gw := range gateways {
		for _, endpoint := range allEndpoints(gw) {
			remote, ok := managers[endpoint]
			if !ok {
				continue
			}
			if remote.Organization != gw.Organization {
				addRoute(orgRoutes, routeKey(gw.Organization, remote.Organization), name)
			}
			if gw.GatewayScope == "Internal" && remote.Department != gw.Department {
				addRoute(deptRoutes, routeKey(gw.Department, remote.Department), name)
			}
		}
	}

	for key, agg := range orgRoutes {
		r.OrgConnectivity[key] = agg.route()
	}
	for key, agg := range deptRoutes {
		r.DeptConnectivity[key] = agg.route()
	}
}

// analyzeDependencies lists, per gateway, the raw endpoint count and
// the applications of resolvable endpoints outside the synthetic
// gateway buckets.
func (a *Analyzer) analyzeDependencies(r *Report, gateways, managers map[string]*hierarchy.Manager) {
	for name, gw := range gateways {
		endpoints := allEndpoints(gw)
		apps := make(map[string]struct{})
		for _, endpoint := range endpoints {
			remote, ok := managers[endpoint]
			if !ok {
				continue
			}
			if remote.Application == "" || hierarchy.IsGatewayApp(remote.Application) {
				continue
			}
			apps[remote.Application] = struct{}{}
		}
		r.Dependencies[name] = Dependencies{
			DependentManagers:     len(endpoints),
			DependentApplications: sortedNames(apps),
			ApplicationCount:      len(apps),
		}
	}
}

// analyzeLoad scores each gateway and splits the ranking by scope.
func (a *Analyzer) analyzeLoad(r *Report, gateways map[string]*hierarchy.Manager) {
	for name, gw := range gateways {
		connections := edgeCount(gw)
		queues := gw.QLocal + gw.QRemote + gw.QAlias
		load := Load{
			Gateway:     name,
			Connections: connections,
			Queues:      queues,
			LoadScore:   connections*2 + queues,
		}
		if gw.GatewayScope == "Internal" {
			r.Load.Internal = append(r.Load.Internal, load)
		} else {
			r.Load.External = append(r.Load.External, load)
		}
	}
	sortLoads(r.Load.Internal)
	sortLoads(r.Load.External)
}

// analyzeRedundancy classifies every route as a single point of
// failure or a redundant route. Runs after both connectivity
// matrices are filled.
func (a *Analyzer) analyzeRedundancy(r *Report) {
	spofs := []SPOF{}
	redundant := 0

	scan := func(routes map[string]Route, routeType string) {
		for _, key := range sortedRouteKeys(routes) {
			route := routes[key]
			if len(route.Gateways) == 1 {
				spofs = append(spofs, SPOF{
					Route:           key,
					Gateway:         route.Gateways[0],
					ConnectionCount: route.ConnectionCount,
					Type:            routeType,
				})
			} else {
				redundant++
			}
		}
	}
	scan(r.OrgConnectivity, "Organization")
	scan(r.DeptConnectivity, "Department")

	r.Redundancy = Redundancy{
		SinglePointsOfFailure: spofs,
		SPOFCount:             len(spofs),
		RoutesWithRedundancy:  redundant,
	}
}

// routeAgg accumulates one route before conversion to its wire form.
type routeAgg struct {
	gateways map[string]struct{}
	count    int
}

func addRoute(routes map[string]*routeAgg, key, gateway string) {
	agg := routes[key]
	if agg == nil {
		agg = &routeAgg{gateways: make(map[string]struct{})}
		routes[key] = agg
	}
	agg.gateways[gateway] = struct{}{}
	agg.count++
}

func (agg *routeAgg) route() Route {
	return Route{
		Gateways:        sortedNames(agg.gateways),
		ConnectionCount: agg.count,
	}
}

// routeKey joins the two endpoints of a route in sorted order.
func routeKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + " <-> " + b
}

// edgeCount sums the lengths of all four edge lists.
func edgeCount(m *hierarchy.Manager) int {
	return len(m.Inbound) + len(m.Outbound) + len(m.InboundExtra) + len(m.OutboundExtra)
}

// allEndpoints returns every endpoint across the four edge lists.
func allEndpoints(m *hierarchy.Manager) []string {
	all := make([]string, 0, edgeCount(m))
	all = append(all, m.Inbound...)
	all = append(all, m.Outbound...)
	all = append(all, m.InboundExtra...)
	all = append(all, m.OutboundExtra...)
	return all
}

// concat appends two lists into a fresh slice.
func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// sortedNames returns set members in sorted order.
func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortedRouteKeys returns route keys in sorted order.
func sortedRouteKeys(routes map[string]Route) []string {
	keys := make([]string, 0, len(routes))
	for key := range routes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// sortLoads orders by descending score with the gateway name as the
// tiebreak.
func sortLoads(loads []Load) {
	sort.Slice(loads, func(i, j int) bool {
		if loads[i].LoadScore != loads[j].LoadScore {
			return loads[i].LoadScore > loads[j].LoadScore
		}
		return loads[i].Gateway < loads[j].Gateway
	})
}
