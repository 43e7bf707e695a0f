// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package topology

import (
	"github.com/AleutianAI/mqtopo/services/topology/hierarchy"
	"github.com/AleutianAI/mqtopo/services/topology/storage/runs"
)

// TreeFilter narrows the topology view.
//
// Department requires Organization. Gateways keeps only the synthetic
// gateway buckets; GatewayScope further narrows them to one scope.
type TreeFilter struct {
	Organization string
	Department   string
	Gateways     bool
	GatewayScope string
}

// TreeResponse is the response for GET /v1/topology/tree.
type TreeResponse struct {
	// Organizations is the organization count after filtering.
	Organizations int `json:"organizations"`

	// Managers is the manager leaf count after filtering.
	Managers int `json:"managers"`

	// Tree is the filtered four-level topology.
	Tree hierarchy.Tree `json:"tree"`
}

// ManagerResponse is the response for GET /v1/topology/managers/:name.
type ManagerResponse struct {
	// Name is the manager's display name from the topology.
	Name string `json:"name"`

	// Context is the manager's flat organizational context.
	Context hierarchy.Context `json:"context"`

	// Manager is the full manager leaf.
	Manager *hierarchy.Manager `json:"manager"`
}

// RunsResponse is the response for GET /v1/topology/runs.
type RunsResponse struct {
	// Runs is the run history, newest first.
	Runs []runs.Record `json:"runs"`

	// Count is len(Runs).
	Count int `json:"count"`
}

// RunResponse is the response for POST /v1/topology/run.
type RunResponse struct {
	// Record is the completed run's ledger record.
	Record runs.Record `json:"record"`
}

// HealthResponse is the response for GET /v1/topology/health.
type HealthResponse struct {
	// Status is "healthy" while the process serves requests.
	Status string `json:"status"`

	// Version is the service version.
	Version string `json:"version"`
}

// ReadyResponse is the response for GET /v1/topology/ready.
type ReadyResponse struct {
	// Ready is true once a pipeline run has produced a snapshot.
	Ready bool `json:"ready"`

	// TopologyAvailable is true when a processed topology exists.
	TopologyAvailable bool `json:"topology_available"`

	// LastRunStatus is the status of the newest recorded run, empty
	// when the ledger holds none.
	LastRunStatus string `json:"last_run_status,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`
}
