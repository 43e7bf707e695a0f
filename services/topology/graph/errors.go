// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph builds the directed queue manager graph from CMDB
// records.
//
// Nodes are queue managers grouped into directorate buckets; edges are
// manager-to-manager connections inferred from SENDER and RECEIVER
// channel records. Endpoints that do not resolve to a known manager are
// classified against the application catalog, and anything left over is
// kept verbatim as an unresolved extra.
//
// # Build Order
//
// The build runs two strict passes over the record list. The first pass
// indexes every manager name before any relationship is resolved,
// because a record may reference a manager that only appears later in
// the list. The second pass counts queues and resolves edges. This
// ordering is a correctness requirement, not an optimization.
//
// # Lifecycle
//
// A typical graph lifecycle:
//  1. Create with NewBuilder(aliases, apps, logger)
//  2. Build(records) runs both passes
//  3. The returned graph is frozen; mutators reject it
//  4. Query with Node(), Directorates(), Nodes(), or marshal to JSON
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use during building. After Build
// returns the graph is frozen and can be read from multiple goroutines.
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrGraphFrozen is returned when attempting to modify a frozen graph.
	ErrGraphFrozen = errors.New("graph is frozen and cannot be modified")

	// ErrNoRecords is returned when Build is called with an empty record
	// list. An empty CMDB export is a run-level failure, not a valid
	// empty topology.
	ErrNoRecords = errors.New("no records to build from")
)
