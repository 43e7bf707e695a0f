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

import "errors"

var (
	// ErrNoTopology is returned when no processed topology exists yet.
	// The first pipeline run produces it.
	ErrNoTopology = errors.New("no topology snapshot available, run the pipeline first")

	// ErrManagerNotFound is returned when a manager name is not in the
	// current topology.
	ErrManagerNotFound = errors.New("manager not found")

	// ErrNoChangeReport is returned when no change report has been
	// written yet.
	ErrNoChangeReport = errors.New("no change report available")

	// ErrNoGatewayReport is returned when no gateway analytics report
	// has been written yet.
	ErrNoGatewayReport = errors.New("no gateway report available")

	// ErrRunInProgress is returned by TriggerRun while another run is
	// in flight.
	ErrRunInProgress = errors.New("a pipeline run is already in progress")

	// ErrNoLedger is returned by run-history operations when the
	// service was built without a ledger.
	ErrNoLedger = errors.New("run ledger not configured")
)
