// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package runs

import (
	"time"

	"github.com/AleutianAI/mqtopo/services/topology/diff"
)

// Run status values recorded on a Record.
const (
	// StatusSucceeded marks a run where every phase completed.
	StatusSucceeded = "succeeded"

	// StatusPartial marks a run where the core pipeline completed but
	// one or more consumers failed. Errors holds the details.
	StatusPartial = "partial"

	// StatusFailed marks a run aborted before the enriched tree was
	// produced.
	StatusFailed = "failed"
)

// Record is one pipeline run as persisted in the ledger.
type Record struct {
	// ID is the run's UUID.
	ID string `json:"id"`

	// Status is one of StatusSucceeded, StatusPartial, StatusFailed.
	Status string `json:"status"`

	// Started is when the run began, in UTC.
	Started time.Time `json:"started"`

	// Finished is when the run ended, in UTC.
	Finished time.Time `json:"finished"`

	// Stats describes the topology the run produced.
	Stats Stats `json:"stats"`

	// Changes summarizes the diff against the previous baseline.
	// Nil when no baseline existed or the diff phase did not run.
	Changes *diff.Summary `json:"changes,omitempty"`

	// Artifacts lists the file paths the run wrote.
	Artifacts []string `json:"artifacts"`

	// Errors holds non-fatal consumer failures and, for failed runs,
	// the fatal error.
	Errors []string `json:"errors"`
}

// Duration returns the wall-clock time the run took.
func (r Record) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Stats captures the shape of the topology a run produced. All counts
// are zero for runs that failed before the enrichment phase.
type Stats struct {
	// RecordsLoaded is the number of CMDB rows read from the export.
	RecordsLoaded int `json:"records_loaded"`

	// RecordsDeduped is the row count after duplicate removal.
	RecordsDeduped int `json:"records_deduped"`

	// Organizations through Applications count the populated levels
	// of the enriched tree.
	Organizations  int `json:"organizations"`
	Departments    int `json:"departments"`
	BusinessOwners int `json:"business_owners"`
	Applications   int `json:"applications"`

	// Managers is the number of queue manager leaves in the tree.
	Managers int `json:"mqmanagers"`

	// Gateways is the number of managers classified as gateways.
	Gateways int `json:"gateways"`

	// QueueLocal, QueueRemote and QueueAlias are queue totals across
	// all managers.
	QueueLocal  int `json:"queue_local"`
	QueueRemote int `json:"queue_remote"`
	QueueAlias  int `json:"queue_alias"`

	// Connections is the total resolved outbound edge count.
	Connections int `json:"connections"`
}
