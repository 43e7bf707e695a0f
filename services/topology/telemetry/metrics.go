// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics contains the pre-defined instruments for the topology service.
//
// Description:
//
//	Counters and histograms for pipeline runs, CMDB record volume,
//	graph output, change detection, and watch-mode triggers. All
//	metric names carry the "mqtopo_" prefix.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// RunsTotal counts pipeline runs by status.
	RunsTotal metric.Int64Counter

	// RunDuration records end-to-end pipeline run duration in seconds.
	RunDuration metric.Float64Histogram

	// PhaseDuration records per-phase duration in seconds, by phase.
	PhaseDuration metric.Float64Histogram

	// RecordsProcessed counts CMDB records handed to the graph builder.
	RecordsProcessed metric.Int64Counter

	// GraphEdges counts resolved connection edges produced per run.
	GraphEdges metric.Int64Counter

	// ChangesDetected counts reported changes by category.
	ChangesDetected metric.Int64Counter

	// WatchTriggers counts pipeline runs started by the file watcher.
	WatchTriggers metric.Int64Counter
}

// NewMetrics creates a Metrics instance with all instruments registered.
//
// Description:
//
//	Registers every pre-defined instrument with the provided meter.
//	Returns an error if any registration fails.
//
// Inputs:
//
//	meter - The OTel meter to register instruments with.
//
// Outputs:
//
//	*Metrics - The metrics instance with every instrument initialized.
//	error - Non-nil if instrument registration fails.
//
// Example:
//
//	metrics, err := telemetry.NewMetrics(otel.Meter("mqtopo"))
//	if err != nil {
//	    return fmt.Errorf("create metrics: %w", err)
//	}
//	metrics.RunsTotal.Add(ctx, 1, ...)
//
// Thread Safety: Safe for concurrent use after creation.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.RunsTotal, err = meter.Int64Counter(
		"mqtopo_runs_total",
		metric.WithDescription("Total pipeline runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create runs_total: %w", err)
	}

	m.RunDuration, err = meter.Float64Histogram(
		"mqtopo_run_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return nil, fmt.Errorf("create run_duration: %w", err)
	}

	m.PhaseDuration, err = meter.Float64Histogram(
		"mqtopo_phase_duration_seconds",
		metric.WithDescription("Pipeline phase duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, fmt.Errorf("create phase_duration: %w", err)
	}

	m.RecordsProcessed, err = meter.Int64Counter(
		"mqtopo_records_processed_total",
		metric.WithDescription("Total CMDB records processed"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create records_processed: %w", err)
	}

	m.GraphEdges, err = meter.Int64Counter(
		"mqtopo_graph_edges_total",
		metric.WithDescription("Total resolved connection edges produced"),
		metric.WithUnit("{edge}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create graph_edges: %w", err)
	}

	m.ChangesDetected, err = meter.Int64Counter(
		"mqtopo_changes_detected_total",
		metric.WithDescription("Total detected changes by category"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create changes_detected: %w", err)
	}

	m.WatchTriggers, err = meter.Int64Counter(
		"mqtopo_watch_triggers_total",
		metric.WithDescription("Total pipeline runs started by the file watcher"),
		metric.WithUnit("{trigger}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create watch_triggers: %w", err)
	}

	return m, nil
}
