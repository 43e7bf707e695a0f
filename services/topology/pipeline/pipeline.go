// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline orchestrates a full topology run: CMDB export in,
// artifacts and a run record out.
//
// A run moves through fixed phases: load, parse, dedup, reference
// tables, graph build, enrich, diff, analytics, artifacts, retention.
// Each phase runs under its own span. The phases through enrich are
// the core; any failure there aborts the run. Everything after enrich
// consumes the tree and fails soft, collecting errors on the run
// record instead of aborting, so one broken consumer never costs the
// topology snapshot.
//
// The baseline snapshot is replaced only when no baseline existed or
// the comparison against it succeeded. A failed comparison leaves the
// baseline in place so the next run can still diff against it.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/mqtopo/services/topology/cmdb"
	"github.com/AleutianAI/mqtopo/services/topology/config"
	"github.com/AleutianAI/mqtopo/services/topology/diff"
	"github.com/AleutianAI/mqtopo/services/topology/gateway"
	"github.com/AleutianAI/mqtopo/services/topology/graph"
	"github.com/AleutianAI/mqtopo/services/topology/hierarchy"
	"github.com/AleutianAI/mqtopo/services/topology/registry"
	"github.com/AleutianAI/mqtopo/services/topology/storage/runs"
	"github.com/AleutianAI/mqtopo/services/topology/telemetry"
)

// tracerName scopes the pipeline's spans.
const tracerName = "mqtopo.pipeline"

// Result bundles everything one run produced.
//
// Record is always populated, including for failed runs, so callers
// can report what happened. Tree, Lookup, Changes and Gateway are set
// only once the producing phase has completed.
type Result struct {
	// Record is the run's ledger record.
	Record runs.Record

	// Tree is the enriched organizational tree.
	Tree hierarchy.Tree

	// Lookup resolves manager names to their tree context.
	Lookup *hierarchy.Lookup

	// Changes is the diff against the baseline. Nil when diff is
	// disabled, no baseline existed, or the comparison failed.
	Changes *diff.ChangeSet

	// Gateway is the gateway analytics report. Nil when analysis
	// failed.
	Gateway *gateway.Report
}

// Pipeline runs the topology pipeline described by its configuration.
//
// Description:
//
//	A Pipeline is cheap to construct and holds no per-run state; the
//	same value serves the CLI's one-shot run, watch mode, and the
//	HTTP run trigger.
//
// Thread Safety:
//
//	Construction is safe anywhere. Run calls must be serialized by
//	the caller: concurrent runs would race on the canonical artifact
//	paths and the baseline.
type Pipeline struct {
	cfg     config.Config
	logger  *slog.Logger
	ledger  *runs.Ledger
	metrics *telemetry.Metrics
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithLedger records every run in the given ledger.
func WithLedger(ledger *runs.Ledger) Option {
	return func(p *Pipeline) {
		p.ledger = ledger
	}
}

// WithMetrics reports run and phase metrics on the given instruments.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New creates a Pipeline. A nil logger falls back to slog.Default().
func New(cfg config.Config, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "pipeline")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one full pipeline run.
//
// Description:
//
//	Runs every phase, writes the run's artifacts, and appends the run
//	record to the ledger when one is configured. The returned Result
//	is non-nil even on failure; its Record carries the fatal error
//	and the failed status.
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//
// Outputs:
//
//	*Result - The run's outputs and its ledger record.
//	error - Non-nil when a core phase failed or the context ended.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	runID := uuid.NewString()
	res := &Result{
		Record: runs.Record{
			ID:        runID,
			Started:   time.Now().UTC(),
			Artifacts: []string{},
			Errors:    []string{},
		},
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "pipeline.Run",
		trace.WithAttributes(attribute.String("run_id", runID)))
	defer span.End()

	logger := telemetry.LoggerWithRun(ctx, p.logger, runID)
	logger.Info("pipeline started",
		slog.String("cmdb_export", p.cfg.Input.CMDBExport),
		slog.String("output_dir", p.cfg.Output.Dir))

	runErr := p.execute(ctx, logger, res)

	rec := &res.Record
	if runErr != nil {
		rec.Errors = append(rec.Errors, runErr.Error())
	}
	rec.Finished = time.Now().UTC()
	rec.Status = runStatus(runErr, rec.Errors)

	duration := rec.Finished.Sub(rec.Started)
	if p.metrics != nil {
		p.metrics.RunsTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("status", rec.Status)))
		p.metrics.RunDuration.Record(ctx, duration.Seconds())
	}

	p.appendRecord(ctx, logger, res)

	if runErr != nil {
		telemetry.RecordError(span, runErr)
		logger.Error("pipeline failed",
			slog.String("error", runErr.Error()),
			slog.Duration("duration", duration))
		return res, runErr
	}

	telemetry.SetSpanOK(span)
	logger.Info("pipeline completed",
		slog.String("status", rec.Status),
		slog.Duration("duration", duration),
		slog.Int("mqmanagers", rec.Stats.Managers),
		slog.Int("errors", len(rec.Errors)))
	return res, nil
}

// execute drives the phase sequence. The returned error is the fatal
// one; non-fatal consumer failures land on the run record.
func (p *Pipeline) execute(ctx context.Context, logger *slog.Logger, res *Result) error {
	rec := &res.Record

	var raw []map[string]any
	if err := p.phase(ctx, logger, "load", func(context.Context) error {
		data, err := os.ReadFile(p.cfg.Input.CMDBExport)
		if err != nil {
			return fmt.Errorf("read cmdb export: %w", err)
		}
		if raw, err = cmdb.Decode(data); err != nil {
			return fmt.Errorf("decode cmdb export: %w", err)
		}
		rec.Stats.RecordsLoaded = len(raw)
		return nil
	}); err != nil {
		return err
	}

	var records []cmdb.Record
	if err := p.phase(ctx, logger, "parse", func(context.Context) error {
		var skipped int
		records, skipped = cmdb.ParseRecords(raw, p.fieldMap())
		if skipped > 0 {
			logger.Warn("records without a manager name skipped",
				slog.Int("skipped", skipped))
		}
		return nil
	}); err != nil {
		return err
	}

	if err := p.phase(ctx, logger, "dedup", func(context.Context) error {
		records = cmdb.Deduplicate(records, p.cfg.Dedup.IgnoreType)
		rec.Stats.RecordsDeduped = len(records)
		return nil
	}); err != nil {
		return err
	}

	var refs registry.Set
	if err := p.phase(ctx, logger, "reference_tables", func(context.Context) error {
		refs = registry.LoadSet(registry.SetPaths{
			Aliases:      p.cfg.Input.Aliases,
			AppMapping:   p.cfg.Input.AppMapping,
			ExternalApps: p.cfg.Input.ExternalApps,
			OrgHierarchy: p.cfg.Input.OrgHierarchy,
			Gateways:     p.cfg.Input.Gateways,
		}, logger)
		return nil
	}); err != nil {
		return err
	}

	var g *graph.Graph
	if err := p.phase(ctx, logger, "graph_build", func(ctx context.Context) error {
		var err error
		g, _, err = graph.NewBuilder(refs.Aliases, refs.Apps, logger).Build(records)
		if err != nil {
			return fmt.Errorf("build graph: %w", err)
		}
		if p.metrics != nil {
			p.metrics.RecordsProcessed.Add(ctx, int64(len(records)))
			p.metrics.GraphEdges.Add(ctx, int64(g.EdgeCount()))
		}
		return nil
	}); err != nil {
		return err
	}

	if err := p.phase(ctx, logger, "enrich", func(context.Context) error {
		tree, lookup, err := hierarchy.NewEnricher(refs.Orgs, refs.AppMapping, refs.Gateways, logger).Enrich(g)
		if err != nil {
			return fmt.Errorf("enrich graph: %w", err)
		}
		res.Tree, res.Lookup = tree, lookup
		fillTreeStats(&rec.Stats, tree)
		return nil
	}); err != nil {
		return err
	}

	updateBaseline := false
	if p.cfg.Diff.Enabled {
		if err := p.phase(ctx, logger, "diff", func(ctx context.Context) error {
			updateBaseline = p.detectChanges(ctx, logger, res)
			return nil
		}); err != nil {
			return err
		}
	}

	if err := p.phase(ctx, logger, "analytics", func(context.Context) error {
		report, err := gateway.NewAnalyzer(logger).Analyze(res.Tree)
		if err != nil {
			rec.Errors = append(rec.Errors, fmt.Sprintf("gateway analytics: %v", err))
			return nil
		}
		res.Gateway = report
		return nil
	}); err != nil {
		return err
	}

	if err := p.phase(ctx, logger, "artifacts", func(context.Context) error {
		p.writeArtifacts(logger, res, updateBaseline)
		return nil
	}); err != nil {
		return err
	}

	if p.cfg.Retention.Enabled {
		if err := p.phase(ctx, logger, "retention", func(context.Context) error {
			p.sweep(logger)
			return nil
		}); err != nil {
			return err
		}
	}

	return nil
}

// detectChanges compares the run's tree against the stored baseline.
// Reports whether the baseline may be replaced by this run's tree.
func (p *Pipeline) detectChanges(ctx context.Context, logger *slog.Logger, res *Result) bool {
	rec := &res.Record
	baselinePath := filepath.Join(p.cfg.Output.Dir, p.cfg.Output.BaselineFile)

	data, err := os.ReadFile(baselinePath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("no baseline found, this run becomes the first baseline",
			slog.String("path", baselinePath))
		return true
	}
	if err != nil {
		rec.Errors = append(rec.Errors, fmt.Sprintf("change detection: read baseline: %v", err))
		logger.Warn("baseline kept for the next comparison", slog.String("error", err.Error()))
		return false
	}

	var baseline hierarchy.Tree
	if err := json.Unmarshal(data, &baseline); err != nil {
		rec.Errors = append(rec.Errors, fmt.Sprintf("change detection: decode baseline: %v", err))
		logger.Warn("baseline kept for the next comparison", slog.String("error", err.Error()))
		return false
	}

	detector := diff.NewDetector(logger, diff.WithThreshold(p.cfg.Diff.ThresholdPercent))
	changes, err := detector.Compare(res.Tree, baseline)
	if err != nil {
		rec.Errors = append(rec.Errors, fmt.Sprintf("change detection: %v", err))
		logger.Warn("baseline kept for the next comparison", slog.String("error", err.Error()))
		return false
	}

	res.Changes = changes
	rec.Changes = &changes.Summary
	p.recordChangeMetrics(ctx, changes.Summary)
	logger.Info("change detection complete",
		slog.Int("total_changes", changes.Summary.TotalChanges))
	return true
}

// appendRecord persists the run record. Ledger failures are logged,
// not propagated. The run's own cancellation must not lose its
// record, so the append survives a cancelled context.
func (p *Pipeline) appendRecord(ctx context.Context, logger *slog.Logger, res *Result) {
	if p.ledger == nil {
		return
	}

	ctx, span := telemetry.StartSpan(context.WithoutCancel(ctx), tracerName, "pipeline.ledger")
	defer span.End()

	if err := p.ledger.Append(ctx, res.Record); err != nil {
		telemetry.RecordError(span, err)
		logger.Error("run record not persisted", slog.String("error", err.Error()))
		return
	}
	telemetry.SetSpanOK(span)
}

// phase runs one pipeline phase under its own span, recording its
// duration. A context that ended before the phase aborts the run.
func (p *Pipeline) phase(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if p.metrics != nil {
		p.metrics.PhaseDuration.Record(ctx, elapsed.Seconds(),
			metric.WithAttributes(attribute.String("phase", name)))
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	telemetry.SetSpanOK(span)
	logger.Info("phase complete",
		slog.String("phase", name),
		slog.Duration("duration", elapsed))
	return nil
}

// recordChangeMetrics counts detected changes by coarse category.
func (p *Pipeline) recordChangeMetrics(ctx context.Context, s diff.Summary) {
	if p.metrics == nil {
		return
	}
	categories := []struct {
		name  string
		count int
	}{
		{"mqmanagers", s.ManagersAdded + s.ManagersRemoved + s.ManagersModified},
		{"connections", s.ConnectionsAdded + s.ConnectionsRemoved},
		{"gateways", s.GatewaysAdded + s.GatewaysRemoved + s.GatewaysModified},
		{"queue_counts", s.QueueCountChanges},
	}
	for _, c := range categories {
		if c.count == 0 {
			continue
		}
		p.metrics.ChangesDetected.Add(ctx, int64(c.count),
			metric.WithAttributes(attribute.String("category", c.name)))
	}
}

// fieldMap converts the configured field mapping to the parser's form.
func (p *Pipeline) fieldMap() cmdb.FieldMap {
	return cmdb.FieldMap{
		Manager:     p.cfg.FieldMap.Manager,
		Asset:       p.cfg.FieldMap.Asset,
		AssetType:   p.cfg.FieldMap.AssetType,
		Directorate: p.cfg.FieldMap.Directorate,
		Role:        p.cfg.FieldMap.Role,
	}
}

// fillTreeStats derives the run's topology counts from the tree.
// Level counts sum across branches, so a manager filed under several
// branches counts once per branch.
func fillTreeStats(s *runs.Stats, t hierarchy.Tree) {
	s.Organizations = len(t)
	for _, org := range t {
		s.Departments += len(org.Departments)
		for _, dept := range org.Departments {
			s.BusinessOwners += len(dept)
			for _, owners := range dept {
				s.Applications += len(owners)
			}
		}
	}
	t.Walk(func(_, _, _, _ string, m *hierarchy.Manager) {
		s.Managers++
		if m.IsGateway {
			s.Gateways++
		}
		s.QueueLocal += m.QLocal
		s.QueueRemote += m.QRemote
		s.QueueAlias += m.QAlias
		s.Connections += len(m.Outbound)
	})
}

// runStatus derives the record status from the run outcome.
func runStatus(fatal error, errs []string) string {
	switch {
	case fatal != nil:
		return runs.StatusFailed
	case len(errs) > 0:
		return runs.StatusPartial
	default:
		return runs.StatusSucceeded
	}
}
