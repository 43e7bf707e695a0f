// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package topology provides the MQ topology HTTP service.
//
// The service exposes read-only views over the latest pipeline
// artifacts in the output directory, the run history ledger, and a
// trigger for new pipeline runs. It never mutates artifacts itself;
// all writes go through the pipeline.
package topology

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AleutianAI/mqtopo/services/topology/config"
	"github.com/AleutianAI/mqtopo/services/topology/diff"
	"github.com/AleutianAI/mqtopo/services/topology/gateway"
	"github.com/AleutianAI/mqtopo/services/topology/hierarchy"
	"github.com/AleutianAI/mqtopo/services/topology/pipeline"
	"github.com/AleutianAI/mqtopo/services/topology/storage/runs"
)

// defaultRunsLimit caps GET /runs when no limit is given.
const defaultRunsLimit = 20

// cachedTopology holds one decoded snapshot keyed by file mtime.
type cachedTopology struct {
	tree    hierarchy.Tree
	lookup  *hierarchy.Lookup
	modTime time.Time
}

// Service answers topology queries from the pipeline's artifacts.
//
// Description:
//
//	Reads serve from the canonical artifacts in the output directory.
//	The decoded tree is cached and invalidated by file modification
//	time, so a completed run is visible on the next request without
//	coordination between the pipeline and the service.
//
// Thread Safety:
//
//	Safe for concurrent use. Reads share the cache under an RWMutex;
//	TriggerRun admits one run at a time and rejects the rest.
type Service struct {
	cfg    config.Config
	logger *slog.Logger
	pipe   *pipeline.Pipeline
	ledger *runs.Ledger

	mu    sync.RWMutex
	cache *cachedTopology

	// runMu is held for the whole of a triggered run.
	runMu sync.Mutex
}

// NewService creates the topology service.
//
// Inputs:
//
//	cfg - Service configuration; Output.Dir locates the artifacts.
//	pipe - Pipeline used by TriggerRun. Must not be nil.
//	ledger - Run history, may be nil; run endpoints then return
//	ErrNoLedger.
//	logger - Optional logger; nil falls back to slog.Default().
func NewService(cfg config.Config, pipe *pipeline.Pipeline, ledger *runs.Ledger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "topology")),
		pipe:   pipe,
		ledger: ledger,
	}
}

// Tree returns the current topology, narrowed by the filter.
//
// Description:
//
//	Loads the canonical processed snapshot, applies the organization
//	and department filters first and the gateway filter within the
//	result. A filter that matches nothing yields an empty tree, not an
//	error.
//
// Outputs:
//
//	*TreeResponse - Counts plus the filtered tree.
//	error - ErrNoTopology before the first run, or a read error.
func (s *Service) Tree(filter TreeFilter) (*TreeResponse, error) {
	tree, _, err := s.loadTopology()
	if err != nil {
		return nil, err
	}

	switch {
	case filter.Department != "":
		tree = tree.ByDepartment(filter.Organization, filter.Department)
	case filter.Organization != "":
		tree = tree.ByOrganization(filter.Organization)
	}
	if filter.Gateways {
		tree = tree.GatewaysOnly(filter.GatewayScope)
	}

	return &TreeResponse{
		Organizations: len(tree),
		Managers:      tree.ManagerCount(),
		Tree:          tree,
	}, nil
}

// Manager returns one manager leaf with its organizational context,
// matched case-insensitively.
//
// Outputs:
//
//	*ManagerResponse - The leaf and its context.
//	error - ErrNoTopology or ErrManagerNotFound.
func (s *Service) Manager(name string) (*ManagerResponse, error) {
	tree, lookup, err := s.loadTopology()
	if err != nil {
		return nil, err
	}

	mctx, ok := lookup.Context(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrManagerNotFound, name)
	}

	// The lookup is case-folded; recover the display-cased leaf.
	var leaf *hierarchy.Manager
	for mgr, m := range tree.Managers() {
		if strings.EqualFold(mgr, name) {
			leaf = m
			break
		}
	}
	if leaf == nil {
		return nil, fmt.Errorf("%w: %s", ErrManagerNotFound, name)
	}

	return &ManagerResponse{
		Name:    leaf.MQManager,
		Context: mctx,
		Manager: leaf,
	}, nil
}

// Changes returns the newest change report.
//
// Outputs:
//
//	*diff.ChangeSet - The decoded report.
//	error - ErrNoChangeReport when none has been written.
func (s *Service) Changes() (*diff.ChangeSet, error) {
	var changes diff.ChangeSet
	if err := s.loadLatest(pipeline.ChangeReportPrefix, ErrNoChangeReport, &changes); err != nil {
		return nil, err
	}
	return &changes, nil
}

// GatewayReport returns the newest gateway analytics report.
//
// Outputs:
//
//	*gateway.Report - The decoded report.
//	error - ErrNoGatewayReport when none has been written.
func (s *Service) GatewayReport() (*gateway.Report, error) {
	var report gateway.Report
	if err := s.loadLatest(pipeline.GatewayReportPrefix, ErrNoGatewayReport, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Runs returns the run history, newest first.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	limit - Maximum records; <= 0 uses the default.
func (s *Service) Runs(ctx context.Context, limit int) (*RunsResponse, error) {
	if s.ledger == nil {
		return nil, ErrNoLedger
	}
	if limit <= 0 {
		limit = defaultRunsLimit
	}

	records, err := s.ledger.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return &RunsResponse{Runs: records, Count: len(records)}, nil
}

// TriggerRun executes one pipeline run.
//
// Description:
//
//	Admits a single run at a time; concurrent callers get
//	ErrRunInProgress instead of queueing. The run is synchronous and
//	its completed record is returned, including for failed runs, so
//	the caller sees what went wrong.
//
// Outputs:
//
//	*RunResponse - The completed run's record.
//	error - ErrRunInProgress, or the run's fatal error.
func (s *Service) TriggerRun(ctx context.Context) (*RunResponse, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	res, err := s.pipe.Run(ctx)
	if res == nil {
		return nil, err
	}
	return &RunResponse{Record: res.Record}, err
}

// Ready reports whether the service can answer topology queries.
//
// Description:
//
//	The service is ready once a processed snapshot exists, which the
//	first completed pipeline run produces. Until then tree and manager
//	queries can only 404, so readiness is withheld.
func (s *Service) Ready(ctx context.Context) ReadyResponse {
	var resp ReadyResponse

	if _, err := os.Stat(filepath.Join(s.cfg.Output.Dir, pipeline.ProcessedFile)); err == nil {
		resp.TopologyAvailable = true
	}
	resp.Ready = resp.TopologyAvailable

	if s.ledger != nil {
		if latest, err := s.ledger.Latest(ctx); err == nil {
			resp.LastRunStatus = latest.Status
		}
	}
	return resp
}

// loadTopology returns the decoded canonical snapshot, reusing the
// cache while the file's mtime is unchanged.
func (s *Service) loadTopology() (hierarchy.Tree, *hierarchy.Lookup, error) {
	path := filepath.Join(s.cfg.Output.Dir, pipeline.ProcessedFile)

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNoTopology
	}
	if err != nil {
		return nil, nil, fmt.Errorf("stat topology: %w", err)
	}

	s.mu.RLock()
	if c := s.cache; c != nil && c.modTime.Equal(info.ModTime()) {
		s.mu.RUnlock()
		return c.tree, c.lookup, nil
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read topology: %w", err)
	}

	var tree hierarchy.Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, nil, fmt.Errorf("decode topology: %w", err)
	}
	lookup := hierarchy.BuildLookup(tree)

	s.mu.Lock()
	s.cache = &cachedTopology{tree: tree, lookup: lookup, modTime: info.ModTime()}
	s.mu.Unlock()

	s.logger.Info("topology snapshot loaded",
		slog.String("path", path),
		slog.Int("managers", lookup.Len()))
	return tree, lookup, nil
}

// loadLatest decodes the newest timestamped artifact with the given
// prefix into v. The fixed-width timestamp makes name order
// chronological.
func (s *Service) loadLatest(prefix string, missing error, v any) error {
	matches, err := filepath.Glob(filepath.Join(s.cfg.Output.Dir, prefix+"*.json"))
	if err != nil || len(matches) == 0 {
		return missing
	}
	sort.Strings(matches)
	newest := matches[len(matches)-1]

	data, err := os.ReadFile(newest)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(newest), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(newest), err)
	}
	return nil
}
