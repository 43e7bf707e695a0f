// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/mqtopo/services/topology/diff"
	"github.com/AleutianAI/mqtopo/services/topology/hierarchy"
	"github.com/AleutianAI/mqtopo/services/topology/storage/runs"
	"github.com/AleutianAI/mqtopo/services/topology/visualization"
)

// artifactTimeFormat stamps per-run artifact names, in UTC.
const artifactTimeFormat = "20060102_150405"

// Canonical artifact names. Per-run copies carry a timestamp suffix
// and are subject to the retention sweep; the canonical files always
// hold the latest run.
const (
	ProcessedFile = "mq_cmdb_processed.json"
	TopologyFile  = "mq_topology.dot"
)

// Timestamped artifact name prefixes, shared by the retention sweep
// and the serve API's latest-artifact lookups.
const (
	SnapshotPrefix      = "mq_cmdb_processed_"
	ChangeReportPrefix  = "changes_"
	GatewayReportPrefix = "gateway_analytics_"
	RunSummaryPrefix    = "run_summary_"
)

// runSummary is the per-run stats artifact, a compact digest next to
// the full tree.
type runSummary struct {
	RunID     string        `json:"run_id"`
	Generated time.Time     `json:"generated"`
	Stats     runs.Stats    `json:"stats"`
	Changes   *diff.Summary `json:"changes,omitempty"`
}

// artifactJob is one independent artifact write.
type artifactJob struct {
	// name labels the artifact in error reports.
	name string

	// path is the destination file.
	path string

	// render produces the file content.
	render func() ([]byte, error)

	// listed marks artifacts recorded on the run record. The baseline
	// is written through the same machinery but is pipeline state,
	// not a run output.
	listed bool
}

// writeArtifacts renders and writes every artifact for the run.
//
// Description:
//
//	Artifacts are independent of each other and are written in
//	parallel, each atomically. Every failure lands on the run record;
//	none aborts the run. Successful paths are recorded in job order
//	regardless of completion order.
func (p *Pipeline) writeArtifacts(logger *slog.Logger, res *Result, updateBaseline bool) {
	rec := &res.Record

	if err := os.MkdirAll(p.cfg.Output.Dir, 0750); err != nil {
		rec.Errors = append(rec.Errors, fmt.Sprintf("create output dir: %v", err))
		return
	}

	treeData, err := json.MarshalIndent(res.Tree, "", "  ")
	if err != nil {
		rec.Errors = append(rec.Errors, fmt.Sprintf("encode enriched tree: %v", err))
		treeData = nil
	}

	jobs := p.artifactJobs(res, treeData, updateBaseline)

	paths := make([]string, len(jobs))
	failures := make([]string, len(jobs))

	var g errgroup.Group
	for i, job := range jobs {
		g.Go(func() error {
			data, err := job.render()
			if err == nil {
				err = writeFileAtomic(job.path, data)
			}
			if err != nil {
				failures[i] = fmt.Sprintf("%s: %v", job.name, err)
				return nil
			}
			if job.listed {
				paths[i] = job.path
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i := range jobs {
		if failures[i] != "" {
			rec.Errors = append(rec.Errors, failures[i])
			failed++
			continue
		}
		if paths[i] != "" {
			rec.Artifacts = append(rec.Artifacts, paths[i])
		}
	}

	logger.Info("artifacts written",
		slog.Int("written", len(rec.Artifacts)),
		slog.Int("failed", failed),
		slog.String("dir", p.cfg.Output.Dir))
}

// artifactJobs assembles the write list for this run. A nil treeData
// skips the tree-derived files.
func (p *Pipeline) artifactJobs(res *Result, treeData []byte, updateBaseline bool) []artifactJob {
	outDir := p.cfg.Output.Dir
	stamp := res.Record.Started.Format(artifactTimeFormat)

	var jobs []artifactJob
	if treeData != nil {
		jobs = append(jobs,
			artifactJob{
				name:   "enriched tree",
				path:   filepath.Join(outDir, ProcessedFile),
				render: rawArtifact(treeData),
				listed: true,
			},
			artifactJob{
				name:   "enriched tree snapshot",
				path:   filepath.Join(outDir, SnapshotPrefix+stamp+".json"),
				render: rawArtifact(treeData),
				listed: true,
			},
		)
		if updateBaseline {
			jobs = append(jobs, artifactJob{
				name:   "baseline",
				path:   filepath.Join(outDir, p.cfg.Output.BaselineFile),
				render: rawArtifact(treeData),
			})
		}
	}

	if res.Changes != nil {
		jobs = append(jobs, artifactJob{
			name:   "change report",
			path:   filepath.Join(outDir, ChangeReportPrefix+stamp+".json"),
			render: jsonArtifact(res.Changes),
			listed: true,
		})
	}
	if res.Gateway != nil && res.Gateway.Summary.TotalGateways > 0 {
		jobs = append(jobs, artifactJob{
			name:   "gateway report",
			path:   filepath.Join(outDir, GatewayReportPrefix+stamp+".json"),
			render: jsonArtifact(res.Gateway),
			listed: true,
		})
	}

	jobs = append(jobs,
		artifactJob{
			name:   "topology diagram",
			path:   filepath.Join(outDir, TopologyFile),
			render: dotArtifact(res.Tree),
			listed: true,
		},
		artifactJob{
			name: "run summary",
			path: filepath.Join(outDir, RunSummaryPrefix+stamp+".json"),
			render: jsonArtifact(runSummary{
				RunID:     res.Record.ID,
				Generated: res.Record.Started,
				Stats:     res.Record.Stats,
				Changes:   res.Record.Changes,
			}),
			listed: true,
		},
	)
	return jobs
}

// rawArtifact serves pre-rendered content.
func rawArtifact(data []byte) func() ([]byte, error) {
	return func() ([]byte, error) { return data, nil }
}

// jsonArtifact renders v as indented JSON.
func jsonArtifact(v any) func() ([]byte, error) {
	return func() ([]byte, error) {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
		return data, nil
	}
}

// dotArtifact renders the tree as a DOT digraph.
func dotArtifact(t hierarchy.Tree) func() ([]byte, error) {
	return func() ([]byte, error) {
		out, err := visualization.NewDOTGenerator(nil).Generate(t)
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	}
}

// writeFileAtomic writes data to path via a temp file and rename, so
// readers never observe a partial artifact.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	success = true
	return nil
}
