// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/AleutianAI/mqtopo/services/topology/storage/badger"
	"github.com/AleutianAI/mqtopo/services/topology/storage/runs"
)

const separator = "------------------------------------------------------------------"

// openLedger opens the run history store from cfg.Storage.Dir.
//
// Returns (nil, nil, nil) when no storage directory is configured,
// which runs the pipeline without recording history. The caller owns
// the returned DB and must close it.
func openLedger() (*badger.DB, *runs.Ledger, error) {
	if cfg.Storage.Dir == "" {
		return nil, nil, nil
	}

	bcfg := badger.DefaultConfig()
	bcfg.Path = cfg.Storage.Dir
	db, err := badger.OpenDB(bcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.Storage.Dir, err)
	}

	ledger, err := runs.NewLedger(db, appLog.Slog())
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, ledger, nil
}

// latestReport returns the newest report file in the output directory
// matching prefix. The fixed-width timestamps in report names make the
// lexicographic maximum the newest file. Returns ("", nil, nil) when
// no report exists.
func latestReport(prefix string) (string, []byte, error) {
	pattern := filepath.Join(cfg.Output.Dir, prefix+"*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", nil, nil
	}

	sort.Strings(matches)
	path := matches[len(matches)-1]
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	return path, data, nil
}

// printRunSummary writes a human-readable run report to stdout.
func printRunSummary(rec runs.Record) {
	fmt.Printf("\nRun %s finished: %s (%s)\n", rec.ID, rec.Status, rec.Duration().Round(time.Millisecond))
	fmt.Println(separator)
	fmt.Printf("Records loaded:     %d (%d after dedup)\n", rec.Stats.RecordsLoaded, rec.Stats.RecordsDeduped)
	fmt.Printf("Organizations:      %d\n", rec.Stats.Organizations)
	fmt.Printf("Departments:        %d\n", rec.Stats.Departments)
	fmt.Printf("Queue managers:     %d (%d gateways)\n", rec.Stats.Managers, rec.Stats.Gateways)
	fmt.Printf("Connections:        %d\n", rec.Stats.Connections)
	fmt.Printf("Queues:             %d local, %d remote, %d alias\n",
		rec.Stats.QueueLocal, rec.Stats.QueueRemote, rec.Stats.QueueAlias)

	if rec.Changes != nil {
		fmt.Printf("Changes:            %d since previous run\n", rec.Changes.TotalChanges)
	}

	if len(rec.Artifacts) > 0 {
		fmt.Println("\nArtifacts:")
		for _, path := range rec.Artifacts {
			fmt.Printf("  %s\n", path)
		}
	}

	if len(rec.Errors) > 0 {
		fmt.Println("\nWarnings:")
		for _, msg := range rec.Errors {
			fmt.Printf("  %s\n", msg)
		}
	}
}
