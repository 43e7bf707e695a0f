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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/mqtopo/services/topology/diff"
	"github.com/AleutianAI/mqtopo/services/topology/pipeline"
)

// runDiff prints the latest change report from the output directory.
func runDiff(cmd *cobra.Command, args []string) {
	path, data, err := latestReport(pipeline.ChangeReportPrefix)
	if err != nil {
		slog.Error("loading change report", "error", err)
		closeLogger()
		os.Exit(1)
	}
	if path == "" {
		fmt.Println("No change report found. Reports appear after the second pipeline run.")
		return
	}

	if diffSummary {
		var report diff.ChangeSet
		if err := json.Unmarshal(data, &report); err != nil {
			slog.Error("parsing change report", "path", path, "error", err)
			closeLogger()
			os.Exit(1)
		}
		printChangeSummary(filepath.Base(path), report.Summary)
		return
	}

	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, data, "", "  "); err != nil {
		slog.Error("formatting change report", "path", path, "error", err)
		closeLogger()
		os.Exit(1)
	}
	fmt.Println(prettyJSON.String())
}

func printChangeSummary(name string, s diff.Summary) {
	fmt.Printf("Change report %s:\n", name)
	fmt.Println(separator)
	fmt.Printf("Managers:     %d added, %d removed, %d modified\n",
		s.ManagersAdded, s.ManagersRemoved, s.ManagersModified)
	fmt.Printf("Connections:  %d added, %d removed\n",
		s.ConnectionsAdded, s.ConnectionsRemoved)
	fmt.Printf("Gateways:     %d added, %d removed, %d modified\n",
		s.GatewaysAdded, s.GatewaysRemoved, s.GatewaysModified)
	fmt.Printf("Queue counts: %d changed\n", s.QueueCountChanges)
	fmt.Println(separator)
	fmt.Printf("Total:        %d\n", s.TotalChanges)
}

// runListRuns prints recent runs from the ledger, newest first.
func runListRuns(cmd *cobra.Command, args []string) {
	db, ledger, err := openLedger()
	if err != nil {
		slog.Error("opening run ledger", "error", err)
		closeLogger()
		os.Exit(1)
	}
	if ledger == nil {
		fmt.Println("Run history is disabled. Set storage.dir in mqtopo.yaml to enable it.")
		return
	}
	defer db.Close()

	records, err := ledger.List(context.Background(), runsLimit)
	if err != nil {
		slog.Error("listing runs", "error", err)
		closeLogger()
		os.Exit(1)
	}

	if runsAsJSON {
		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			slog.Error("marshaling runs", "error", err)
			closeLogger()
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	if len(records) == 0 {
		fmt.Println("No runs recorded.")
		return
	}

	fmt.Println("Recent runs:")
	fmt.Println(separator)
	for _, rec := range records {
		fmt.Printf("ID: %s\n", rec.ID)
		fmt.Printf("Started: %s  Status: %s  Duration: %s\n",
			rec.Started.Format(time.RFC3339), rec.Status, rec.Duration().Round(time.Millisecond))
		fmt.Printf("Managers: %d  Gateways: %d  Connections: %d\n",
			rec.Stats.Managers, rec.Stats.Gateways, rec.Stats.Connections)
		if rec.Changes != nil {
			fmt.Printf("Changes: %d\n", rec.Changes.TotalChanges)
		}
		fmt.Println()
	}
}
