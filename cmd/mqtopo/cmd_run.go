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
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/mqtopo/pkg/ux"
	"github.com/AleutianAI/mqtopo/services/topology/pipeline"
	"github.com/AleutianAI/mqtopo/services/topology/storage/runs"
)

// runPipelineOnce executes a single pipeline run and prints the result.
//
// The process exits 0 for succeeded and partial runs (partial means
// the topology was produced but a consumer such as diff or export
// failed; the warnings section lists what) and 1 for failed runs.
func runPipelineOnce(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	db, ledger, err := openLedger()
	if err != nil {
		slog.Error("opening run ledger", "error", err)
		closeLogger()
		os.Exit(1)
	}

	var opts []pipeline.Option
	if ledger != nil {
		opts = append(opts, pipeline.WithLedger(ledger))
	}

	pipe := pipeline.New(cfg, appLog.Slog(), opts...)

	spin := ux.NewSpinner("Mapping the MQ topology...").WithType(ux.SpinnerCompass)
	spin.Start()
	res, runErr := pipe.Run(ctx)
	spin.Stop()

	if db != nil {
		if err := db.Close(); err != nil {
			slog.Warn("closing run ledger", "error", err)
		}
	}

	if res == nil {
		slog.Error("pipeline run failed", "error", runErr)
		closeLogger()
		os.Exit(1)
	}

	printRunSummary(res.Record)

	if res.Record.Status == runs.StatusFailed {
		closeLogger()
		os.Exit(1)
	}
}
