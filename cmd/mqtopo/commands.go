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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string
	logJSON    bool

	exportPath string
	outputDir  string
	noDiff     bool

	servePort int
	watchMode bool

	runsLimit   int
	runsAsJSON  bool
	diffSummary bool

	uploadPrefix string

	rootCmd = &cobra.Command{
		Use:   "mqtopo",
		Short: "Map IBM MQ queue manager topology from CMDB exports",
		Long: `mqtopo turns raw CMDB asset exports into an enriched MQ topology:
deduplicated records, a directed queue manager graph, an organizational
hierarchy, change reports against a rolling baseline, and gateway
analytics.`,
		PersistentPreRunE: setup, // Defined in main.go
	}

	// --- Pipeline ---
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the topology pipeline once and write artifacts",
		Run:   runPipelineOnce, // Defined in cmd_run.go
	}

	// --- Server ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the topology API over HTTP",
		Run:   runServe, // Defined in cmd_serve.go
	}

	// --- Reports ---
	diffCmd = &cobra.Command{
		Use:   "diff",
		Short: "Show the latest change report",
		Run:   runDiff, // Defined in cmd_report.go
	}
	runsCmd = &cobra.Command{
		Use:   "runs",
		Short: "List recorded pipeline runs, newest first",
		Run:   runListRuns, // Defined in cmd_report.go
	}

	// --- Utilities ---
	validateCmd = &cobra.Command{
		Use:   "validate [name...]",
		Short: "Check queue manager names against MQ naming rules",
		Args:  cobra.MinimumNArgs(1),
		Run:   runValidate, // Defined in cmd_utils.go
	}
	uploadCmd = &cobra.Command{
		Use:   "upload",
		Short: "Upload the output directory to Google Cloud Storage (GCS)",
		Run:   runUpload, // Defined in cmd_utils.go
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the mqtopo version",
		Run:   runVersion, // Defined in cmd_utils.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "mqtopo.yaml",
		"Config file path (created with defaults when missing)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false,
		"Force JSON log output (default: JSON unless stderr is a terminal)")

	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&exportPath, "export", "", "Override the CMDB export path")
	runCmd.Flags().StringVar(&outputDir, "output", "", "Override the artifact output directory")
	runCmd.Flags().BoolVar(&noDiff, "no-diff", false, "Skip change detection for this run")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Override the configured listen port")
	serveCmd.Flags().BoolVar(&watchMode, "watch", false,
		"Re-run the pipeline when the CMDB export changes")

	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().BoolVar(&diffSummary, "summary", false, "Print only the change counts")

	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list (0 = all)")
	runsCmd.Flags().BoolVar(&runsAsJSON, "json", false, "Print run records as JSON")

	rootCmd.AddCommand(validateCmd)

	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVar(&uploadPrefix, "prefix", "",
		"Override the configured GCS object prefix")

	rootCmd.AddCommand(versionCmd)
}
