// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command mqtopo maps IBM MQ queue manager topology from CMDB exports.
//
// Usage:
//
//	mqtopo run                      # one pipeline run, artifacts in output/
//	mqtopo run --no-diff            # skip change detection
//	mqtopo serve                    # HTTP API on the configured port
//	mqtopo serve --watch            # re-run when the CMDB export changes
//	mqtopo diff                     # print the latest change report
//	mqtopo runs --limit 10          # recent run history
//	mqtopo validate QM_PAY QM.TRD   # check names against MQ rules
//	mqtopo upload                   # push output/ to the configured bucket
//
// A missing config file is created with defaults on first use, so
//
//	mqtopo run --export ./all_MQCMDB_assets.json
//
// works from an empty directory.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/mqtopo/pkg/logging"
	"github.com/AleutianAI/mqtopo/pkg/ux"
	"github.com/AleutianAI/mqtopo/services/topology/config"
)

// Version is the CLI version, overridable at build time via
// -ldflags "-X main.Version=...".
var Version = "0.1.0"

var (
	cfg    config.Config
	appLog *logging.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and installs the process logger.
// It runs before every subcommand except version, which must work
// without a config file.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	loaded, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded
	applyOverrides()

	level, err := parseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}

	// Text on an interactive terminal, JSON everywhere else.
	jsonOut := logJSON || cfg.Logging.JSON
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		jsonOut = true
	}

	appLog = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "mqtopo",
		JSON:    jsonOut,
	})
	slog.SetDefault(appLog.Slog())

	ux.InitPersonality()
	return nil
}

// applyOverrides layers command-line flags over the loaded config.
func applyOverrides() {
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if exportPath != "" {
		cfg.Input.CMDBExport = exportPath
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if noDiff {
		cfg.Diff.Enabled = false
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if watchMode {
		cfg.Watch.Enabled = true
	}
	if uploadPrefix != "" {
		cfg.Upload.Prefix = uploadPrefix
	}
}

func parseLevel(s string) (logging.Level, error) {
	switch s {
	case "debug":
		return logging.LevelDebug, nil
	case "info":
		return logging.LevelInfo, nil
	case "warn":
		return logging.LevelWarn, nil
	case "error":
		return logging.LevelError, nil
	default:
		return logging.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// closeLogger flushes the file handler, if any. Safe to call when
// setup never ran.
func closeLogger() {
	if appLog != nil {
		_ = appLog.Close()
	}
}
