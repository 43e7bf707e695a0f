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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/mqtopo/pkg/ux"
	"github.com/AleutianAI/mqtopo/services/topology"
	"github.com/AleutianAI/mqtopo/services/topology/pipeline"
	"github.com/AleutianAI/mqtopo/services/topology/telemetry"
)

// runServe starts the topology API server.
//
// The server exposes the REST API under /v1/topology, Prometheus
// metrics on /metrics, and optionally re-runs the pipeline whenever
// the CMDB export changes (--watch). SIGINT or SIGTERM drains
// in-flight requests before the process exits.
func runServe(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Telemetry.Environment,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		MetricExporter: cfg.Telemetry.MetricExporter,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:   cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		slog.Error("initializing telemetry", "error", err)
		closeLogger()
		os.Exit(1)
	}

	metrics, err := telemetry.NewMetrics(otel.Meter("mqtopo"))
	if err != nil {
		slog.Error("creating metrics", "error", err)
		closeLogger()
		os.Exit(1)
	}

	db, ledger, err := openLedger()
	if err != nil {
		slog.Error("opening run ledger", "error", err)
		closeLogger()
		os.Exit(1)
	}

	opts := []pipeline.Option{pipeline.WithMetrics(metrics)}
	if ledger != nil {
		opts = append(opts, pipeline.WithLedger(ledger))
	}
	pipe := pipeline.New(cfg, appLog.Slog(), opts...)
	svc := topology.NewService(cfg, pipe, ledger, appLog.Slog())

	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	if gin.Mode() == gin.DebugMode {
		router.Use(gin.Logger())
	}

	if h := telemetry.MetricsHandler(); h != nil {
		router.GET("/metrics", gin.WrapH(h))
	}

	v1 := router.Group("/v1")
	topology.RegisterRoutes(v1, topology.NewHandlers(svc))

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	var watcher *pipeline.Watcher
	if cfg.Watch.Enabled {
		debounce := time.Duration(cfg.Watch.DebounceSeconds) * time.Second
		watcher, err = pipeline.NewWatcher(cfg.Input.CMDBExport, debounce, func() {
			resp, err := svc.TriggerRun(watchCtx)
			if errors.Is(err, topology.ErrRunInProgress) {
				slog.Info("export changed during an active run, trigger skipped")
				return
			}
			metrics.WatchTriggers.Add(watchCtx, 1)
			if err != nil {
				slog.Error("watch-triggered run failed", "error", err)
				return
			}
			slog.Info("watch-triggered run finished", "status", resp.Record.Status)
		}, appLog.Slog())
		if err != nil {
			slog.Error("creating export watcher", "error", err)
			closeLogger()
			os.Exit(1)
		}
		if err := watcher.Start(watchCtx); err != nil {
			slog.Error("starting export watcher", "error", err)
			closeLogger()
			os.Exit(1)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ux.Title(fmt.Sprintf("mqtopo API %s", Version))
	ux.Info(fmt.Sprintf("Listening on %s", addr))
	if watcher != nil {
		ux.Info(fmt.Sprintf("Watching %s for changes", cfg.Input.CMDBExport))
	}
	ux.Muted("Press Ctrl+C to stop.")

	go func() {
		slog.Info("topology API listening", "address", addr, "watch", cfg.Watch.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ux.Warning("Signal received, shutting down.")
	slog.Info("shutting down topology API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	if watcher != nil {
		watcher.Stop()
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("telemetry shutdown", "error", err)
	}
	if db != nil {
		if err := db.Close(); err != nil {
			slog.Error("closing run ledger", "error", err)
		}
	}
	closeLogger()
}
