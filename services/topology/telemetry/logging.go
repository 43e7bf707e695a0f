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
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// LoggerWithTrace returns a logger carrying the trace and span IDs
// from the context.
//
// Description:
//
//	Injects trace_id and span_id fields so log lines correlate with
//	spans in the trace backend. Without a valid span context the
//	logger is returned unchanged.
//
// Inputs:
//
//	ctx - Context potentially containing a span. May be nil.
//	logger - Base logger. Nil falls back to slog.Default().
//
// Outputs:
//
//	*slog.Logger - Logger with trace fields attached, or the original.
//
// Thread Safety: Safe for concurrent use.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if ctx == nil {
		return logger
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}

	return logger.With(
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	)
}

// LoggerWithRun returns a logger scoped to one pipeline run.
//
// Description:
//
//	Adds the run_id field on top of any trace correlation fields, so
//	every line a run emits can be grouped in the log backend.
//
// Inputs:
//
//	ctx - Context potentially containing a span. May be nil.
//	logger - Base logger. Nil falls back to slog.Default().
//	runID - The run's UUID.
//
// Outputs:
//
//	*slog.Logger - Logger with run_id and trace fields attached.
//
// Thread Safety: Safe for concurrent use.
func LoggerWithRun(ctx context.Context, logger *slog.Logger, runID string) *slog.Logger {
	return LoggerWithTrace(ctx, logger).With(slog.String("run_id", runID))
}
