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
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func spanContextFixture() trace.SpanContext {
	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	spanID := trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
}

// TestLoggerWithTrace_NoSpan verifies no trace fields appear without a span.
func TestLoggerWithTrace_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LoggerWithTrace(context.Background(), logger).Info("test message")

	assert.NotContains(t, buf.String(), "trace_id")
}

// TestLoggerWithTrace_NilInputs verifies nil context and nil logger
// are tolerated.
func TestLoggerWithTrace_NilInputs(t *testing.T) {
	var nilCtx context.Context

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LoggerWithTrace(nilCtx, logger).Info("test message")
	assert.Contains(t, buf.String(), "test message")

	require.NotNil(t, LoggerWithTrace(context.Background(), nil))
}

// TestLoggerWithTrace_WithSpan verifies trace and span IDs land in
// the log output.
func TestLoggerWithTrace_WithSpan(t *testing.T) {
	spanCtx := spanContextFixture()
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LoggerWithTrace(ctx, logger).Info("test message")

	output := buf.String()
	assert.Contains(t, output, "trace_id")
	assert.Contains(t, output, "span_id")
	assert.Contains(t, output, spanCtx.TraceID().String())
}

// TestLoggerWithRun verifies the run_id field is attached.
func TestLoggerWithRun(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LoggerWithRun(context.Background(), logger, "run-123").Info("test message")

	assert.Contains(t, buf.String(), `"run_id":"run-123"`)
}
