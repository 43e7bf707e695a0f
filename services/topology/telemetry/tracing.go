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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan creates a new span from the context using the global tracer.
//
// Description:
//
//	Convenience wrapper around otel.Tracer() so callers create spans
//	without managing tracer instances.
//
// Inputs:
//
//	ctx - Parent context. May contain an existing span context.
//	tracerName - Tracer name (typically the package path, e.g. "topology.pipeline").
//	spanName - Span name (operation name, e.g. "pipeline.Run").
//	opts - Optional span start options.
//
// Outputs:
//
//	context.Context - Context with the new span attached.
//	trace.Span - The created span. Caller must call span.End().
//
// Example:
//
//	ctx, span := telemetry.StartSpan(ctx, "topology.pipeline", "phase.enrich")
//	defer span.End()
//
// Thread Safety: Safe for concurrent use.
func StartSpan(ctx context.Context, tracerName, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, opts...)
}

// RecordError records an error on the span and marks it failed.
//
// Description:
//
//	Records the error as a span event and sets the span status to
//	Error. A nil span or nil error makes this a no-op.
//
// Inputs:
//
//	span - The span to record the error on. May be nil.
//	err - The error to record. May be nil.
//	attrs - Optional attributes recorded with the error.
//
// Thread Safety: Safe for concurrent use.
func RecordError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}

	opts := make([]trace.EventOption, 0, 1)
	if len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanOK marks the span as successful. Nil spans are ignored.
func SetSpanOK(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
}

// TraceID returns the hex trace ID from the context, or empty string
// when no valid span context is present.
func TraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
