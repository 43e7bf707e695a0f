// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry provides OpenTelemetry-based observability for the
// topology service.
//
// The package initializes the OTel SDK with opinionated defaults and
// leaves backend choice to exporter configuration. OpenTelemetry IS the
// abstraction layer: code uses otel.Tracer() and otel.Meter() directly,
// and operators swap backends by changing exporters, not code.
//
// # Trace Backend (default: OTLP)
//
// Traces ship over OTLP gRPC, which Jaeger accepts natively. The
// "stdout" exporter pretty-prints spans for local debugging and "none"
// disables tracing.
//
// # Metrics Backend (default: Prometheus)
//
// Metrics register with the default Prometheus registry and are served
// by the handler returned from MetricsHandler, which the serve command
// mounts at /metrics. The "stdout" and "none" exporters exist for
// debugging and tests.
//
// # Usage
//
//	shutdown, err := telemetry.Init(ctx, telemetry.DefaultConfig())
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(ctx)
//
// # Environment Variables
//
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint (default: localhost:4317)
//   - OTEL_TRACES_EXPORTER: otlp, stdout, or none (default: otlp)
//   - OTEL_METRICS_EXPORTER: prometheus, stdout, or none (default: prometheus)
//   - MQTOPO_ENV: environment name (default: development)
//
// # Thread Safety
//
// All exported functions are safe for concurrent use after Init() returns.
package telemetry
