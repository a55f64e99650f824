// Package observability wires OpenTelemetry tracing and metrics for dyne
// runs. The engine opens one span per window and one child span per stage,
// and records stage latency, window outcomes and cache lookups through
// Metrics. Without InitTracer/InitMeter the global no-op providers are used,
// so instrumentation costs nothing unless an exporter is configured.
package observability
