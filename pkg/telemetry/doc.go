// Package telemetry groups the relay's observability packages.
//
//   - logging: slog construction, request ID propagation and secret redaction
//   - metrics: Prometheus request and upstream metrics
//   - tracing: OpenTelemetry server and upstream spans
//   - health: liveness, readiness and version probes
package telemetry
