// Package tracing provides OpenTelemetry distributed tracing for the relay.
//
// New installs an SDK tracer provider exporting over OTLP/gRPC when tracing
// is enabled. Instrumented code never holds a Tracer directly; it calls
// otel.Tracer(InstrumentationName), which resolves to a noop tracer until a
// provider is installed.
//
// Two spans are produced per forwarded request:
//
//   - a server span from HTTPMiddleware, named "<METHOD> <path>"
//   - a client span around the upstream call, carrying relay.provider,
//     relay.model, relay.upstream.outcome and http.response.status_code
//
// # Sampling
//
// Samplers are "always", "never" and "ratio". Each is wrapped in a
// parent-based sampler so upstream sampling decisions are respected.
package tracing
