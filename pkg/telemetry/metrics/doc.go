// Package metrics provides Prometheus metrics for the relay.
//
// # Metrics
//
// With the default namespace "mercator" and subsystem "relay":
//
//   - mercator_relay_requests_total{route,method,status}
//   - mercator_relay_request_duration_seconds{route,method}
//   - mercator_relay_response_size_bytes{route}
//   - mercator_relay_upstream_requests_total{provider,outcome}
//   - mercator_relay_upstream_duration_seconds{provider,outcome}
//   - mercator_relay_upstream_healthy{provider}
//
// Upstream outcomes are success, timeout, transport_error, parse_error,
// api_error, structure_error and error.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	handler := collector.Middleware(mux)
//	mux.Handle("/metrics", collector.Handler())
//
// A disabled config keeps the collector usable; recording becomes a no-op.
package metrics
