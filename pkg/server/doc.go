// Package server assembles the relay's HTTP surface and manages its
// lifecycle.
//
// Routes:
//   - every path in proxy.routes: the forwarding handler
//   - /health: liveness
//   - /ready: readiness, degraded while the upstream credential is missing
//   - /version: build information
//   - /health/upstream: upstream reachability, when a tracker is supplied
//   - telemetry.metrics.path: Prometheus scrape endpoint, when enabled
//
// Every request passes through recovery, tracing, logging, metrics,
// request ID and CORS middleware, outermost first.
//
// # Usage
//
//	srv, err := server.New(cfg, server.Deps{
//	    Secrets:        chain,
//	    Upstream:       client,
//	    UpstreamHealth: client.Health(),
//	    Metrics:        collector,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
//
// Start blocks until ctx is cancelled, SIGINT or SIGTERM is received, or
// Stop is called, then drains in-flight requests for up to
// proxy.shutdown_timeout.
package server
