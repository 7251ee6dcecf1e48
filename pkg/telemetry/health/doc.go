// Package health serves the relay's liveness, readiness and version probes.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("credential", func(ctx context.Context) error { ... })
//	mux.Handle("GET /health", checker.LivenessHandler())
//	mux.Handle("GET /ready", checker.ReadinessHandler())
//
// Readiness answers 503 with status "degraded" when any registered check
// fails or exceeds its timeout.
package health
