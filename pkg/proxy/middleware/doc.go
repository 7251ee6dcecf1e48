// Package middleware provides the HTTP middleware wrapped around every
// relay route.
//
// # Middleware Chain
//
//	handler = Chain(mux,
//	    RecoveryMiddleware(cfg.Proxy.DebugErrors),
//	    LoggingMiddleware,
//	    collector.Middleware,
//	    RequestIDMiddleware,
//	    CORSMiddleware,
//	)
//
// Order (outermost to innermost):
//  1. Recovery: turn panics into the 500 catch-all body
//  2. Logging: one "request completed" record per request
//  3. Metrics: request count, duration and size (telemetry/metrics)
//  4. RequestID: X-Request-ID from the client or a new UUID v4
//  5. CORS: Access-Control-Allow-Origin on every response; OPTIONS answers
//     204 with the allowed headers and methods
//
// # Logging
//
//	{
//	  "time": "2025-11-16T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "POST",
//	  "path": "/api/generate",
//	  "status": 200,
//	  "latency_ms": 1250,
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000"
//	}
package middleware
