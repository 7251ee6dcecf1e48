package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"mercator-hq/relay/pkg/proxy"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and answers 500
// with the catch-all body. The stack is always logged and is added to the
// body only when debugErrors is set.
func RecoveryMiddleware(debugErrors bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				stack := debug.Stack()
				slog.ErrorContext(r.Context(), "panic in handler",
					"error", rec,
					"request_id", w.Header().Get(RequestIDHeader),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(stack),
				)

				SetCORSHeaders(w.Header())
				proxy.WriteError(w, &proxy.PanicError{Value: rec, Stack: stack}, time.Now(), debugErrors)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
