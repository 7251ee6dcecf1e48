package middleware

import "net/http"

// CORS header values. The relay is called from browsers on any origin.
const (
	AllowOrigin  = "*"
	AllowHeaders = "Content-Type, Authorization"
	AllowMethods = "POST, OPTIONS"
)

// SetCORSHeaders sets the origin header sent on every response.
func SetCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", AllowOrigin)
}

// SetPreflightHeaders sets the headers of a preflight answer.
func SetPreflightHeaders(h http.Header) {
	SetCORSHeaders(h)
	h.Set("Access-Control-Allow-Headers", AllowHeaders)
	h.Set("Access-Control-Allow-Methods", AllowMethods)
}

// CORSMiddleware adds Access-Control-Allow-Origin to every response and
// answers OPTIONS preflights with 204 and an empty body.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			SetPreflightHeaders(w.Header())
			w.WriteHeader(http.StatusNoContent)
			return
		}

		SetCORSHeaders(w.Header())
		next.ServeHTTP(w, r)
	})
}
