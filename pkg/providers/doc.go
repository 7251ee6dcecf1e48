// Package providers defines the upstream chat completion contract used by
// the forwarding handler.
//
// # Overview
//
// A ChatCompleter sends one chat completion request upstream and translates
// the outcome into either a Completion or one of the typed errors in this
// package. Callers map those errors to HTTP responses with errors.As:
//
//	completion, err := completer.CreateChatCompletion(ctx, apiKey, req)
//	var timeoutErr *providers.TimeoutError
//	if errors.As(err, &timeoutErr) {
//	    // respond 408
//	}
//
// # Error Taxonomy
//
//   - TimeoutError: no response within the configured ceiling
//   - TransportError: DNS failure, refused or reset connection, other network
//     failures
//   - ParseError: the upstream body was not valid JSON
//   - APIError: the upstream answered with a non-2xx status
//   - StructureError: a 2xx payload without a usable choices array
//
// Requests are never retried. Every failure surfaces to the caller after a
// single attempt.
//
// # HTTP Client
//
// NewHTTPClient builds a pooled http.Client from a ProviderConfig. The
// per-request ceiling is enforced with a context deadline rather than
// http.Client.Timeout so that a deadline can be told apart from other
// transport failures.
//
// # Health
//
// HealthTracker records the outcome of real upstream calls. It never probes
// the upstream on its own.
package providers
