// Package logging builds the process logger on log/slog.
//
// The handler chain is:
//
//	ContextHandler -> RedactingHandler (optional) -> JSON or text handler
//
// Output goes to stdout and, when configured, to a rotating file managed
// by lumberjack. Callers use the slog package-level functions after
// slog.SetDefault:
//
//	slog.InfoContext(ctx, "upstream call completed", "model", model, "latency_ms", ms)
//
// Bearer tokens and sk- keys are masked wherever they appear in messages or
// string attributes. Attributes named authorization, api_key, password,
// secret or token are replaced entirely.
package logging
