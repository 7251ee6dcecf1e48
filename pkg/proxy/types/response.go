package types

import (
	"encoding/json"
	"time"
)

// TimestampLayout formats timestamps as UTC with millisecond precision,
// e.g. "2025-11-16T10:30:00.000Z".
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats t with TimestampLayout in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Meta is appended to successful completions under the "meta" key.
type Meta struct {
	Timestamp       string `json:"timestamp"`
	Model           string `json:"model"`
	FunctionVersion string `json:"function_version"`
}

// MethodNotAllowedBody is returned with 405.
type MethodNotAllowedBody struct {
	Error  string `json:"error"`
	Method string `json:"method"`
}

// NotFoundBody is returned with 404 for paths no route serves.
type NotFoundBody struct {
	Error string `json:"error"`
	Path  string `json:"path"`
}

// InvalidJSONBody is returned with 400 when the body does not decode.
type InvalidJSONBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// MissingFieldsBody is returned with 400 when neither prompt nor messages
// is present. Received is always encoded, as [] for an empty body.
type MissingFieldsBody struct {
	Error    string   `json:"error"`
	Received []string `json:"received"`
}

// ServerErrorBody is returned for configuration errors and the catch-all.
type ServerErrorBody struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Stack     string `json:"stack,omitempty"`
}

// TimeoutBody is returned with 408.
type TimeoutBody struct {
	Error string `json:"error"`
}

// NetworkErrorBody is returned with 502 when the upstream is unreachable.
type NetworkErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// InvalidFormatBody is returned with 502 when the upstream body is not JSON.
type InvalidFormatBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	Preview string `json:"preview"`
}

// InvalidStructureBody is returned with 502 when a successful upstream
// payload has no choices.
type InvalidStructureBody struct {
	Error     string   `json:"error"`
	Structure []string `json:"structure"`
}

// UpstreamErrorBody is returned with the upstream's own status when it
// reports an error. Type and Code carry the upstream values verbatim, or a
// string fallback.
type UpstreamErrorBody struct {
	Error   json.RawMessage `json:"error"`
	Type    json.RawMessage `json:"type"`
	Code    json.RawMessage `json:"code"`
	Details json.RawMessage `json:"details"`
}
