// Package types defines the wire shapes used by the forwarding handler.
//
// # Core Types
//
// Request types:
//   - ForwardRequest: client payload decoded with absent and explicit-zero
//     fields kept distinct
//   - Object: an ordered JSON object that preserves key order and raw values
//
// Response types:
//   - Meta: metadata block appended to successful completions
//   - MethodNotAllowedBody, InvalidJSONBody, MissingFieldsBody: client errors
//   - ServerErrorBody: configuration and catch-all errors
//   - TimeoutBody, NetworkErrorBody: upstream transport failures
//   - InvalidFormatBody, InvalidStructureBody, UpstreamErrorBody: upstream
//     protocol and application errors
//
// Every error body carries an "error" message field. The remaining fields
// depend on the failure class.
//
// # Determinism
//
// Struct bodies encode in field order and Object encodes in insertion order,
// so identical inputs produce byte-identical responses apart from timestamps.
package types
