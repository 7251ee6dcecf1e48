// Package proxy turns forwarding requests into upstream payloads and
// upstream outcomes into client responses.
//
// # Request Flow
//
//  1. ParseForwardRequest reads the body (absent means {}), enforces the
//     size limit and requires prompt or messages.
//  2. BuildUpstreamRequest fills model, messages and sampling parameters
//     from the configured defaults.
//  3. The handler calls the upstream through providers.ChatCompleter.
//  4. FormatCompletion appends the meta block to a successful payload, or
//     HandleError maps the failure to a status and body.
//
// # Error Mapping
//
//	*RequestError              405, 400 or 413 with the client error body
//	*ConfigurationError        500 "Server configuration error: ..."
//	*providers.TimeoutError    408
//	*providers.TransportError  502 with details
//	*providers.ParseError      502 with a 200 character preview
//	*providers.APIError        upstream status with error, type, code, details
//	*providers.StructureError  502 with the payload keys
//	anything else              500, refined to 502 or 408 for DNS, reset,
//	                           ETIMEDOUT and *url.Error causes
//
// Every body is JSON. The handler package sets the CORS header.
package proxy
