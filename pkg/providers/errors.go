package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

// TimeoutError represents an upstream call that did not complete within
// the configured ceiling.
type TimeoutError struct {
	// Provider is the name of the provider where the timeout occurred
	Provider string

	// Timeout is the configured timeout duration
	Timeout time.Duration

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timed out after %s", e.Provider, e.Timeout)
}

// Unwrap returns the underlying error for error chain support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// TransportKind classifies a network failure.
type TransportKind string

// Transport failure kinds.
const (
	TransportDNS     TransportKind = "dns"
	TransportReset   TransportKind = "reset"
	TransportRefused TransportKind = "refused"
	TransportNetwork TransportKind = "network"
)

// TransportError represents a failure to reach the upstream at all.
type TransportError struct {
	// Provider is the name of the unreachable provider
	Provider string

	// Kind classifies the failure
	Kind TransportKind

	// Cause is the underlying network error
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("provider %q unreachable (%s): %v", e.Provider, e.Kind, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ParseError represents an upstream body that is not valid JSON.
type ParseError struct {
	// Provider is the name of the provider that returned the body
	Provider string

	// StatusCode is the upstream HTTP status
	StatusCode int

	// Preview is a bounded prefix of the raw body
	Preview string

	// Cause is the decoding error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q returned invalid JSON (status %d): %v", e.Provider, e.StatusCode, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// APIError represents an upstream error reported with a non-2xx status.
//
// Message, Type and Code hold the raw JSON values extracted from the
// upstream error object, already replaced by string fallbacks when missing.
// Payload is the full upstream body.
type APIError struct {
	Provider   string
	StatusCode int
	Message    json.RawMessage
	Type       json.RawMessage
	Code       json.RawMessage
	Payload    json.RawMessage
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, rawText(e.Message))
}

// StructureError represents a 2xx payload without a non-empty choices array.
type StructureError struct {
	// Provider is the name of the provider that returned the payload
	Provider string

	// Keys lists the top-level payload keys
	Keys []string
}

// Error implements the error interface.
func (e *StructureError) Error() string {
	return fmt.Sprintf("provider %q returned a payload without choices (keys: %v)", e.Provider, e.Keys)
}

// ClassifyTransportError converts an error from http.Client.Do into a
// TimeoutError or TransportError. A canceled parent context is returned
// unchanged since nobody is waiting for the response.
func ClassifyTransportError(provider string, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	if IsTimeout(err) {
		return &TimeoutError{Provider: provider, Timeout: timeout, Cause: err}
	}

	return &TransportError{Provider: provider, Kind: transportKind(err), Cause: err}
}

// IsTimeout reports whether err is a deadline, a network timeout or
// ETIMEDOUT.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func transportKind(err error) TransportKind {
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &dnsErr):
		return TransportDNS
	case errors.Is(err, syscall.ECONNRESET):
		return TransportReset
	case errors.Is(err, syscall.ECONNREFUSED):
		return TransportRefused
	default:
		return TransportNetwork
	}
}

// rawText renders a raw JSON value for log and error messages, unquoting
// strings.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
