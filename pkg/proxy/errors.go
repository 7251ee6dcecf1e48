package proxy

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"syscall"
	"time"

	"mercator-hq/relay/pkg/providers"
	"mercator-hq/relay/pkg/proxy/types"
)

// Upstream and server error messages.
const (
	MsgMissingCredential = "Server configuration error: OpenAI API key not configured. Please contact support."
	MsgTimeout           = "Request timeout: OpenAI API took too long to respond"
	MsgNetwork           = "Network error: Unable to reach OpenAI API"
	MsgInvalidFormat     = "Invalid response format from OpenAI API"
	MsgInvalidFormatInfo = "Response was not valid JSON"
	MsgInvalidStructure  = "Invalid response structure from OpenAI API"
	MsgUnknown           = "Unknown server error"

	MsgDNS        = "DNS error: Unable to resolve OpenAI API hostname"
	MsgConnReset  = "Connection reset: Request to OpenAI API was interrupted"
	MsgETimedOut  = "Timeout: OpenAI API took too long to respond"
	MsgConnection = "Network error: Failed to connect to OpenAI API"
)

// ConfigurationError reports that the relay cannot serve requests as
// configured, e.g. because no credential resolves.
type ConfigurationError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// HandleError maps err to a status code and JSON body. now stamps the
// bodies that carry a timestamp; debug adds a stack to catch-all bodies.
func HandleError(err error, now time.Time, debug bool) (int, any) {
	var (
		reqErr       *RequestError
		configErr    *ConfigurationError
		timeoutErr   *providers.TimeoutError
		transportErr *providers.TransportError
		parseErr     *providers.ParseError
		apiErr       *providers.APIError
		structureErr *providers.StructureError
	)

	switch {
	case errors.As(err, &reqErr):
		return reqErr.Status, reqErr.Body()

	case errors.As(err, &configErr):
		return http.StatusInternalServerError, types.ServerErrorBody{
			Error:     MsgMissingCredential,
			Timestamp: types.Timestamp(now),
		}

	case errors.As(err, &timeoutErr):
		return http.StatusRequestTimeout, types.TimeoutBody{Error: MsgTimeout}

	case errors.As(err, &transportErr):
		return http.StatusBadGateway, types.NetworkErrorBody{
			Error:   MsgNetwork,
			Details: causeText(transportErr.Cause),
		}

	case errors.As(err, &parseErr):
		return http.StatusBadGateway, types.InvalidFormatBody{
			Error:   MsgInvalidFormat,
			Details: MsgInvalidFormatInfo,
			Preview: parseErr.Preview,
		}

	case errors.As(err, &apiErr):
		return apiErr.StatusCode, types.UpstreamErrorBody{
			Error:   apiErr.Message,
			Type:    apiErr.Type,
			Code:    apiErr.Code,
			Details: apiErr.Payload,
		}

	case errors.As(err, &structureErr):
		keys := structureErr.Keys
		if keys == nil {
			keys = []string{}
		}
		return http.StatusBadGateway, types.InvalidStructureBody{
			Error:     MsgInvalidStructure,
			Structure: keys,
		}
	}

	status, message := classifyUnknown(err)
	body := types.ServerErrorBody{Error: message, Timestamp: types.Timestamp(now)}
	if debug {
		body.Stack = stackOf(err)
	}
	return status, body
}

// classifyUnknown refines the catch-all status and message by inspecting
// the error chain for network failures.
func classifyUnknown(err error) (int, string) {
	var (
		dnsErr *net.DNSError
		urlErr *url.Error
	)
	switch {
	case err == nil:
		return http.StatusInternalServerError, MsgUnknown
	case errors.As(err, &dnsErr):
		return http.StatusBadGateway, MsgDNS
	case errors.Is(err, syscall.ECONNRESET):
		return http.StatusBadGateway, MsgConnReset
	case errors.Is(err, syscall.ETIMEDOUT):
		return http.StatusRequestTimeout, MsgETimedOut
	case errors.As(err, &urlErr):
		return http.StatusBadGateway, MsgConnection
	}

	if msg := err.Error(); msg != "" {
		return http.StatusInternalServerError, msg
	}
	return http.StatusInternalServerError, MsgUnknown
}

func stackOf(err error) string {
	var panicErr *PanicError
	if errors.As(err, &panicErr) && len(panicErr.Stack) > 0 {
		return string(panicErr.Stack)
	}
	return string(debug.Stack())
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
