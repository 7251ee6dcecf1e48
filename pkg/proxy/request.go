package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"mercator-hq/relay/pkg/proxy/types"
)

const (
	// MaxRequestBodySize is the default request body ceiling (10MB).
	MaxRequestBodySize = 10 * 1024 * 1024

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"
)

// Client error messages.
const (
	MsgMethodNotAllowed = "Method not allowed. Use POST."
	MsgInvalidJSON      = "Invalid JSON in request body"
	MsgMissingFields    = "Missing prompt or messages in request body"
	MsgBodyTooLarge     = "Request body too large"
)

// RequestError is a client error detected before any upstream call.
type RequestError struct {
	// Status is the HTTP status to answer with.
	Status int

	// Message is the "error" field of the response body.
	Message string

	// Details carries the decoder message for malformed bodies.
	Details string

	// Method is set for method errors.
	Method string

	// Received lists the top-level keys of a body missing required fields.
	Received []string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Body returns the JSON body for the error.
func (e *RequestError) Body() any {
	switch {
	case e.Status == http.StatusMethodNotAllowed:
		return types.MethodNotAllowedBody{Error: e.Message, Method: e.Method}
	case e.Received != nil:
		return types.MissingFieldsBody{Error: e.Message, Received: e.Received}
	default:
		return types.InvalidJSONBody{Error: e.Message, Details: e.Details}
	}
}

// NewMethodError returns the 405 error for method.
func NewMethodError(method string) *RequestError {
	return &RequestError{
		Status:  http.StatusMethodNotAllowed,
		Message: MsgMethodNotAllowed,
		Method:  method,
	}
}

// ParseForwardRequest reads and validates the body of a forwarding request.
//
// An absent or empty body is treated as {}. Bodies larger than limit bytes
// are rejected with 413; a limit of zero or less means MaxRequestBodySize.
// Errors are *RequestError except for failures reading the body itself.
func ParseForwardRequest(r *http.Request, limit int64) (*types.ForwardRequest, error) {
	if limit <= 0 {
		limit = MaxRequestBodySize
	}

	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(io.LimitReader(r.Body, limit+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	if int64(len(body)) > limit {
		return nil, &RequestError{
			Status:  http.StatusRequestEntityTooLarge,
			Message: MsgBodyTooLarge,
			Details: fmt.Sprintf("request body exceeds maximum size of %d bytes", limit),
		}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	obj, err := types.DecodeObject(body)
	if err != nil {
		return nil, &RequestError{
			Status:  http.StatusBadRequest,
			Message: MsgInvalidJSON,
			Details: decodeDetails(err),
		}
	}

	req := newForwardRequest(obj)
	if !req.HasPrompt() && !req.HasMessages() {
		return nil, &RequestError{
			Status:   http.StatusBadRequest,
			Message:  MsgMissingFields,
			Received: req.Keys,
		}
	}

	return req, nil
}

func decodeDetails(err error) string {
	switch {
	case errors.Is(err, types.ErrNotObject):
		return "request body must be a JSON object"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "unexpected end of JSON input"
	default:
		return err.Error()
	}
}

// newForwardRequest maps the decoded body onto typed fields. Values with
// the wrong JSON type are left nil.
func newForwardRequest(obj *types.Object) *types.ForwardRequest {
	req := &types.ForwardRequest{Keys: obj.Keys()}

	req.Prompt, _ = obj.Get("prompt")
	req.Messages, _ = obj.Get("messages")

	if raw, ok := obj.Get("model"); ok {
		var model string
		if err := json.Unmarshal(raw, &model); err == nil && isString(raw) {
			req.Model = &model
		}
	}

	req.Temperature = numberField(obj, "temperature")
	req.TopP = numberField(obj, "top_p")
	req.FrequencyPenalty = numberField(obj, "frequency_penalty")
	req.PresencePenalty = numberField(obj, "presence_penalty")

	if f := numberField(obj, "max_tokens"); f != nil && *f == math.Trunc(*f) && math.Abs(*f) <= math.MaxInt32 {
		n := int(*f)
		req.MaxTokens = &n
	}

	return req
}

// numberField returns the value of key when it is a JSON number.
func numberField(obj *types.Object, key string) *float64 {
	raw, ok := obj.Get(key)
	if !ok || !isNumber(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

func isNumber(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) > 0 && (v[0] == '-' || (v[0] >= '0' && v[0] <= '9'))
}

func isString(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) > 0 && v[0] == '"'
}
