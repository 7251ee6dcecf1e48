package providers

import (
	"context"
	"encoding/json"
	"time"

	"mercator-hq/relay/pkg/proxy/types"
)

// ChatCompleter sends chat completion requests to an upstream API.
type ChatCompleter interface {
	// CreateChatCompletion performs one upstream call authenticated with
	// apiKey. It returns a Completion only for a 2xx JSON payload carrying a
	// non-empty choices array; every other outcome is a typed error.
	CreateChatCompletion(ctx context.Context, apiKey string, req *ChatRequest) (*Completion, error)

	// GetName returns the provider name used in logs and errors.
	GetName() string
}

// ChatRequest is the upstream chat completion payload. Field order matches
// the encoded order.
type ChatRequest struct {
	Model            string          `json:"model"`
	Messages         json.RawMessage `json:"messages"`
	Temperature      float64         `json:"temperature"`
	MaxTokens        int             `json:"max_tokens"`
	TopP             float64         `json:"top_p"`
	FrequencyPenalty float64         `json:"frequency_penalty"`
	PresencePenalty  float64         `json:"presence_penalty"`
}

// Completion is a successful upstream response.
type Completion struct {
	// StatusCode is the upstream HTTP status.
	StatusCode int

	// Payload is the decoded upstream body with key order and raw values
	// preserved.
	Payload *types.Object

	// Choices is the number of entries in the choices array.
	Choices int

	// BodySize is the length of the raw upstream body in bytes.
	BodySize int
}

// ProviderConfig contains the settings for an upstream provider client.
type ProviderConfig struct {
	// Name is the provider identifier (e.g., "openai").
	Name string

	// BaseURL is the API endpoint base URL, without a trailing slash.
	BaseURL string

	// Timeout is the ceiling for one upstream call, including reading the
	// response body.
	Timeout time.Duration

	// UserAgent is sent with every upstream request.
	UserAgent string

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool.
	IdleConnTimeout time.Duration
}

// UpstreamObserver receives the outcome and latency of each upstream call.
type UpstreamObserver interface {
	ObserveUpstream(provider, outcome string, latency time.Duration)
}

// Outcome labels passed to UpstreamObserver.
const (
	OutcomeSuccess   = "success"
	OutcomeTimeout   = "timeout"
	OutcomeTransport = "transport_error"
	OutcomeParse     = "parse_error"
	OutcomeAPI       = "api_error"
	OutcomeStructure = "structure_error"
	OutcomeOther     = "error"
)

// UpstreamObserverFunc adapts a function to UpstreamObserver.
type UpstreamObserverFunc func(provider, outcome string, latency time.Duration)

// ObserveUpstream calls f.
func (f UpstreamObserverFunc) ObserveUpstream(provider, outcome string, latency time.Duration) {
	f(provider, outcome, latency)
}
