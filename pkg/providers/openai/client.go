package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/relay/pkg/providers"
	"mercator-hq/relay/pkg/proxy/types"
	"mercator-hq/relay/pkg/telemetry/tracing"
)

const (
	// ProviderName identifies this provider in logs, metrics and errors.
	ProviderName = "openai"

	// DefaultBaseURL is the public OpenAI API.
	DefaultBaseURL = "https://api.openai.com/v1"

	// ChatCompletionsPath is appended to the base URL.
	ChatCompletionsPath = "/chat/completions"

	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent when the config leaves UserAgent empty.
	DefaultUserAgent = "mercator-relay/1.0"

	// PreviewLength is the number of characters of a non-JSON body kept for
	// diagnostics.
	PreviewLength = 200

	// SpanName is the name of the client span around each upstream call.
	SpanName = "openai.chat.completions"
)

var (
	fallbackMessage = json.RawMessage(`"OpenAI API request failed"`)
	fallbackType    = json.RawMessage(`"api_error"`)
	fallbackCode    = json.RawMessage(`"unknown"`)
)

// Client calls the OpenAI Chat Completions API.
type Client struct {
	config   providers.ProviderConfig
	client   *http.Client
	tracer   trace.Tracer
	observer providers.UpstreamObserver
	health   *providers.HealthTracker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.client = c
	}
}

// WithTracer sets the tracer used for upstream spans. The global tracer
// provider is used otherwise.
func WithTracer(t trace.Tracer) Option {
	return func(cl *Client) {
		cl.tracer = t
	}
}

// WithObserver registers a receiver for upstream outcomes and latencies.
func WithObserver(o providers.UpstreamObserver) Option {
	return func(cl *Client) {
		cl.observer = o
	}
}

// NewClient creates a client. Empty config fields fall back to the
// package defaults.
func NewClient(config providers.ProviderConfig, opts ...Option) *Client {
	if config.Name == "" {
		config.Name = ProviderName
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	c := &Client{
		config: config,
		health: providers.NewHealthTracker(config.Name),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = providers.NewHTTPClient(config)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracing.InstrumentationName)
	}
	return c
}

// GetName returns the provider name.
func (c *Client) GetName() string {
	return c.config.Name
}

// Health returns the tracker fed by this client's calls.
func (c *Client) Health() *providers.HealthTracker {
	return c.health
}

// Endpoint returns the full chat completions URL.
func (c *Client) Endpoint() string {
	return c.config.BaseURL + ChatCompletionsPath
}

// CreateChatCompletion sends req upstream with apiKey as the bearer
// credential. The call is attempted once and bounded by the configured
// timeout.
func (c *Client) CreateChatCompletion(ctx context.Context, apiKey string, req *providers.ChatRequest) (*providers.Completion, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upstream request: %w", err)
	}

	ctx, span := c.tracer.Start(ctx, SpanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	tracing.SetProviderAttributes(span, c.config.Name, req.Model)

	start := time.Now()
	completion, err := c.send(ctx, apiKey, body)
	latency := time.Since(start)

	c.health.Record(err)
	outcome := outcomeOf(err)
	if c.observer != nil {
		c.observer.ObserveUpstream(c.config.Name, outcome, latency)
	}

	span.SetAttributes(attribute.String(tracing.AttrOutcome, outcome))
	if completion != nil {
		span.SetAttributes(attribute.Int(tracing.AttrHTTPStatus, completion.StatusCode))
	}
	var apiErr *providers.APIError
	if errors.As(err, &apiErr) {
		span.SetAttributes(attribute.Int(tracing.AttrHTTPStatus, apiErr.StatusCode))
	}
	tracing.SetError(span, err)
	tracing.SetStatus(span, err)

	return completion, err
}

// send performs the HTTP exchange and translates the response.
func (c *Client) send(ctx context.Context, apiKey string, body []byte) (*providers.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	tracing.Inject(ctx, httpReq.Header)

	slog.DebugContext(ctx, "sending request to provider",
		"provider", c.config.Name,
		"url", c.Endpoint(),
		"bytes", len(body),
	)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, providers.ClassifyTransportError(c.config.Name, c.config.Timeout, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if providers.IsTimeout(err) {
			return nil, &providers.TimeoutError{Provider: c.config.Name, Timeout: c.config.Timeout, Cause: err}
		}
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	slog.InfoContext(ctx, "provider response received",
		"provider", c.config.Name,
		"status", resp.StatusCode,
		"bytes", len(raw),
	)

	return translate(c.config.Name, resp.StatusCode, raw)
}

// translate turns a raw upstream response into a Completion or a typed
// error.
func translate(provider string, status int, raw []byte) (*providers.Completion, error) {
	payload, err := types.DecodeObject(raw)
	if err != nil && !errors.Is(err, types.ErrNotObject) {
		return nil, &providers.ParseError{
			Provider:   provider,
			StatusCode: status,
			Preview:    preview(raw, PreviewLength),
			Cause:      err,
		}
	}

	if status < 200 || status > 299 {
		return nil, newAPIError(provider, status, payload, raw)
	}

	if payload == nil {
		return nil, &providers.StructureError{Provider: provider, Keys: []string{}}
	}

	var choices []json.RawMessage
	choicesRaw, _ := payload.Get("choices")
	if err := json.Unmarshal(choicesRaw, &choices); err != nil || len(choices) == 0 {
		return nil, &providers.StructureError{Provider: provider, Keys: payload.Keys()}
	}

	return &providers.Completion{
		StatusCode: status,
		Payload:    payload,
		Choices:    len(choices),
		BodySize:   len(raw),
	}, nil
}

// newAPIError extracts message, type and code from the upstream error
// object, falling back to fixed strings for missing or falsy values.
func newAPIError(provider string, status int, payload *types.Object, raw []byte) *providers.APIError {
	apiErr := &providers.APIError{
		Provider:   provider,
		StatusCode: status,
		Message:    fallbackMessage,
		Type:       fallbackType,
		Code:       fallbackCode,
		Payload:    compact(raw),
	}
	if payload == nil {
		return apiErr
	}

	errRaw, ok := payload.Get("error")
	if !ok {
		return apiErr
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(errRaw, &fields); err != nil {
		return apiErr
	}

	if v := fields["message"]; !types.IsFalsy(v) {
		apiErr.Message = v
	}
	if v := fields["type"]; !types.IsFalsy(v) {
		apiErr.Type = v
	}
	if v := fields["code"]; !types.IsFalsy(v) {
		apiErr.Code = v
	}
	return apiErr
}

// preview returns at most n characters of raw.
func preview(raw []byte, n int) string {
	runes := []rune(string(raw))
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

func compact(raw []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return json.RawMessage(raw)
	}
	return buf.Bytes()
}

func outcomeOf(err error) string {
	var (
		timeoutErr   *providers.TimeoutError
		transportErr *providers.TransportError
		parseErr     *providers.ParseError
		apiErr       *providers.APIError
		structureErr *providers.StructureError
	)
	switch {
	case err == nil:
		return providers.OutcomeSuccess
	case errors.As(err, &timeoutErr):
		return providers.OutcomeTimeout
	case errors.As(err, &transportErr):
		return providers.OutcomeTransport
	case errors.As(err, &parseErr):
		return providers.OutcomeParse
	case errors.As(err, &apiErr):
		return providers.OutcomeAPI
	case errors.As(err, &structureErr):
		return providers.OutcomeStructure
	default:
		return providers.OutcomeOther
	}
}
