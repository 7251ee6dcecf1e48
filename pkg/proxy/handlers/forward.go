package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/providers"
	"mercator-hq/relay/pkg/proxy"
	"mercator-hq/relay/pkg/proxy/middleware"
	"mercator-hq/relay/pkg/security/secrets"
)

// ForwardConfig is the immutable configuration of a ForwardHandler.
type ForwardConfig struct {
	// Defaults fill absent upstream request fields.
	Defaults config.RequestDefaults

	// FunctionVersion is reported in the meta block of successful responses.
	FunctionVersion string

	// CredentialName is the secret resolved for every request.
	CredentialName string

	// MaxBodyBytes limits the request body. Zero means
	// proxy.MaxRequestBodySize.
	MaxBodyBytes int64

	// DebugErrors adds stacks to catch-all error bodies.
	DebugErrors bool
}

// NewForwardConfig derives handler settings from the loaded configuration.
func NewForwardConfig(cfg *config.Config) ForwardConfig {
	return ForwardConfig{
		Defaults:        cfg.Upstream.Defaults,
		FunctionVersion: cfg.Upstream.FunctionVersion,
		CredentialName:  cfg.Upstream.APIKeyEnv,
		MaxBodyBytes:    cfg.Proxy.MaxRequestBodyBytes,
		DebugErrors:     cfg.Proxy.DebugErrors,
	}
}

// ForwardHandler relays chat completion requests to the upstream API.
//
// Every dependency is fixed at construction. The handler keeps no state
// between requests, and the credential is looked up through the injected
// provider on each call so a rotated key takes effect without a restart.
type ForwardHandler struct {
	config  ForwardConfig
	secrets secrets.SecretProvider
	client  providers.ChatCompleter
	now     func() time.Time
}

// ForwardOption configures a ForwardHandler.
type ForwardOption func(*ForwardHandler)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) ForwardOption {
	return func(h *ForwardHandler) {
		h.now = now
	}
}

// NewForwardHandler creates a handler. An empty CredentialName means
// OPENAI_API_KEY and an empty FunctionVersion means "1.0".
func NewForwardHandler(cfg ForwardConfig, secretProvider secrets.SecretProvider, client providers.ChatCompleter, opts ...ForwardOption) *ForwardHandler {
	if cfg.CredentialName == "" {
		cfg.CredentialName = config.DefaultUpstreamAPIKeyEnv
	}
	if cfg.FunctionVersion == "" {
		cfg.FunctionVersion = config.DefaultFunctionVersion
	}
	if cfg.Defaults.Model == "" {
		cfg.Defaults.Model = config.DefaultModel
	}
	if cfg.Defaults.MaxTokens <= 0 {
		cfg.Defaults.MaxTokens = config.DefaultMaxTokens
	}

	h := &ForwardHandler{
		config:  cfg,
		secrets: secretProvider,
		client:  client,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *ForwardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := middleware.GetStartTime(ctx)
	if start.IsZero() {
		start = time.Now()
	}

	if r.Method == http.MethodOptions {
		middleware.SetPreflightHeaders(w.Header())
		w.WriteHeader(http.StatusNoContent)
		return
	}
	middleware.SetCORSHeaders(w.Header())

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeError(ctx, w, proxy.NewMethodError(r.Method))
		return
	}

	req, err := proxy.ParseForwardRequest(r, h.config.MaxBodyBytes)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	apiKey, err := h.resolveCredential(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	upstreamReq, err := proxy.BuildUpstreamRequest(req, h.config.Defaults)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	slog.InfoContext(ctx, "forwarding request",
		"provider", h.client.GetName(),
		"model", upstreamReq.Model,
		"messages", proxy.MessageCount(upstreamReq),
	)

	completion, err := h.client.CreateChatCompletion(ctx, apiKey, upstreamReq)
	if err != nil {
		slog.WarnContext(ctx, "upstream request failed",
			"provider", h.client.GetName(),
			"model", upstreamReq.Model,
			"latency_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		h.writeError(ctx, w, err)
		return
	}

	body, err := proxy.FormatCompletion(completion, upstreamReq.Model, h.config.FunctionVersion, h.now())
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	slog.InfoContext(ctx, "upstream response received",
		"provider", h.client.GetName(),
		"model", upstreamReq.Model,
		"upstream_status", completion.StatusCode,
		"response_bytes", completion.BodySize,
		"choices", completion.Choices,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if err := proxy.WriteJSONResponse(w, http.StatusOK, body); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

// resolveCredential returns the API key or a ConfigurationError. Blank
// values count as missing.
func (h *ForwardHandler) resolveCredential(ctx context.Context) (string, error) {
	if h.secrets == nil {
		return "", &proxy.ConfigurationError{Message: "no credential source configured"}
	}

	apiKey, err := h.secrets.GetSecret(ctx, h.config.CredentialName)
	if err == nil && apiKey != "" {
		return apiKey, nil
	}

	if err != nil && !errors.Is(err, secrets.ErrSecretNotFound) {
		slog.ErrorContext(ctx, "credential lookup failed",
			"secret", h.config.CredentialName,
			"provider", h.secrets.Provider(),
			"error", err,
		)
	} else {
		slog.ErrorContext(ctx, "upstream credential not configured",
			"secret", h.config.CredentialName,
		)
	}
	return "", &proxy.ConfigurationError{Message: "upstream credential not configured", Cause: err}
}

func (h *ForwardHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := proxy.WriteError(w, err, h.now(), h.config.DebugErrors)
	if status >= http.StatusInternalServerError {
		slog.DebugContext(ctx, "request failed", "status", status, "error", err)
	}
}
