package secrets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"mercator-hq/relay/pkg/config"
)

// Chain tries providers in order and returns the first non-empty value.
// It keeps no cache of its own; each lookup reaches the providers, so a
// rotated file secret or environment variable takes effect immediately.
type Chain struct {
	providers []SecretProvider
}

// NewChain creates a chain over providers. Nil entries are skipped.
func NewChain(providers ...SecretProvider) *Chain {
	c := &Chain{}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	return c
}

// GetSecret returns the first value found. Provider failures other than
// not found are logged and the next provider is tried; if nothing yields a
// value the result wraps ErrSecretNotFound.
func (c *Chain) GetSecret(ctx context.Context, name string) (string, error) {
	var failures []string
	for _, p := range c.providers {
		if !p.Supports(name) {
			continue
		}
		value, err := p.GetSecret(ctx, name)
		if err == nil && value != "" {
			return value, nil
		}
		if err != nil && !errors.Is(err, ErrSecretNotFound) {
			slog.Warn("secret provider failed",
				"provider", p.Provider(),
				"secret", name,
				"error", err,
			)
			failures = append(failures, p.Provider()+": "+err.Error())
		}
	}

	if len(failures) > 0 {
		return "", fmt.Errorf("%w: %s (%s)", ErrSecretNotFound, name, strings.Join(failures, "; "))
	}
	return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
}

// Provider returns the provider name.
func (c *Chain) Provider() string {
	return "chain"
}

// Supports reports whether any provider may hold name.
func (c *Chain) Supports(name string) bool {
	for _, p := range c.providers {
		if p.Supports(name) {
			return true
		}
	}
	return false
}

// Providers returns the names of the chained providers in lookup order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Provider()
	}
	return names
}

// Refresh refreshes every refreshable provider in the chain.
func (c *Chain) Refresh(ctx context.Context) error {
	var errs []error
	for _, p := range c.providers {
		if rp, ok := p.(RefreshableProvider); ok {
			if err := rp.Refresh(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.Provider(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every provider that holds resources.
func (c *Chain) Close() error {
	var errs []error
	for _, p := range c.providers {
		if closer, ok := p.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.Provider(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// NewChainFromConfig builds the credential chain: the file provider when
// enabled, then the live environment, then upstream.api_key as captured at
// load time. The environment comes before the captured value so a rotated
// variable takes effect.
func NewChainFromConfig(secretsCfg config.SecretsConfig, upstreamCfg config.UpstreamConfig) (*Chain, error) {
	var providers []SecretProvider

	if secretsCfg.File.Enabled {
		fp, err := NewFileProvider(secretsCfg.File.Path, secretsCfg.File.Watch)
		if err != nil {
			return nil, fmt.Errorf("failed to create file secret provider: %w", err)
		}
		providers = append(providers, fp)
	}

	if secretsCfg.Env.Enabled {
		providers = append(providers, NewEnvProvider(secretsCfg.Env.Prefix))
	}

	if upstreamCfg.APIKey != "" {
		providers = append(providers, NewStaticProvider(map[string]string{
			upstreamCfg.APIKeyEnv: upstreamCfg.APIKey,
		}))
	}

	return NewChain(providers...), nil
}
