package config

import (
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	d := cfg.Upstream.Defaults
	if d.Model != "gpt-4o-mini" {
		t.Errorf("expected model %q, got %q", "gpt-4o-mini", d.Model)
	}
	if d.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", d.Temperature)
	}
	if d.MaxTokens != 2000 {
		t.Errorf("expected max tokens 2000, got %d", d.MaxTokens)
	}
	if d.TopP != 1 || d.FrequencyPenalty != 0 || d.PresencePenalty != 0 {
		t.Errorf("unexpected sampling defaults %+v", d)
	}
	if cfg.Upstream.Timeout != 30*time.Second {
		t.Errorf("expected upstream timeout 30s, got %v", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.FunctionVersion != "1.0" {
		t.Errorf("expected function version %q, got %q", "1.0", cfg.Upstream.FunctionVersion)
	}
	if cfg.Upstream.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("expected api key env %q, got %q", "OPENAI_API_KEY", cfg.Upstream.APIKeyEnv)
	}

	// Slices are copies
	cfg.Proxy.Routes[0] = "/changed"
	if DefaultRoutes[0] == "/changed" {
		t.Error("expected default routes to be copied")
	}
}

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input Config
		check func(*testing.T, *Config)
	}{
		{
			name:  "empty config gets defaults",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Proxy.ListenAddress != DefaultListenAddress {
					t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Proxy.ListenAddress)
				}
				if cfg.Proxy.MaxRequestBodyBytes != DefaultMaxRequestBodyBytes {
					t.Errorf("expected max body %d, got %d", DefaultMaxRequestBodyBytes, cfg.Proxy.MaxRequestBodyBytes)
				}
				if len(cfg.Proxy.Routes) != len(DefaultRoutes) {
					t.Errorf("expected routes %v, got %v", DefaultRoutes, cfg.Proxy.Routes)
				}
				if cfg.Upstream.BaseURL != DefaultUpstreamBaseURL {
					t.Errorf("expected base URL %q, got %q", DefaultUpstreamBaseURL, cfg.Upstream.BaseURL)
				}
				if cfg.Upstream.Defaults.Model != DefaultModel {
					t.Errorf("expected model %q, got %q", DefaultModel, cfg.Upstream.Defaults.Model)
				}
				if cfg.Telemetry.Metrics.Namespace != DefaultMetricsNamespace {
					t.Errorf("expected namespace %q, got %q", DefaultMetricsNamespace, cfg.Telemetry.Metrics.Namespace)
				}
			},
		},
		{
			name: "set values are preserved",
			input: Config{
				Proxy:    ProxyConfig{ListenAddress: "0.0.0.0:1234"},
				Upstream: UpstreamConfig{Timeout: 5 * time.Second, UserAgent: "custom"},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Proxy.ListenAddress != "0.0.0.0:1234" {
					t.Errorf("expected listen address preserved, got %q", cfg.Proxy.ListenAddress)
				}
				if cfg.Upstream.Timeout != 5*time.Second {
					t.Errorf("expected timeout preserved, got %v", cfg.Upstream.Timeout)
				}
				if cfg.Upstream.UserAgent != "custom" {
					t.Errorf("expected user agent preserved, got %q", cfg.Upstream.UserAgent)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			ApplyDefaults(&cfg)
			tt.check(t, &cfg)
		})
	}
}
