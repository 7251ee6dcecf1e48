package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := writeConfig(t, `
proxy:
  listen_address: "0.0.0.0:9090"
  read_timeout: "60s"
  routes:
    - /api/generate

upstream:
  base_url: "http://localhost:8081/v1"
  api_key: "sk-test-123"
  timeout: "10s"
  defaults:
    model: "gpt-4o"
    max_tokens: 512

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Proxy.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:9090", cfg.Proxy.ListenAddress)
	}
	if cfg.Proxy.ReadTimeout != 60*time.Second {
		t.Errorf("expected read timeout %v, got %v", 60*time.Second, cfg.Proxy.ReadTimeout)
	}
	if len(cfg.Proxy.Routes) != 1 || cfg.Proxy.Routes[0] != "/api/generate" {
		t.Errorf("expected routes [/api/generate], got %v", cfg.Proxy.Routes)
	}
	if cfg.Upstream.APIKey != "sk-test-123" {
		t.Errorf("expected API key %q, got %q", "sk-test-123", cfg.Upstream.APIKey)
	}
	if cfg.Upstream.Timeout != 10*time.Second {
		t.Errorf("expected timeout %v, got %v", 10*time.Second, cfg.Upstream.Timeout)
	}
	if cfg.Upstream.Defaults.Model != "gpt-4o" {
		t.Errorf("expected model %q, got %q", "gpt-4o", cfg.Upstream.Defaults.Model)
	}
	if cfg.Upstream.Defaults.MaxTokens != 512 {
		t.Errorf("expected max tokens 512, got %d", cfg.Upstream.Defaults.MaxTokens)
	}
	// Unset fields keep their defaults
	if cfg.Upstream.Defaults.Temperature != DefaultTemperature {
		t.Errorf("expected temperature %v, got %v", DefaultTemperature, cfg.Upstream.Defaults.Temperature)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics to stay enabled by default")
	}
}

func TestLoadConfig_ExplicitZerosKept(t *testing.T) {
	configPath := writeConfig(t, `
upstream:
  defaults:
    temperature: 0
    top_p: 0
    presence_penalty: 0
telemetry:
  metrics:
    enabled: false
  logging:
    redact: false
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Upstream.Defaults.Temperature != 0 {
		t.Errorf("expected temperature 0, got %v", cfg.Upstream.Defaults.Temperature)
	}
	if cfg.Upstream.Defaults.TopP != 0 {
		t.Errorf("expected top_p 0, got %v", cfg.Upstream.Defaults.TopP)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics disabled")
	}
	if cfg.Telemetry.Logging.Redact {
		t.Error("expected redaction disabled")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected missing file to be allowed, got %v", err)
	}
	if cfg.Proxy.ListenAddress != DefaultListenAddress {
		t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Proxy.ListenAddress)
	}
	if cfg.Upstream.BaseURL != DefaultUpstreamBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultUpstreamBaseURL, cfg.Upstream.BaseURL)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "proxy:\n  listen_address: [unclosed\n")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, `
upstream:
  base_url: "ftp://example.com"
`)

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Errors[0].Field != "upstream.base_url" {
		t.Errorf("expected field %q, got %q", "upstream.base_url", verr.Errors[0].Field)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	configPath := writeConfig(t, `
proxy:
  listen_address: "127.0.0.1:8080"
upstream:
  timeout: "20s"
`)

	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("RELAY_PROXY_LISTEN_ADDRESS", "0.0.0.0:7000")
	t.Setenv("RELAY_UPSTREAM_TIMEOUT", "5s")
	t.Setenv("RELAY_UPSTREAM_DEFAULTS_TEMPERATURE", "0")
	t.Setenv("RELAY_PROXY_ROUTES", "/a, /b")
	t.Setenv("RELAY_PROXY_DEBUG_ERRORS", "true")
	t.Setenv("RELAY_TELEMETRY_METRICS_ENABLED", "not-a-bool")

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Proxy.ListenAddress != "0.0.0.0:7000" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:7000", cfg.Proxy.ListenAddress)
	}
	if cfg.Upstream.Timeout != 5*time.Second {
		t.Errorf("expected timeout %v, got %v", 5*time.Second, cfg.Upstream.Timeout)
	}
	if cfg.Upstream.Defaults.Temperature != 0 {
		t.Errorf("expected temperature 0, got %v", cfg.Upstream.Defaults.Temperature)
	}
	if len(cfg.Proxy.Routes) != 2 || cfg.Proxy.Routes[1] != "/b" {
		t.Errorf("expected routes [/a /b], got %v", cfg.Proxy.Routes)
	}
	if !cfg.Proxy.DebugErrors {
		t.Error("expected debug errors enabled")
	}
	// Unparseable values are ignored
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics to keep default for invalid bool")
	}
	if cfg.Upstream.APIKey != "" {
		t.Errorf("expected empty API key, got %q", cfg.Upstream.APIKey)
	}
}

func TestLoadConfigWithEnvOverrides_APIKeyFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		env      map[string]string
		expected string
	}{
		{
			name:     "default variable fills empty key",
			yaml:     "",
			env:      map[string]string{"OPENAI_API_KEY": "sk-env"},
			expected: "sk-env",
		},
		{
			name:     "file key wins over variable",
			yaml:     "upstream:\n  api_key: sk-file\n",
			env:      map[string]string{"OPENAI_API_KEY": "sk-env"},
			expected: "sk-file",
		},
		{
			name:     "custom variable name",
			yaml:     "upstream:\n  api_key_env: MY_KEY\n",
			env:      map[string]string{"OPENAI_API_KEY": "", "MY_KEY": "sk-custom"},
			expected: "sk-custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, tt.yaml))
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}
			if cfg.Upstream.APIKey != tt.expected {
				t.Errorf("expected API key %q, got %q", tt.expected, cfg.Upstream.APIKey)
			}
		})
	}
}

func TestLoadConfigWithEnvOverrides_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "OPENAI_API_KEY=sk-dotenv\nRELAY_PROXY_LISTEN_ADDRESS=127.0.0.1:9999\n"
	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	// An existing variable is never replaced by the file.
	t.Setenv("RELAY_PROXY_LISTEN_ADDRESS", "127.0.0.1:7777")
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")

	cfg, err := LoadConfigWithEnvOverrides(filepath.Join(dir, "absent.yaml"), envPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Upstream.APIKey != "sk-dotenv" {
		t.Errorf("expected API key %q, got %q", "sk-dotenv", cfg.Upstream.APIKey)
	}
	if cfg.Proxy.ListenAddress != "127.0.0.1:7777" {
		t.Errorf("expected listen address %q, got %q", "127.0.0.1:7777", cfg.Proxy.ListenAddress)
	}
}

func TestLoadConfigWithEnvOverrides_MissingEnvFileSkipped(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := LoadConfigWithEnvOverrides(filepath.Join(t.TempDir(), "absent.yaml"), filepath.Join(t.TempDir(), "nope.env"))
	if err != nil {
		t.Fatalf("expected missing env file to be skipped, got %v", err)
	}
}
