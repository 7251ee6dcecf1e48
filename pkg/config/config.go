package config

import "time"

// Config is the root configuration structure for the relay.
// It contains the HTTP server settings, the upstream API settings, secret
// sources and telemetry.
type Config struct {
	// Proxy contains HTTP server configuration including listen address,
	// timeouts, body limits and mounted routes.
	Proxy ProxyConfig `yaml:"proxy"`

	// Upstream contains configuration for the chat completion API the relay
	// forwards to, including request defaults.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Secrets contains configuration for credential sources other than the
	// inline upstream.api_key.
	Secrets SecretsConfig `yaml:"secrets"`

	// Telemetry contains configuration for logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProxyConfig contains configuration for the HTTP server.
type ProxyConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed upstream.timeout so that a 408 can still be
	// delivered.
	// Default: 45s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxRequestBodyBytes limits the size of an inbound request body.
	// Default: 10485760 (10MB)
	MaxRequestBodyBytes int64 `yaml:"max_request_body_bytes"`

	// Routes lists the paths the forwarding handler is mounted on.
	// Default: ["/api/generate", "/v1/chat/completions"]
	Routes []string `yaml:"routes"`

	// DebugErrors adds stack traces to catch-all error responses.
	// Only enable in development.
	// Default: false
	DebugErrors bool `yaml:"debug_errors"`
}

// UpstreamConfig contains configuration for the upstream chat completion API.
type UpstreamConfig struct {
	// BaseURL is the API base URL. The chat completions path is appended.
	// Default: "https://api.openai.com/v1"
	BaseURL string `yaml:"base_url"`

	// APIKey is the upstream credential. When empty it is filled from the
	// environment variable named by APIKeyEnv during loading.
	APIKey string `yaml:"api_key"`

	// APIKeyEnv is the environment variable holding the credential. It is
	// also the secret name looked up in the file and env secret providers.
	// Default: "OPENAI_API_KEY"
	APIKeyEnv string `yaml:"api_key_env"`

	// Timeout bounds a single upstream call.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent is sent with upstream requests.
	// Default: "mercator-relay/1.0"
	UserAgent string `yaml:"user_agent"`

	// FunctionVersion is reported in the meta block of successful responses.
	// Default: "1.0"
	FunctionVersion string `yaml:"function_version"`

	// MaxIdleConns is the maximum number of idle upstream connections.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the maximum idle connections per upstream host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle upstream connection is kept.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`

	// Defaults are applied to request fields the client omits.
	Defaults RequestDefaults `yaml:"defaults"`
}

// RequestDefaults contains values used for omitted request fields.
// Explicit zeros in the YAML file are kept.
type RequestDefaults struct {
	// Model defaults to "gpt-4o-mini".
	Model string `yaml:"model"`

	// Temperature defaults to 0.7.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens defaults to 2000.
	MaxTokens int `yaml:"max_tokens"`

	// TopP defaults to 1.
	TopP float64 `yaml:"top_p"`

	// FrequencyPenalty defaults to 0.
	FrequencyPenalty float64 `yaml:"frequency_penalty"`

	// PresencePenalty defaults to 0.
	PresencePenalty float64 `yaml:"presence_penalty"`
}

// SecretsConfig contains configuration for credential sources.
type SecretsConfig struct {
	// File configures a directory of secret files, one secret per file.
	File FileSecretsConfig `yaml:"file"`

	// Env configures environment variable lookup at request time.
	Env EnvSecretsConfig `yaml:"env"`
}

// FileSecretsConfig configures the file-based secret provider.
type FileSecretsConfig struct {
	// Enabled turns on the file provider.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the directory containing secret files.
	// Default: "/run/secrets"
	Path string `yaml:"path"`

	// Watch reloads secrets when files change.
	// Default: true
	Watch bool `yaml:"watch"`
}

// EnvSecretsConfig configures the environment secret provider.
type EnvSecretsConfig struct {
	// Enabled turns on lookup of the credential in the environment at
	// request time.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Prefix is prepended to secret names before lookup.
	// Default: ""
	Prefix string `yaml:"prefix"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// Redact masks bearer tokens and API keys in log attributes.
	// Default: true
	Redact bool `yaml:"redact"`

	// File configures an optional rotating log file.
	File LogFileConfig `yaml:"file"`
}

// LogFileConfig configures rotating file output. Logs are written to
// stdout and the file when Path is set.
type LogFileConfig struct {
	// Path is the log file path. Empty disables file output.
	Path string `yaml:"path"`

	// MaxSizeMB is the size at which the file is rotated.
	// Default: 100
	MaxSizeMB int `yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	// Default: 10
	MaxBackups int `yaml:"max_backups"`

	// MaxAgeDays is how long rotated files are kept.
	// Default: 30
	MaxAgeDays int `yaml:"max_age_days"`

	// Compress gzips rotated files.
	// Default: true
	Compress bool `yaml:"compress"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled exposes metrics and records them.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes all metric names.
	// Default: "mercator"
	Namespace string `yaml:"namespace"`

	// Subsystem follows the namespace in metric names.
	// Default: "relay"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets are histogram buckets in seconds.
	// Default: [0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the collector connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service name in traces.
	// Default: "mercator-relay"
	ServiceName string `yaml:"service_name"`
}
