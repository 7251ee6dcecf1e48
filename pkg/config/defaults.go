package config

import "time"

// Default values for configuration fields.
const (
	// Proxy defaults
	DefaultListenAddress       = "127.0.0.1:8080"
	DefaultReadTimeout         = 30 * time.Second
	DefaultWriteTimeout        = 45 * time.Second
	DefaultIdleTimeout         = 120 * time.Second
	DefaultShutdownTimeout     = 30 * time.Second
	DefaultMaxHeaderBytes      = 1048576  // 1MB
	DefaultMaxRequestBodyBytes = 10485760 // 10MB

	// Upstream defaults
	DefaultUpstreamBaseURL         = "https://api.openai.com/v1"
	DefaultUpstreamAPIKeyEnv       = "OPENAI_API_KEY"
	DefaultUpstreamTimeout         = 30 * time.Second
	DefaultUpstreamUserAgent       = "mercator-relay/1.0"
	DefaultFunctionVersion         = "1.0"
	DefaultUpstreamMaxIdleConns    = 100
	DefaultUpstreamMaxIdlePerHost  = 10
	DefaultUpstreamIdleConnTimeout = 90 * time.Second

	// Request defaults
	DefaultModel            = "gpt-4o-mini"
	DefaultTemperature      = 0.7
	DefaultMaxTokens        = 2000
	DefaultTopP             = 1.0
	DefaultFrequencyPenalty = 0.0
	DefaultPresencePenalty  = 0.0

	// Secrets defaults
	DefaultSecretsFilePath  = "/run/secrets"
	DefaultSecretsFileWatch = true
	DefaultSecretsEnvEnable = true

	// Telemetry defaults
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
	DefaultLogRedact         = true
	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 10
	DefaultLogFileMaxAgeDays = 30
	DefaultLogFileCompress   = true
	DefaultMetricsEnabled    = true
	DefaultMetricsPath       = "/metrics"
	DefaultMetricsNamespace  = "mercator"
	DefaultMetricsSubsystem  = "relay"
	DefaultTracingEnabled    = false
	DefaultTracingSampler    = "ratio"
	DefaultTracingRatio      = 0.1
	DefaultTracingEndpoint   = "localhost:4317"
	DefaultTracingInsecure   = true
	DefaultTracingTimeout    = 10 * time.Second
	DefaultTracingService    = "mercator-relay"
)

// DefaultRoutes are the paths the forwarding handler is mounted on.
var DefaultRoutes = []string{"/api/generate", "/v1/chat/completions"}

// DefaultRequestDurationBuckets are tuned for LLM latencies (50ms - 30s).
var DefaultRequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// NewDefaultConfig returns a configuration with every field set to its
// default. YAML is decoded on top of it, so keys absent from the file keep
// these values while explicit zeros and false values are honored.
func NewDefaultConfig() *Config {
	return &Config{
		Proxy: ProxyConfig{
			ListenAddress:       DefaultListenAddress,
			ReadTimeout:         DefaultReadTimeout,
			WriteTimeout:        DefaultWriteTimeout,
			IdleTimeout:         DefaultIdleTimeout,
			ShutdownTimeout:     DefaultShutdownTimeout,
			MaxHeaderBytes:      DefaultMaxHeaderBytes,
			MaxRequestBodyBytes: DefaultMaxRequestBodyBytes,
			Routes:              append([]string(nil), DefaultRoutes...),
		},
		Upstream: UpstreamConfig{
			BaseURL:             DefaultUpstreamBaseURL,
			APIKeyEnv:           DefaultUpstreamAPIKeyEnv,
			Timeout:             DefaultUpstreamTimeout,
			UserAgent:           DefaultUpstreamUserAgent,
			FunctionVersion:     DefaultFunctionVersion,
			MaxIdleConns:        DefaultUpstreamMaxIdleConns,
			MaxIdleConnsPerHost: DefaultUpstreamMaxIdlePerHost,
			IdleConnTimeout:     DefaultUpstreamIdleConnTimeout,
			Defaults: RequestDefaults{
				Model:            DefaultModel,
				Temperature:      DefaultTemperature,
				MaxTokens:        DefaultMaxTokens,
				TopP:             DefaultTopP,
				FrequencyPenalty: DefaultFrequencyPenalty,
				PresencePenalty:  DefaultPresencePenalty,
			},
		},
		Secrets: SecretsConfig{
			File: FileSecretsConfig{
				Path:  DefaultSecretsFilePath,
				Watch: DefaultSecretsFileWatch,
			},
			Env: EnvSecretsConfig{
				Enabled: DefaultSecretsEnvEnable,
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLogLevel,
				Format: DefaultLogFormat,
				Redact: DefaultLogRedact,
				File: LogFileConfig{
					MaxSizeMB:  DefaultLogFileMaxSizeMB,
					MaxBackups: DefaultLogFileMaxBackups,
					MaxAgeDays: DefaultLogFileMaxAgeDays,
					Compress:   DefaultLogFileCompress,
				},
			},
			Metrics: MetricsConfig{
				Enabled:                DefaultMetricsEnabled,
				Path:                   DefaultMetricsPath,
				Namespace:              DefaultMetricsNamespace,
				Subsystem:              DefaultMetricsSubsystem,
				RequestDurationBuckets: append([]float64(nil), DefaultRequestDurationBuckets...),
			},
			Tracing: TracingConfig{
				Enabled:     DefaultTracingEnabled,
				Sampler:     DefaultTracingSampler,
				SampleRatio: DefaultTracingRatio,
				Endpoint:    DefaultTracingEndpoint,
				Insecure:    DefaultTracingInsecure,
				Timeout:     DefaultTracingTimeout,
				ServiceName: DefaultTracingService,
			},
		},
	}
}

// ApplyDefaults fills empty string, duration and size fields with their
// defaults. It is safe to call on a configuration built in code; numeric
// request defaults and booleans are left alone because zero is a valid
// explicit value for them.
func ApplyDefaults(cfg *Config) {
	// Proxy defaults
	if cfg.Proxy.ListenAddress == "" {
		cfg.Proxy.ListenAddress = DefaultListenAddress
	}
	if cfg.Proxy.ReadTimeout == 0 {
		cfg.Proxy.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Proxy.WriteTimeout == 0 {
		cfg.Proxy.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Proxy.MaxRequestBodyBytes == 0 {
		cfg.Proxy.MaxRequestBodyBytes = DefaultMaxRequestBodyBytes
	}
	if len(cfg.Proxy.Routes) == 0 {
		cfg.Proxy.Routes = append([]string(nil), DefaultRoutes...)
	}

	// Upstream defaults
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = DefaultUpstreamBaseURL
	}
	if cfg.Upstream.APIKeyEnv == "" {
		cfg.Upstream.APIKeyEnv = DefaultUpstreamAPIKeyEnv
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if cfg.Upstream.UserAgent == "" {
		cfg.Upstream.UserAgent = DefaultUpstreamUserAgent
	}
	if cfg.Upstream.FunctionVersion == "" {
		cfg.Upstream.FunctionVersion = DefaultFunctionVersion
	}
	if cfg.Upstream.MaxIdleConns == 0 {
		cfg.Upstream.MaxIdleConns = DefaultUpstreamMaxIdleConns
	}
	if cfg.Upstream.MaxIdleConnsPerHost == 0 {
		cfg.Upstream.MaxIdleConnsPerHost = DefaultUpstreamMaxIdlePerHost
	}
	if cfg.Upstream.IdleConnTimeout == 0 {
		cfg.Upstream.IdleConnTimeout = DefaultUpstreamIdleConnTimeout
	}
	if cfg.Upstream.Defaults.Model == "" {
		cfg.Upstream.Defaults.Model = DefaultModel
	}
	if cfg.Upstream.Defaults.MaxTokens == 0 {
		cfg.Upstream.Defaults.MaxTokens = DefaultMaxTokens
	}

	// Secrets defaults
	if cfg.Secrets.File.Path == "" {
		cfg.Secrets.File.Path = DefaultSecretsFilePath
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Logging.File.MaxSizeMB == 0 {
		cfg.Telemetry.Logging.File.MaxSizeMB = DefaultLogFileMaxSizeMB
	}
	if cfg.Telemetry.Logging.File.MaxBackups == 0 {
		cfg.Telemetry.Logging.File.MaxBackups = DefaultLogFileMaxBackups
	}
	if cfg.Telemetry.Logging.File.MaxAgeDays == 0 {
		cfg.Telemetry.Logging.File.MaxAgeDays = DefaultLogFileMaxAgeDays
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
}
