package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "upstream.base_url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks the configuration and returns a ValidationError listing
// every rule that failed, or nil.
//
// A missing upstream credential is not a validation failure. The handler
// reports it per request.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateUpstream(&cfg.Upstream)...)
	errs = append(errs, validateSecrets(&cfg.Secrets)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if cfg.Proxy.WriteTimeout > 0 && cfg.Upstream.Timeout > 0 && cfg.Proxy.WriteTimeout <= cfg.Upstream.Timeout {
		errs = append(errs, FieldError{
			Field:   "proxy.write_timeout",
			Message: fmt.Sprintf("write timeout (%s) must exceed upstream.timeout (%s)", cfg.Proxy.WriteTimeout, cfg.Upstream.Timeout),
		})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateProxy(cfg *ProxyConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "proxy.listen_address", Message: "listen address is required"})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{Field: "proxy.listen_address", Message: fmt.Sprintf("invalid host:port: %v", err)})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "proxy.read_timeout", Message: "read timeout must be positive"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "proxy.write_timeout", Message: "write timeout must be positive"})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "proxy.idle_timeout", Message: "idle timeout must be positive"})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{Field: "proxy.shutdown_timeout", Message: "shutdown timeout must be positive"})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{Field: "proxy.max_header_bytes", Message: "max header bytes must be non-negative"})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{Field: "proxy.max_header_bytes", Message: "max header bytes exceeds reasonable limit (10MB)"})
	}
	if cfg.MaxRequestBodyBytes < 0 {
		errs = append(errs, FieldError{Field: "proxy.max_request_body_bytes", Message: "max request body bytes must be non-negative"})
	}

	seen := make(map[string]bool, len(cfg.Routes))
	for i, route := range cfg.Routes {
		field := fmt.Sprintf("proxy.routes[%d]", i)
		switch {
		case !strings.HasPrefix(route, "/"):
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("route %q must start with /", route)})
		case seen[route]:
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("duplicate route %q", route)})
		}
		seen[route] = true
	}

	return errs
}

func validateUpstream(cfg *UpstreamConfig) []FieldError {
	var errs []FieldError

	if cfg.BaseURL == "" {
		errs = append(errs, FieldError{Field: "upstream.base_url", Message: "base URL is required"})
	} else if u, err := url.Parse(cfg.BaseURL); err != nil {
		errs = append(errs, FieldError{Field: "upstream.base_url", Message: fmt.Sprintf("invalid URL: %v", err)})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, FieldError{Field: "upstream.base_url", Message: "URL scheme must be http or https"})
	} else if u.Host == "" {
		errs = append(errs, FieldError{Field: "upstream.base_url", Message: "URL must include a host"})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "upstream.timeout", Message: "timeout must be positive"})
	}
	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{Field: "upstream.max_idle_conns", Message: "must be non-negative"})
	}
	if cfg.MaxIdleConnsPerHost < 0 {
		errs = append(errs, FieldError{Field: "upstream.max_idle_conns_per_host", Message: "must be non-negative"})
	}

	d := cfg.Defaults
	if d.Model == "" {
		errs = append(errs, FieldError{Field: "upstream.defaults.model", Message: "default model is required"})
	}
	if d.Temperature < 0 || d.Temperature > 2 {
		errs = append(errs, FieldError{Field: "upstream.defaults.temperature", Message: "must be between 0 and 2"})
	}
	if d.MaxTokens <= 0 {
		errs = append(errs, FieldError{Field: "upstream.defaults.max_tokens", Message: "must be positive"})
	}
	if d.TopP < 0 || d.TopP > 1 {
		errs = append(errs, FieldError{Field: "upstream.defaults.top_p", Message: "must be between 0 and 1"})
	}
	if d.FrequencyPenalty < -2 || d.FrequencyPenalty > 2 {
		errs = append(errs, FieldError{Field: "upstream.defaults.frequency_penalty", Message: "must be between -2 and 2"})
	}
	if d.PresencePenalty < -2 || d.PresencePenalty > 2 {
		errs = append(errs, FieldError{Field: "upstream.defaults.presence_penalty", Message: "must be between -2 and 2"})
	}

	return errs
}

func validateSecrets(cfg *SecretsConfig) []FieldError {
	var errs []FieldError
	if cfg.File.Enabled && cfg.File.Path == "" {
		errs = append(errs, FieldError{Field: "secrets.file.path", Message: "path is required when the file provider is enabled"})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be json or text)", cfg.Logging.Format),
		})
	}

	if cfg.Logging.File.Path != "" {
		if cfg.Logging.File.MaxSizeMB < 0 {
			errs = append(errs, FieldError{Field: "telemetry.logging.file.max_size_mb", Message: "must be non-negative"})
		}
		if cfg.Logging.File.MaxBackups < 0 {
			errs = append(errs, FieldError{Field: "telemetry.logging.file.max_backups", Message: "must be non-negative"})
		}
		if cfg.Logging.File.MaxAgeDays < 0 {
			errs = append(errs, FieldError{Field: "telemetry.logging.file.max_age_days", Message: "must be non-negative"})
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "metrics path must start with /"})
	}
	for i := 1; i < len(cfg.Metrics.RequestDurationBuckets); i++ {
		if cfg.Metrics.RequestDurationBuckets[i] <= cfg.Metrics.RequestDurationBuckets[i-1] {
			errs = append(errs, FieldError{Field: "telemetry.metrics.request_duration_buckets", Message: "buckets must be strictly increasing"})
			break
		}
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q (must be always, never, or ratio)", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "sample ratio must be between 0 and 1"})
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "endpoint is required when tracing is enabled"})
		}
	}

	return errs
}
