// Package config provides configuration management for the relay.
//
// Configuration is read from a YAML file decoded on top of built-in
// defaults, so a key that is absent keeps its default while an explicit
// zero (for example temperature: 0) is honored. A missing file is allowed.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. With .env files and environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RELAY_SECTION_FIELD:
//
//   - RELAY_PROXY_LISTEN_ADDRESS overrides proxy.listen_address
//   - RELAY_UPSTREAM_TIMEOUT overrides upstream.timeout
//   - RELAY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// The variable named by upstream.api_key_env (OPENAI_API_KEY by default)
// fills upstream.api_key when the file leaves it empty. A .env file in the
// working directory is loaded first and never replaces variables that are
// already set.
//
// # Configuration Precedence
//
// Later sources override earlier ones:
//
//  1. Built-in defaults
//  2. YAML file
//  3. RELAY_* environment variables
//
// # Global Configuration
//
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
package config
