package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider loads secrets from environment variables at lookup time.
//
// Secret names are converted to uppercase environment variable names
// with hyphens replaced by underscores, then prefixed:
//
//	"openai-api-key" with prefix "RELAY_SECRET_" -> RELAY_SECRET_OPENAI_API_KEY
//	"OPENAI_API_KEY" with no prefix             -> OPENAI_API_KEY
type EnvProvider struct {
	Prefix string

	lookup func(string) (string, bool)
}

// NewEnvProvider creates a new environment variable secret provider.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{
		Prefix: prefix,
		lookup: os.LookupEnv,
	}
}

// GetSecret reads the environment variable for name. Unset and empty
// variables are both not found.
func (p *EnvProvider) GetSecret(ctx context.Context, name string) (string, error) {
	envVar := p.secretNameToEnvVar(name)

	lookup := p.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, _ := lookup(envVar)
	if value == "" {
		return "", fmt.Errorf("%w: %s (env var: %s)", ErrSecretNotFound, name, envVar)
	}

	return value, nil
}

// Provider returns the provider name.
func (p *EnvProvider) Provider() string {
	return "env"
}

// Supports always returns true; any secret may come from the environment.
func (p *EnvProvider) Supports(name string) bool {
	return true
}

func (p *EnvProvider) secretNameToEnvVar(name string) string {
	return p.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
