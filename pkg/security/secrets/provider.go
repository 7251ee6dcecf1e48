package secrets

import (
	"context"
	"errors"
)

// ErrSecretNotFound is returned when a provider has no value for a name.
var ErrSecretNotFound = errors.New("secret not found")

// SecretProvider retrieves secrets from a backend.
//
// Implementations are the static, environment and file providers. They are
// combined with Chain, which tries each in order.
type SecretProvider interface {
	// GetSecret retrieves a secret by name. A missing or empty value is
	// reported as an error wrapping ErrSecretNotFound.
	GetSecret(ctx context.Context, name string) (string, error)

	// Provider returns the provider name (static, env, file, chain).
	Provider() string

	// Supports indicates if this provider may hold the given secret name.
	Supports(name string) bool
}

// RefreshableProvider can reload secrets without restart.
type RefreshableProvider interface {
	SecretProvider

	// Refresh drops any cached values so the next lookup re-reads the backend.
	Refresh(ctx context.Context) error
}

// IsNotFound reports whether err means the secret is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSecretNotFound)
}
