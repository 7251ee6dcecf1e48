package secrets

import (
	"context"
	"fmt"
)

// StaticProvider serves values fixed at construction time.
type StaticProvider struct {
	values map[string]string
}

// NewStaticProvider copies values into a new provider. Empty values are
// dropped so they resolve as not found.
func NewStaticProvider(values map[string]string) *StaticProvider {
	p := &StaticProvider{values: make(map[string]string, len(values))}
	for name, value := range values {
		if value != "" {
			p.values[name] = value
		}
	}
	return p
}

// GetSecret returns the captured value for name.
func (p *StaticProvider) GetSecret(ctx context.Context, name string) (string, error) {
	value, ok := p.values[name]
	if !ok {
		return "", fmt.Errorf("%w: %s (static)", ErrSecretNotFound, name)
	}
	return value, nil
}

// Provider returns the provider name.
func (p *StaticProvider) Provider() string {
	return "static"
}

// Supports reports whether a value was captured for name.
func (p *StaticProvider) Supports(name string) bool {
	_, ok := p.values[name]
	return ok
}
