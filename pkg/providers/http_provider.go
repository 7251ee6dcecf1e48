package providers

import (
	"net/http"
	"time"
)

// Connection pool defaults applied by NewHTTPClient when the config leaves
// them unset.
const (
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second
)

// NewHTTPClient creates an HTTP client with connection pooling for upstream
// calls.
//
// The client has no overall Timeout; callers bound each call with a context
// deadline so a timeout surfaces as context.DeadlineExceeded.
func NewHTTPClient(config ProviderConfig) *http.Client {
	maxIdle := config.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdleConns
	}
	maxIdlePerHost := config.MaxIdleConnsPerHost
	if maxIdlePerHost <= 0 {
		maxIdlePerHost = DefaultMaxIdleConnsPerHost
	}
	idleTimeout := config.IdleConnTimeout
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleConnTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = maxIdle
	transport.MaxIdleConnsPerHost = maxIdlePerHost
	transport.IdleConnTimeout = idleTimeout
	transport.ForceAttemptHTTP2 = true

	return &http.Client{Transport: transport}
}
