package providers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// UnhealthyThreshold is the number of consecutive failed calls after which
// a provider is reported unhealthy.
const UnhealthyThreshold = 3

// ProviderHealth is a snapshot of a provider's recent call outcomes.
type ProviderHealth struct {
	// IsHealthy is false after UnhealthyThreshold consecutive failures
	IsHealthy bool

	// LastCheck is when the last call finished
	LastCheck time.Time

	// LastError is the most recent failure (nil after a success)
	LastError error

	// ConsecutiveFailures counts failed calls since the last success
	ConsecutiveFailures int

	// LastSuccessfulRequest is when the last successful call finished
	LastSuccessfulRequest time.Time

	// TotalRequests is the number of calls recorded
	TotalRequests int64

	// FailedRequests is the number of failed calls recorded
	FailedRequests int64
}

// HealthTracker records the outcome of upstream calls.
//
// Only transport-level failures and upstream 5xx responses count against
// health. A client error such as an invalid key does not mark the upstream
// itself as down.
type HealthTracker struct {
	name string

	mu     sync.RWMutex
	health ProviderHealth
}

// NewHealthTracker creates a tracker that starts out healthy.
func NewHealthTracker(name string) *HealthTracker {
	return &HealthTracker{
		name:   name,
		health: ProviderHealth{IsHealthy: true},
	}
}

// Record updates the tracker with the result of one call.
func (h *HealthTracker) Record(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.health.LastCheck = now
	h.health.TotalRequests++

	if !countsAgainstHealth(err) {
		h.health.IsHealthy = true
		h.health.ConsecutiveFailures = 0
		h.health.LastError = nil
		h.health.LastSuccessfulRequest = now
		return
	}

	h.health.FailedRequests++
	h.health.ConsecutiveFailures++
	h.health.LastError = err

	if h.health.ConsecutiveFailures >= UnhealthyThreshold && h.health.IsHealthy {
		h.health.IsHealthy = false
		slog.Warn("provider marked unhealthy",
			"provider", h.name,
			"consecutive_failures", h.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

// Snapshot returns the current health information.
func (h *HealthTracker) Snapshot() ProviderHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.health
}

// IsHealthy returns the current health status.
func (h *HealthTracker) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.health.IsHealthy
}

func countsAgainstHealth(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return true
}
