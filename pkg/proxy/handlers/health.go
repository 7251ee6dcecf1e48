package handlers

import (
	"net/http"
	"time"

	"mercator-hq/relay/pkg/providers"
	"mercator-hq/relay/pkg/proxy"
)

// UpstreamHealth is the body of the upstream health endpoint.
type UpstreamHealth struct {
	Provider            string     `json:"provider"`
	Healthy             bool       `json:"healthy"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	TotalRequests       int64      `json:"total_requests"`
	FailedRequests      int64      `json:"failed_requests"`
	LastCheck           *time.Time `json:"last_check,omitempty"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
}

// UpstreamHealthHandler reports the upstream health derived from real
// calls. It answers 503 once the tracker marks the upstream unhealthy.
type UpstreamHealthHandler struct {
	provider string
	tracker  *providers.HealthTracker
}

// NewUpstreamHealthHandler creates a handler over tracker.
func NewUpstreamHealthHandler(provider string, tracker *providers.HealthTracker) *UpstreamHealthHandler {
	return &UpstreamHealthHandler{provider: provider, tracker: tracker}
}

// ServeHTTP implements http.Handler.
func (h *UpstreamHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		_ = proxy.WriteJSONResponse(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	snap := h.tracker.Snapshot()
	body := UpstreamHealth{
		Provider:            h.provider,
		Healthy:             snap.IsHealthy,
		ConsecutiveFailures: snap.ConsecutiveFailures,
		TotalRequests:       snap.TotalRequests,
		FailedRequests:      snap.FailedRequests,
		LastCheck:           timePtr(snap.LastCheck),
		LastSuccess:         timePtr(snap.LastSuccessfulRequest),
	}
	if snap.LastError != nil {
		body.LastError = snap.LastError.Error()
	}

	status := http.StatusOK
	if !snap.IsHealthy {
		status = http.StatusServiceUnavailable
	}

	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		return
	}
	_ = proxy.WriteJSONResponse(w, status, body)
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
