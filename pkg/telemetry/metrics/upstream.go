package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/relay/pkg/config"
)

// UpstreamMetrics tracks calls to the upstream API.
//
// Metrics:
//   - <ns>_<sub>_upstream_requests_total{provider,outcome}
//   - <ns>_<sub>_upstream_duration_seconds{provider,outcome}
//   - <ns>_<sub>_upstream_healthy{provider} (1=healthy, 0=unhealthy)
type UpstreamMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	health   *prometheus.GaugeVec
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream calls by outcome",
			},
			[]string{"provider", "outcome"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_duration_seconds",
				Help:      "Upstream call latency in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"provider", "outcome"},
		),

		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_healthy",
				Help:      "Upstream health status (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		um.requests,
		um.duration,
		um.health,
	)

	return um
}

// Observe records one upstream call.
func (um *UpstreamMetrics) Observe(provider, outcome string, latency time.Duration) {
	um.requests.WithLabelValues(provider, outcome).Inc()
	um.duration.WithLabelValues(provider, outcome).Observe(latency.Seconds())
}

// UpdateHealth sets the health gauge.
func (um *UpstreamMetrics) UpdateHealth(provider string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	um.health.WithLabelValues(provider).Set(value)
}
