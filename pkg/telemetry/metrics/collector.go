package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/relay/pkg/config"
)

// DefaultMaxRoutes bounds the number of distinct route label values.
// Paths beyond it are recorded as OtherRoute.
const DefaultMaxRoutes = 64

// OtherRoute is the route label used once the route limit is reached.
const OtherRoute = "other"

// Collector owns every Prometheus metric exposed by the relay. It records
// inbound HTTP requests and the outcome of upstream calls, and implements
// providers.UpstreamObserver.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	upstreamMetrics *UpstreamMetrics

	routes *CardinalityLimiter
}

// NewCollector creates a collector and registers its metrics with registry.
// A nil registry gets a fresh one.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = append([]float64(nil), config.DefaultRequestDurationBuckets...)
	}

	return &Collector{
		config:          cfg,
		registry:        registry,
		requestMetrics:  NewRequestMetrics(cfg, registry),
		upstreamMetrics: NewUpstreamMetrics(cfg, registry),
		routes:          NewCardinalityLimiter(DefaultMaxRoutes),
	}
}

// RecordRequest records a completed inbound request.
func (c *Collector) RecordRequest(route, method string, status int, duration time.Duration, responseBytes int) {
	if !c.config.Enabled {
		return
	}
	if !c.routes.Allow(route) {
		route = OtherRoute
	}
	c.requestMetrics.RecordRequest(route, method, status, duration, responseBytes)
}

// ObserveUpstream records the outcome and latency of one upstream call.
func (c *Collector) ObserveUpstream(provider, outcome string, latency time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.upstreamMetrics.Observe(provider, outcome, latency)
}

// UpdateUpstreamHealth sets the health gauge for provider.
func (c *Collector) UpdateUpstreamHealth(provider string, healthy bool) {
	if !c.config.Enabled {
		return
	}
	c.upstreamMetrics.UpdateHealth(provider, healthy)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of distinct label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality
// distinct values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already admitted or can still be.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	_, exists := cl.current[value]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the number of admitted values.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
