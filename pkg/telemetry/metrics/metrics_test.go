package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/relay/pkg/config"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:                true,
		Namespace:              "test",
		Subsystem:              "relay",
		RequestDurationBuckets: []float64{0.1, 0.5, 1.0, 5.0},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.Registry() != registry {
		t.Error("collector registry not set correctly")
	}
	if cfg.Namespace != config.DefaultMetricsNamespace || cfg.Subsystem != config.DefaultMetricsSubsystem {
		t.Errorf("expected default namespace/subsystem, got %q/%q", cfg.Namespace, cfg.Subsystem)
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		t.Error("expected default buckets")
	}
}

func TestCollector_RecordRequest(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordRequest("/api/generate", "POST", 200, 300*time.Millisecond, 512)
	collector.RecordRequest("/api/generate", "POST", 200, 100*time.Millisecond, 256)
	collector.RecordRequest("/api/generate", "POST", 502, time.Second, 64)

	counter := collector.requestMetrics.requestsTotal
	if got := testutil.ToFloat64(counter.WithLabelValues("/api/generate", "POST", "200")); got != 2 {
		t.Errorf("expected 2 successful requests, got %v", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("/api/generate", "POST", "502")); got != 1 {
		t.Errorf("expected 1 failed request, got %v", got)
	}
	if got := testutil.CollectAndCount(collector.requestMetrics.requestDuration); got != 1 {
		t.Errorf("expected 1 duration series, got %d", got)
	}
}

func TestCollector_ObserveUpstream(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.ObserveUpstream("openai", "success", 200*time.Millisecond)
	collector.ObserveUpstream("openai", "timeout", 30*time.Second)
	collector.ObserveUpstream("openai", "timeout", 30*time.Second)

	requests := collector.upstreamMetrics.requests
	if got := testutil.ToFloat64(requests.WithLabelValues("openai", "success")); got != 1 {
		t.Errorf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(requests.WithLabelValues("openai", "timeout")); got != 2 {
		t.Errorf("expected 2 timeouts, got %v", got)
	}

	expected := `
# HELP test_relay_upstream_requests_total Total number of upstream calls by outcome
# TYPE test_relay_upstream_requests_total counter
test_relay_upstream_requests_total{outcome="success",provider="openai"} 1
test_relay_upstream_requests_total{outcome="timeout",provider="openai"} 2
`
	if err := testutil.CollectAndCompare(requests, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metric output: %v", err)
	}
}

func TestCollector_UpdateUpstreamHealth(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.UpdateUpstreamHealth("openai", true)
	if got := testutil.ToFloat64(collector.upstreamMetrics.health.WithLabelValues("openai")); got != 1 {
		t.Errorf("expected healthy gauge 1, got %v", got)
	}
	collector.UpdateUpstreamHealth("openai", false)
	if got := testutil.ToFloat64(collector.upstreamMetrics.health.WithLabelValues("openai")); got != 0 {
		t.Errorf("expected healthy gauge 0, got %v", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordRequest("/api/generate", "POST", 200, time.Second, 10)
	collector.ObserveUpstream("openai", "success", time.Second)

	if got := testutil.CollectAndCount(collector.requestMetrics.requestsTotal); got != 0 {
		t.Errorf("expected no request series when disabled, got %d", got)
	}
	if got := testutil.CollectAndCount(collector.upstreamMetrics.requests); got != 0 {
		t.Errorf("expected no upstream series when disabled, got %d", got)
	}
}

func TestCollector_RouteCardinality(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.routes = NewCardinalityLimiter(2)

	collector.RecordRequest("/a", "GET", 404, time.Millisecond, 0)
	collector.RecordRequest("/b", "GET", 404, time.Millisecond, 0)
	collector.RecordRequest("/c", "GET", 404, time.Millisecond, 0)
	collector.RecordRequest("/d", "GET", 404, time.Millisecond, 0)

	counter := collector.requestMetrics.requestsTotal
	if got := testutil.ToFloat64(counter.WithLabelValues(OtherRoute, "GET", "404")); got != 2 {
		t.Errorf("expected 2 requests folded into %q, got %v", OtherRoute, got)
	}
	if collector.routes.Count() != 2 {
		t.Errorf("expected 2 admitted routes, got %d", collector.routes.Count())
	}
}

func TestCollector_MiddlewareAndHandler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	handler := collector.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad"}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate", nil))

	counter := collector.requestMetrics.requestsTotal
	if got := testutil.ToFloat64(counter.WithLabelValues("/api/generate", "POST", "400")); got != 1 {
		t.Errorf("expected 1 recorded request, got %v", got)
	}

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `test_relay_requests_total{method="POST",route="/api/generate",status="400"} 1`) {
		t.Errorf("expected request counter in scrape output, got:\n%s", body)
	}
}
