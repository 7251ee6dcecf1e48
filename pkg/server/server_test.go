package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	mockproviders "mercator-hq/relay/internal/providers"
	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/providers"
	"mercator-hq/relay/pkg/providers/openai"
	"mercator-hq/relay/pkg/security/secrets"
	"mercator-hq/relay/pkg/telemetry/metrics"
)

type fixture struct {
	upstream *mockproviders.MockServer
	client   *openai.Client
	cfg      *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	upstream := mockproviders.NewMockServer()
	t.Cleanup(upstream.Close)
	upstream.SetResponse(mockproviders.ChatCompletionsPath, mockproviders.MockResponse{
		StatusCode: 200,
		Body:       mockproviders.ChatCompletionBody("Hi there"),
	})

	cfg := config.NewDefaultConfig()
	cfg.Proxy.ListenAddress = "127.0.0.1:0"
	cfg.Proxy.ShutdownTimeout = 2 * time.Second

	return &fixture{
		upstream: upstream,
		client:   openai.NewClient(providers.ProviderConfig{BaseURL: upstream.URL(), Timeout: time.Second}),
		cfg:      cfg,
	}
}

func (f *fixture) deps(key string) Deps {
	return Deps{
		Secrets:        secrets.NewStaticProvider(map[string]string{config.DefaultUpstreamAPIKeyEnv: key}),
		Upstream:       f.client,
		UpstreamHealth: f.client.Health(),
		Metrics:        metrics.NewCollector(&f.cfg.Telemetry.Metrics, prometheus.NewRegistry()),
		Build:          BuildInfo{Version: "1.2.3", Commit: "abc123"},
	}
}

func TestNew_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		cfg     *config.Config
		deps    Deps
		wantErr string
	}{
		{name: "nil config", cfg: nil, deps: f.deps("sk"), wantErr: "config is nil"},
		{name: "no secrets", cfg: f.cfg, deps: Deps{Upstream: f.client}, wantErr: "secret provider"},
		{name: "no upstream", cfg: f.cfg, deps: Deps{Secrets: secrets.NewStaticProvider(nil)}, wantErr: "upstream client"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.deps)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNew_ReservedRoute(t *testing.T) {
	for _, route := range []string{HealthPath, ReadyPath, VersionPath, UpstreamHealthPath, "/metrics"} {
		t.Run(route, func(t *testing.T) {
			f := newFixture(t)
			f.cfg.Proxy.Routes = []string{"/api/generate", route}

			if _, err := New(f.cfg, f.deps("sk")); err == nil {
				t.Errorf("expected collision error for %s", route)
			}
		})
	}
}

func TestServer_Routes(t *testing.T) {
	f := newFixture(t)
	srv, err := New(f.cfg, f.deps("sk-test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "forward generate", method: http.MethodPost, path: "/api/generate", body: `{"prompt":"Hello"}`, wantStatus: 200, wantBody: `"function_version":"1.0"`},
		{name: "forward chat completions", method: http.MethodPost, path: "/v1/chat/completions", body: `{"messages":[{"role":"user","content":"Hi"}]}`, wantStatus: 200, wantBody: `"Hi there"`},
		{name: "forward wrong method", method: http.MethodGet, path: "/api/generate", wantStatus: 405, wantBody: `"Method not allowed. Use POST."`},
		{name: "preflight", method: http.MethodOptions, path: "/api/generate", wantStatus: 204},
		{name: "health", method: http.MethodGet, path: HealthPath, wantStatus: 200, wantBody: `"status":"ok"`},
		{name: "ready", method: http.MethodGet, path: ReadyPath, wantStatus: 200, wantBody: `"status":"ready"`},
		{name: "version", method: http.MethodGet, path: VersionPath, wantStatus: 200, wantBody: `"version":"1.2.3"`},
		{name: "upstream health", method: http.MethodGet, path: UpstreamHealthPath, wantStatus: 200, wantBody: `"provider":"openai"`},
		{name: "unknown path", method: http.MethodGet, path: "/nope", wantStatus: 404, wantBody: `{"error":"Not found","path":"/nope"}`},
		{name: "below forward route", method: http.MethodPost, path: "/api/generate/extra", body: `{"prompt":"Hello"}`, wantStatus: 404, wantBody: `"path":"/api/generate/extra"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, resp.StatusCode, body)
			}
			if tt.wantBody != "" && !strings.Contains(string(body), tt.wantBody) {
				t.Errorf("expected body to contain %s, got %s", tt.wantBody, body)
			}
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("expected CORS origin header, got %q", got)
			}
			if resp.Header.Get("X-Request-ID") == "" {
				t.Error("expected X-Request-ID header")
			}
		})
	}
}

func TestServer_NotFoundIsJSON(t *testing.T) {
	f := newFixture(t)
	srv, err := New(f.cfg, f.deps("sk-test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/does/not/exist", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body["error"] != "Not found" || body["path"] != "/does/not/exist" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestServer_RootRouteReplacesNotFound(t *testing.T) {
	f := newFixture(t)
	f.cfg.Proxy.Routes = []string{"/"}
	srv, err := New(f.cfg, f.deps("sk-test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/anything", strings.NewReader(`{"prompt":"Hello"}`)))
	if rec.Code != http.StatusOK {
		t.Errorf("expected forward on root route, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected health to stay routed, got %d", rec.Code)
	}
}

func TestServer_ReadyWithoutCredential(t *testing.T) {
	f := newFixture(t)
	srv, err := New(f.cfg, f.deps(""))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ReadyPath, nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var status struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if status.Status != "degraded" || status.Checks["credential"].Status != "unhealthy" {
		t.Errorf("unexpected readiness %+v", status)
	}
	if strings.Contains(rec.Body.String(), "sk-") {
		t.Error("readiness body must not carry key material")
	}
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t)
	srv, err := New(f.cfg, f.deps("sk-test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h := srv.Handler()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{}`)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "mercator_relay_requests_total") {
		t.Errorf("expected request counter in scrape output")
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	f := newFixture(t)
	f.cfg.Telemetry.Metrics.Enabled = false
	srv, err := New(f.cfg, f.deps("sk-test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 with metrics disabled, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON 404, got %q", ct)
	}
}

func TestServer_StartShutdown(t *testing.T) {
	f := newFixture(t)
	srv, err := New(f.cfg, f.deps("sk-test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Addr() == "" {
		t.Fatal("server did not start listening")
	}
	if !srv.IsRunning() {
		t.Error("expected server to report running")
	}

	resp, err := http.Get("http://" + srv.Addr() + HealthPath)
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	if err := srv.Start(ctx); err == nil {
		t.Error("expected error starting a running server")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected shutdown error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	if srv.IsRunning() {
		t.Error("expected server stopped")
	}
}

func TestServer_Stop(t *testing.T) {
	f := newFixture(t)
	srv, err := New(f.cfg, f.deps("sk-test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Start(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for !srv.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	srv.Stop()
	srv.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_StopConcurrent(t *testing.T) {
	f := newFixture(t)
	srv, err := New(f.cfg, f.deps("sk-test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			srv.Stop()
		}()
	}
	wg.Wait()

	select {
	case <-srv.shutdownChan:
	default:
		t.Fatal("expected shutdown channel to be closed")
	}
}
