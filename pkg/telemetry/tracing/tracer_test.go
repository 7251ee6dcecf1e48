package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/relay/pkg/config"
)

// installRecorder installs a synchronous in-memory provider as the global
// provider for the duration of the test.
func installRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
		_ = provider.Shutdown(context.Background())
	})
	return exporter
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		wantErr bool
		enabled bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name:   "disabled tracing",
			config: &config.TracingConfig{Enabled: false, ServiceName: "test-service"},
		},
		{
			name: "unknown sampler",
			config: &config.TracingConfig{
				Enabled:  true,
				Sampler:  "sometimes",
				Endpoint: "localhost:4317",
			},
			wantErr: true,
		},
		{
			name: "ratio out of range",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "ratio",
				SampleRatio: 2,
				Endpoint:    "localhost:4317",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config, "test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tracer.Enabled() != tt.enabled {
				t.Errorf("expected enabled=%v, got %v", tt.enabled, tracer.Enabled())
			}
			if err := tracer.Shutdown(context.Background()); err != nil {
				t.Errorf("shutdown failed: %v", err)
			}
		})
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		name    string
		sampler string
		ratio   float64
		wantErr bool
	}{
		{name: "always", sampler: "always"},
		{name: "never", sampler: "never"},
		{name: "ratio", sampler: "ratio", ratio: 0.5},
		{name: "empty means ratio", sampler: "", ratio: 0.1},
		{name: "negative ratio", sampler: "ratio", ratio: -0.1, wantErr: true},
		{name: "unknown", sampler: "random", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := newSampler(tt.sampler, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && s == nil {
				t.Error("expected sampler")
			}
		})
	}
}

func TestTracer_ExportsSpans(t *testing.T) {
	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
	})

	exporter := tracetest.NewInMemoryExporter()
	cfg := &config.TracingConfig{Enabled: true, ServiceName: "relay-test"}
	tracer, err := newWithExporter(cfg, "1.2.3", sdktrace.AlwaysSample(), exporter)
	if err != nil {
		t.Fatalf("newWithExporter failed: %v", err)
	}

	_, span := tracer.Start(context.Background(), "work")
	span.End()

	// Spans from the global tracer go through the same provider.
	_, global := otel.Tracer(InstrumentationName).Start(context.Background(), "global")
	global.End()

	if err := tracer.provider.ForceFlush(context.Background()); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name != "work" || spans[1].Name != "global" {
		t.Errorf("unexpected span names %q, %q", spans[0].Name, spans[1].Name)
	}
	if got := spans[0].Resource.String(); got == "" {
		t.Error("expected resource attributes")
	}

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
}

func TestSetErrorAndStatus(t *testing.T) {
	exporter := installRecorder(t)

	_, ok := otel.Tracer(InstrumentationName).Start(context.Background(), "ok")
	SetError(ok, nil)
	SetStatus(ok, nil)
	ok.End()

	_, failed := otel.Tracer(InstrumentationName).Start(context.Background(), "failed")
	SetProviderAttributes(failed, "openai", "gpt-4o-mini")
	SetError(failed, errors.New("boom"))
	SetStatus(failed, errors.New("boom"))
	failed.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("expected Ok status, got %v", spans[0].Status.Code)
	}
	if len(spans[0].Events) != 0 {
		t.Errorf("expected no events on successful span, got %d", len(spans[0].Events))
	}
	if spans[1].Status.Code != codes.Error || spans[1].Status.Description != "boom" {
		t.Errorf("expected Error status boom, got %+v", spans[1].Status)
	}
	if len(spans[1].Events) != 1 {
		t.Errorf("expected recorded error event, got %d", len(spans[1].Events))
	}

	attrs := map[string]string{}
	for _, kv := range spans[1].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs[AttrProvider] != "openai" || attrs[AttrModel] != "gpt-4o-mini" {
		t.Errorf("unexpected provider attributes %v", attrs)
	}
	if attrs[AttrErrorMessage] != "boom" {
		t.Errorf("expected error message attribute, got %v", attrs)
	}
}

func TestHTTPMiddleware(t *testing.T) {
	exporter := installRecorder(t)

	var innerTraceID string
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		innerTraceID = TraceID(r.Context())
		w.WriteHeader(http.StatusBadGateway)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", rec.Code)
	}
	if got := rec.Header().Get(TraceIDHeader); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("expected propagated trace ID header, got %q", got)
	}
	if innerTraceID != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("expected trace ID in handler context, got %q", innerTraceID)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name != "POST /api/generate" {
		t.Errorf("expected span name %q, got %q", "POST /api/generate", s.Name)
	}
	if s.SpanKind != trace.SpanKindServer {
		t.Errorf("expected server span, got %v", s.SpanKind)
	}
	if s.Status.Code != codes.Error {
		t.Errorf("expected error status for 502, got %v", s.Status.Code)
	}
	if s.Parent.SpanID().String() != "00f067aa0ba902b7" {
		t.Errorf("expected remote parent, got %s", s.Parent.SpanID())
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("expected empty trace ID, got %q", got)
	}
}
