package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/providers"
	"mercator-hq/relay/pkg/proxy/handlers"
	"mercator-hq/relay/pkg/proxy/middleware"
	"mercator-hq/relay/pkg/security/secrets"
	"mercator-hq/relay/pkg/telemetry/health"
	"mercator-hq/relay/pkg/telemetry/metrics"
	"mercator-hq/relay/pkg/telemetry/tracing"
)

// Probe and diagnostics paths. Forwarding routes may not use them.
const (
	HealthPath         = "/health"
	ReadyPath          = "/ready"
	VersionPath        = "/version"
	UpstreamHealthPath = "/health/upstream"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Deps are the collaborators the server wires into its routes.
type Deps struct {
	// Secrets resolves the upstream credential. Required.
	Secrets secrets.SecretProvider

	// Upstream performs chat completions. Required.
	Upstream providers.ChatCompleter

	// UpstreamHealth enables /health/upstream when set.
	UpstreamHealth *providers.HealthTracker

	// Metrics enables request metrics and the scrape endpoint when set.
	Metrics *metrics.Collector

	Build BuildInfo
}

// Server is the relay's HTTP server.
type Server struct {
	config     *config.Config
	deps       Deps
	handler    http.Handler
	httpServer *http.Server

	mu           sync.RWMutex
	listener     net.Listener
	isRunning    bool
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	stopOnce     sync.Once
}

// New builds the server and its routes. It does not listen.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server config is nil")
	}
	if deps.Secrets == nil {
		return nil, errors.New("server requires a secret provider")
	}
	if deps.Upstream == nil {
		return nil, errors.New("server requires an upstream client")
	}

	s := &Server{
		config:       cfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}

	handler, err := s.setupRoutes()
	if err != nil {
		return nil, err
	}
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:           cfg.Proxy.ListenAddress,
		Handler:        handler,
		ReadTimeout:    cfg.Proxy.ReadTimeout,
		WriteTimeout:   cfg.Proxy.WriteTimeout,
		IdleTimeout:    cfg.Proxy.IdleTimeout,
		MaxHeaderBytes: cfg.Proxy.MaxHeaderBytes,
	}
	return s, nil
}

// setupRoutes registers every route and wraps the mux in the middleware
// chain.
func (s *Server) setupRoutes() (http.Handler, error) {
	mux := http.NewServeMux()

	reserved := map[string]bool{HealthPath: true, ReadyPath: true, VersionPath: true}
	if s.deps.UpstreamHealth != nil {
		reserved[UpstreamHealthPath] = true
	}
	if s.metricsEnabled() {
		reserved[s.config.Telemetry.Metrics.Path] = true
	}

	forwardCfg := handlers.NewForwardConfig(s.config)
	forward := handlers.NewForwardHandler(forwardCfg, s.deps.Secrets, s.deps.Upstream)
	catchAll := true
	for _, route := range s.config.Proxy.Routes {
		if reserved[route] {
			return nil, fmt.Errorf("forwarding route %q collides with a built-in endpoint", route)
		}
		if route == "/" {
			catchAll = false
		}
		mux.Handle(route, forward)
	}
	// "/" matches every path no other pattern claims.
	if catchAll {
		mux.Handle("/", handlers.NotFoundHandler())
	}

	checker := health.New(0)
	credentialName := forwardCfg.CredentialName
	if credentialName == "" {
		credentialName = config.DefaultUpstreamAPIKeyEnv
	}
	checker.RegisterCheck("credential", func(ctx context.Context) error {
		if _, err := s.deps.Secrets.GetSecret(ctx, credentialName); err != nil {
			return fmt.Errorf("upstream credential not configured: %s", credentialName)
		}
		return nil
	})

	mux.Handle(HealthPath, checker.LivenessHandler())
	mux.Handle(ReadyPath, checker.ReadinessHandler())
	mux.Handle(VersionPath, health.VersionHandler(s.deps.Build.Version, s.deps.Build.Commit, s.deps.Build.BuildTime))
	if s.deps.UpstreamHealth != nil {
		mux.Handle(UpstreamHealthPath, handlers.NewUpstreamHealthHandler(s.deps.Upstream.GetName(), s.deps.UpstreamHealth))
	}

	chain := []middleware.Middleware{
		middleware.RecoveryMiddleware(s.config.Proxy.DebugErrors),
		tracing.HTTPMiddleware,
		middleware.LoggingMiddleware,
	}
	if s.metricsEnabled() {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.deps.Metrics.Handler())
		chain = append(chain, s.deps.Metrics.Middleware)
	}
	chain = append(chain, middleware.RequestIDMiddleware, middleware.CORSMiddleware)

	return middleware.Chain(mux, chain...), nil
}

func (s *Server) metricsEnabled() bool {
	return s.deps.Metrics != nil && s.config.Telemetry.Metrics.Enabled
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the bound address once Start has begun listening.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start listens and serves until ctx is done, SIGINT or SIGTERM arrives,
// Stop is called or the server fails. It then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	listener, err := net.Listen("tcp", s.config.Proxy.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Proxy.ListenAddress, err)
	}
	s.listener = listener
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting relay server",
			"address", listener.Addr().String(),
			"routes", s.config.Proxy.Routes,
		)
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
	case err := <-errChan:
		s.setStopped()
		return err
	}
	return s.Shutdown(context.Background())
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.shutdownChan) })
}

// Shutdown drains in-flight requests for at most proxy.shutdown_timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if !s.IsRunning() {
			return
		}

		timeout := s.config.Proxy.ShutdownTimeout
		if timeout <= 0 {
			timeout = config.DefaultShutdownTimeout
		}
		slog.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.setStopped()
		slog.Info("relay server stopped", "drain_ms", time.Since(start).Milliseconds())
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Server) setStopped() {
	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
}
