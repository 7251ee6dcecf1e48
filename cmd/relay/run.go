package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"mercator-hq/relay/pkg/cli"
	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/providers"
	"mercator-hq/relay/pkg/providers/openai"
	"mercator-hq/relay/pkg/security/secrets"
	"mercator-hq/relay/pkg/server"
	"mercator-hq/relay/pkg/telemetry/logging"
	"mercator-hq/relay/pkg/telemetry/metrics"
	"mercator-hq/relay/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay server",
	Long: `Start the relay server with the specified configuration.

The server listens on the configured address and forwards chat completion
requests on every configured route to the upstream API.

Examples:
  # Start with default config
  relay run

  # Start with custom config
  relay run --config /etc/relay/config.yaml

  # Override listen address
  relay run --listen 0.0.0.0:8080

  # Validate config and wiring without starting the server
  relay run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile, envFiles...); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = runFlags.listenAddress
	}
	level := runFlags.logLevel
	if level == "" && verbose {
		level = "debug"
	}

	r, err := newRelay(cfg, logging.Options{Level: level})
	if err != nil {
		return err
	}
	defer r.Close()

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Credential sources: %v\n", r.secrets.Providers())
		return nil
	}

	printBanner(cmd.OutOrStdout(), cfg, r)

	if err := r.server.Start(cmd.Context()); err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Server stopped")
	return nil
}

// relay holds the process-wide components built from configuration.
type relay struct {
	server  *server.Server
	secrets *secrets.Chain
	client  *openai.Client
	tracer  *tracing.Tracer
	closers []io.Closer
}

// newRelay wires logging, tracing, metrics, the credential chain, the
// upstream client and the HTTP server from cfg.
func newRelay(cfg *config.Config, logOpts logging.Options) (*relay, error) {
	logger, logCloser, err := logging.New(&cfg.Telemetry.Logging, logOpts)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)
	r := &relay{closers: []io.Closer{logCloser}}

	r.tracer, err = tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		r.Close()
		return nil, cli.NewConfigError("telemetry.tracing", err.Error())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)

	r.secrets, err = secrets.NewChainFromConfig(cfg.Secrets, cfg.Upstream)
	if err != nil {
		r.Close()
		return nil, cli.NewConfigError("secrets", err.Error())
	}
	r.closers = append(r.closers, r.secrets)

	var client *openai.Client
	observer := providers.UpstreamObserverFunc(func(provider, outcome string, latency time.Duration) {
		collector.ObserveUpstream(provider, outcome, latency)
		collector.UpdateUpstreamHealth(provider, client.Health().IsHealthy())
	})
	client = openai.NewClient(providers.ProviderConfig{
		Name:                openai.ProviderName,
		BaseURL:             cfg.Upstream.BaseURL,
		Timeout:             cfg.Upstream.Timeout,
		UserAgent:           cfg.Upstream.UserAgent,
		MaxIdleConns:        cfg.Upstream.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Upstream.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Upstream.IdleConnTimeout,
	}, openai.WithObserver(observer))
	collector.UpdateUpstreamHealth(client.GetName(), true)
	r.client = client

	r.server, err = server.New(cfg, server.Deps{
		Secrets:        r.secrets,
		Upstream:       client,
		UpstreamHealth: client.Health(),
		Metrics:        collector,
		Build:          server.BuildInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate},
	})
	if err != nil {
		r.Close()
		return nil, cli.NewConfigError("proxy.routes", err.Error())
	}

	return r, nil
}

// Close flushes spans and releases the secrets watcher and log file.
func (r *relay) Close() error {
	var errs []error
	if r.tracer != nil {
		if err := r.tracer.Shutdown(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func printBanner(w io.Writer, cfg *config.Config, r *relay) {
	fmt.Fprintf(w, "Relay v%s\n", Version)
	fmt.Fprintf(w, "Loading configuration from: %s\n", cfgFile)
	fmt.Fprintln(w, "✓ Configuration loaded")
	fmt.Fprintf(w, "✓ Upstream: %s (timeout %s)\n", r.client.Endpoint(), cfg.Upstream.Timeout)
	fmt.Fprintf(w, "✓ Credential sources: %v\n", r.secrets.Providers())
	fmt.Fprintf(w, "✓ Routes: %v\n", cfg.Proxy.Routes)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(w, "✓ Metrics endpoint: http://%s%s\n", cfg.Proxy.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	if r.tracer.Enabled() {
		slog.Debug("tracing enabled", "endpoint", cfg.Telemetry.Tracing.Endpoint)
	}
	fmt.Fprintln(w, "\nPress Ctrl+C to stop")
}
