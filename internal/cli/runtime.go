package cli

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/config"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/logger"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/telemetry"
)

// shutdownGrace bounds how long cleanup waits for servers and exporters.
const shutdownGrace = 2 * time.Second

// loadConfig resolves the config file, applies flag overrides and validates
// the result. The returned path is empty when running on defaults.
func loadConfig(flags EndpointFlags) (*config.Config, string, error) {
	cfg, path, err := config.Resolve(cfgFile)
	if err != nil {
		return nil, "", err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := flags.Apply(cfg); err != nil {
		return nil, "", err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newStatsClient builds the fetcher described by cfg.
func newStatsClient(cfg *config.Config, log logger.Logger) (*stats.Client, error) {
	return stats.NewClient(cfg.API.URL, cfg.API.StatsPath,
		stats.WithTimeout(cfg.Fetch.Timeout),
		stats.WithRetries(uint(cfg.Fetch.Retries), cfg.Fetch.RetryDelay),
		stats.WithLogger(log),
	)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openDashboardLogger returns the logger used while the TUI owns the
// terminal: log.file when set, otherwise a no-op.
func openDashboardLogger(cfg *config.Config) (logger.Logger, io.Closer, error) {
	if cfg.Log.File == "" {
		return logger.Noop(), nopCloser{}, nil
	}
	log, closer, err := logger.NewFileLogger(cfg.Log.File, "drishti", cfg.Log.Level)
	if err != nil {
		return nil, nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't open log file "+cfg.Log.File,
			"Check the log.file path and its directory permissions")
	}
	return log, closer, nil
}

// startTelemetry creates the poll metrics and starts the optional metrics
// server and trace exporter. The returned cleanup flushes and stops them.
func startTelemetry(cfg *config.Config, log logger.Logger) (*telemetry.Metrics, func(), error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(reg)

	var cleanups []func(context.Context)
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i](ctx)
		}
	}

	if addr := cfg.Telemetry.MetricsAddr; addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Can't serve metrics on "+addr,
				"Pick a free port for telemetry.metrics_addr, or leave it empty")
		}
		srv := telemetry.NewServer(addr, reg)
		go func() {
			if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server: %v", err)
			}
		}()
		log.Info("serving metrics on %s", ln.Addr())
		cleanups = append(cleanups, func(ctx context.Context) {
			_ = srv.Shutdown(ctx)
		})
	}

	if path := cfg.Telemetry.TraceFile; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			cleanup()
			return nil, nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Can't open trace file "+path,
				"Check the telemetry.trace_file path")
		}
		shutdown, err := telemetry.InitTracer(f, version)
		if err != nil {
			f.Close()
			cleanup()
			return nil, nil, errors.WrapWithCode(err, errors.ErrConfig, "Can't start tracing", "")
		}
		cleanups = append(cleanups, func(ctx context.Context) {
			if err := shutdown(ctx); err != nil {
				log.Warn("flushing traces: %v", err)
			}
			f.Close()
		})
	}

	return metrics, cleanup, nil
}
