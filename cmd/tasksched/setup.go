package main

import (
	"fmt"
	"log/slog"
	"os"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/siegeon/tasksched/internal/config"
	"github.com/siegeon/tasksched/internal/engine"
	"github.com/siegeon/tasksched/internal/evaluator"
	"github.com/siegeon/tasksched/internal/executor"
	"github.com/siegeon/tasksched/internal/facade"
	"github.com/siegeon/tasksched/internal/metrics"
	"github.com/siegeon/tasksched/internal/notify"
	"github.com/siegeon/tasksched/internal/retry"
	"github.com/siegeon/tasksched/internal/store/sqlite"
)

// app bundles everything a command needs; Close stops the engine and
// releases the notify bus and the store (serve closes its own NATS
// connection). metricsReg is non-nil
// only when metrics are enabled, for serve to expose via startMetricsServer.
type app struct {
	cfg        *config.Config
	store      *sqlite.Store
	bus        *notify.Bus
	engine     *engine.Engine
	facade     *facade.Facade
	metricsReg *prom.Registry
}

func newLogger(cfg *config.Config, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch config.NormalizeLogLevel(cfg.Logging.Level) {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if config.NormalizeLogFormat(cfg.Logging.Format) == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func busyRetryPolicy(cfg config.BusyRetryConfig) retry.Policy {
	mode := config.NormalizeRetryBackoff(cfg.Mode)
	if mode == "" {
		mode = config.RetryBackoffLinear
	}
	return retry.NewPolicy(mode, cfg.Initial, cfg.Max, cfg.MaxRetries)
}

// openApp loads configPath, opens the store, and wires engine/executor/
// facade over it. Callers must call app.Close when done.
func openApp(configPath string, verbose bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg, verbose)

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var metricsReg *prom.Registry
	if cfg.Metrics.Enabled {
		promRecorder := metrics.NewPrometheusRecorder(nil)
		recorder = promRecorder
		metricsReg = promRecorder.Registry()
	}

	store, err := sqlite.Open(cfg.Store.Path,
		sqlite.WithBusyRetryPolicy(busyRetryPolicy(cfg.Store.BusyRetry)),
		sqlite.WithRecorder(recorder),
	)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	bus := notify.NewBus()
	ex := executor.New(store, evaluator.NewShell(), logger)
	eng := engine.New(store, ex,
		engine.WithRecorder(recorder),
		engine.WithBus(bus),
		engine.WithLogger(logger),
	)
	f := facade.New(store, eng, ex)

	return &app{cfg: cfg, store: store, bus: bus, engine: eng, facade: f, metricsReg: metricsReg}, nil
}

func (a *app) Close() error {
	a.engine.Stop()
	a.bus.Close()
	return a.store.Close()
}
