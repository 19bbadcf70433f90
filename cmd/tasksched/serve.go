package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/siegeon/tasksched/internal/logfields"
	"github.com/siegeon/tasksched/internal/notify"
)

// ServeCmd runs the engine until SIGINT/SIGTERM, logging a one-line summary
// per fire and, when configured, forwarding the same events to NATS.
type ServeCmd struct{}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	a, err := openApp(root.Config, root.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var nats *natsFanout
	if a.cfg.Notify.NATSURL != "" {
		nats, err = newNATSFanout(a.cfg.Notify.NATSURL)
		if err != nil {
			slog.Warn("serve: NATS fan-out disabled", logfields.Error(err))
		} else {
			defer nats.Close()
		}
	}

	stop := logFires(a.bus, nats)
	defer stop()

	if a.metricsReg != nil {
		metricsSrv := startMetricsServer(a.cfg.Metrics.Listen, a.metricsReg)
		defer func() { _ = metricsSrv.Close() }()
		if metricsSrv != nil {
			slog.Info("serve: metrics listening", logfields.Addr(a.cfg.Metrics.Listen))
		}
	}

	a.facade.Start(ctx)
	slog.Info("serve: engine started, waiting for shutdown signal")
	<-ctx.Done()

	slog.Info("serve: shutdown signal received, stopping engine")
	a.facade.Stop()
	return nil
}

// logFires subscribes to the bus's three event kinds and logs one line per
// event; it forwards the same events to fanout when non-nil. The returned
// func unsubscribes and waits for the logging goroutines to drain.
func logFires(bus *notify.Bus, fanout *natsFanout) func() {
	fired, unsubFired := notify.Subscribe[notify.ScheduleFired](bus, 16)
	advanced, unsubAdvanced := notify.Subscribe[notify.ScheduleAdvanced](bus, 16)
	deleted, unsubDeleted := notify.Subscribe[notify.ScheduleDeleted](bus, 16)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for evt := range fired {
			slog.Info("schedule fired", logfields.TaskID(evt.TaskID), logfields.ScheduleID(evt.ScheduleID), logfields.Status(fireStatus(evt.Succeeded)))
			if fanout != nil {
				fanout.PublishFired(evt)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for evt := range advanced {
			slog.Info("schedule advanced", logfields.TaskID(evt.TaskID), logfields.ScheduleID(evt.ScheduleID))
			if fanout != nil {
				fanout.PublishAdvanced(evt)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for evt := range deleted {
			slog.Info("schedule deleted", logfields.TaskID(evt.TaskID), logfields.ScheduleID(evt.ScheduleID))
			if fanout != nil {
				fanout.PublishDeleted(evt)
			}
		}
	}()

	return func() {
		unsubFired()
		unsubAdvanced()
		unsubDeleted()
		wg.Wait()
	}
}

func fireStatus(succeeded bool) string {
	if succeeded {
		return "success"
	}
	return "failed"
}

// natsFanout forwards fire events to NATS, best-effort: publish failures are
// logged and otherwise ignored, never surfaced to the engine's fire path.
type natsFanout struct {
	pub *notify.NATSPublisher
}

func newNATSFanout(url string) (*natsFanout, error) {
	pub, err := notify.NewNATSPublisher(url)
	if err != nil {
		return nil, fmt.Errorf("connect NATS fan-out: %w", err)
	}
	return &natsFanout{pub: pub}, nil
}

func (f *natsFanout) PublishFired(evt notify.ScheduleFired) {
	if err := f.pub.PublishFired(context.Background(), evt); err != nil {
		slog.Warn("nats fan-out: publish fired failed", logfields.Error(err))
	}
}

func (f *natsFanout) PublishAdvanced(evt notify.ScheduleAdvanced) {
	if err := f.pub.PublishAdvanced(context.Background(), evt); err != nil {
		slog.Warn("nats fan-out: publish advanced failed", logfields.Error(err))
	}
}

func (f *natsFanout) PublishDeleted(evt notify.ScheduleDeleted) {
	if err := f.pub.PublishDeleted(context.Background(), evt); err != nil {
		slog.Warn("nats fan-out: publish deleted failed", logfields.Error(err))
	}
}

func (f *natsFanout) Close() {
	f.pub.Close()
}
