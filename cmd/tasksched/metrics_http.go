//go:build prometheus

package main

import (
	"context"
	"log/slog"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/siegeon/tasksched/internal/logfields"
	"github.com/siegeon/tasksched/internal/metrics"
)

// metricsServer wraps the http.Server so serve.go can shut it down alongside
// the engine without needing to know it's only present under this build tag.
type metricsServer struct {
	srv *http.Server
}

func startMetricsServer(addr string, reg *prom.Registry) *metricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics: listener failed", logfields.Error(err))
		}
	}()
	return &metricsServer{srv: srv}
}

func (m *metricsServer) Close() error {
	if m == nil {
		return nil
	}
	return m.srv.Shutdown(context.Background())
}
