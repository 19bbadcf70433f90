//go:build !prometheus

package main

import prom "github.com/prometheus/client_golang/prometheus"

// metricsServer is a no-op stand-in when built without the "prometheus" tag.
type metricsServer struct{}

func startMetricsServer(addr string, reg *prom.Registry) *metricsServer {
	return nil
}

func (m *metricsServer) Close() error {
	return nil
}
