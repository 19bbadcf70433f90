// Package metrics provides an observability framework for the scheduler
// engine and task store.
//
// # Design Philosophy
//
// This package implements the Null Object pattern to enable metrics
// collection without requiring explicit nil checks throughout the codebase.
// By default, all components use NoopRecorder, which implements the Recorder
// interface with no-op methods that inline to nothing at compile time.
//
// # Architecture
//
// The metrics system has three components:
//
//  1. Recorder interface - Defines all metrics operations
//  2. NoopRecorder - Default implementation that does nothing (zero overhead)
//  3. PrometheusRecorder - Real implementation, activated when needed
//
// # Usage Pattern
//
// Components receive a Recorder through dependency injection:
//
//	type Engine struct {
//	    recorder metrics.Recorder
//	}
//
//	func New(store task.Store, dispatch Dispatcher, opts ...Option) *Engine {
//	    e := &Engine{store: store, dispatch: dispatch, recorder: metrics.NoopRecorder{}} // Default: no metrics
//	    ...
//	}
//
// # Activation
//
// To enable metrics, swap NoopRecorder for a real implementation:
//
//	// When Prometheus is configured
//	recorder := metrics.NewPrometheusRecorder(registry)
//	engine := engine.New(store, dispatch, engine.WithRecorder(recorder))
//
// This approach allows:
//   - Zero overhead when metrics are disabled (noop methods inline away)
//   - Metrics activation without code changes (just swap implementation)
//   - Clean testing (inject a mock recorder for verification)
//   - Gradual rollout (enable metrics per-component)
//
// # HTTP exposition
//
// HTTPHandler (prometheus_http.go) is built only under the "prometheus"
// build tag, keeping the promhttp dependency out of binaries that don't
// serve a metrics endpoint.
package metrics
