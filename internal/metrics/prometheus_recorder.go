package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once               sync.Once
	reg                *prom.Registry
	fireDuration       prom.Histogram
	fireResults        *prom.CounterVec
	missedFires        prom.Counter
	pendingSchedules   prom.Gauge
	engineRunning      prom.Gauge
	storeBusyRetry     prom.Counter
	storeBusyExhausted prom.Counter
	storeOpDuration    *prom.HistogramVec
}

// NewPrometheusRecorder constructs the Prometheus metrics and registers them
// on reg (a new registry when reg is nil). Each call builds fresh collectors,
// so a second call with the same registry panics on duplicate registration.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.fireDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "tasksched",
			Name:      "fire_duration_seconds",
			Help:      "Duration of a single task fire (Evaluator.Evaluate call)",
			Buckets:   prom.DefBuckets,
		})
		pr.fireResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "tasksched",
			Name:      "fire_results_total",
			Help:      "Fire outcomes by result (success, evaluator_error, store_error)",
		}, []string{"result"})
		pr.missedFires = prom.NewCounter(prom.CounterOpts{
			Namespace: "tasksched",
			Name:      "missed_fires_total",
			Help:      "Fires that came due while the engine was stopped and were caught up on start",
		})
		pr.pendingSchedules = prom.NewGauge(prom.GaugeOpts{
			Namespace: "tasksched",
			Name:      "pending_schedules",
			Help:      "1 if the store has at least one pending schedule at the last re-arm, 0 otherwise",
		})
		pr.engineRunning = prom.NewGauge(prom.GaugeOpts{
			Namespace: "tasksched",
			Name:      "engine_running",
			Help:      "1 if the engine is currently running, 0 otherwise",
		})
		pr.storeBusyRetry = prom.NewCounter(prom.CounterOpts{
			Namespace: "tasksched",
			Name:      "store_busy_retries_total",
			Help:      "Total SQLITE_BUSY retries attempted by the store",
		})
		pr.storeBusyExhausted = prom.NewCounter(prom.CounterOpts{
			Namespace: "tasksched",
			Name:      "store_busy_retries_exhausted_total",
			Help:      "Count of store operations that exhausted their busy-retry budget",
		})
		pr.storeOpDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "tasksched",
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of store operations by name and result",
			Buckets:   prom.DefBuckets,
		}, []string{"op", "result"})
		reg.MustRegister(
			pr.fireDuration, pr.fireResults, pr.missedFires,
			pr.pendingSchedules, pr.engineRunning,
			pr.storeBusyRetry, pr.storeBusyExhausted, pr.storeOpDuration,
		)
	})
	return pr
}

// Registry returns the Prometheus registry this recorder registered its
// metrics on, for wiring into an HTTPHandler.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	if p == nil {
		return nil
	}
	return p.reg
}

func (p *PrometheusRecorder) ObserveFireDuration(d time.Duration) {
	if p == nil || p.fireDuration == nil {
		return
	}
	p.fireDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFireResult(result FireResultLabel) {
	if p == nil || p.fireResults == nil {
		return
	}
	p.fireResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncMissedFire() {
	if p == nil || p.missedFires == nil {
		return
	}
	p.missedFires.Inc()
}

func (p *PrometheusRecorder) SetPendingSchedules(n int) {
	if p == nil || p.pendingSchedules == nil {
		return
	}
	p.pendingSchedules.Set(float64(n))
}

func (p *PrometheusRecorder) SetEngineRunning(running bool) {
	if p == nil || p.engineRunning == nil {
		return
	}
	if running {
		p.engineRunning.Set(1)
		return
	}
	p.engineRunning.Set(0)
}

func (p *PrometheusRecorder) IncStoreBusyRetry() {
	if p == nil || p.storeBusyRetry == nil {
		return
	}
	p.storeBusyRetry.Inc()
}

func (p *PrometheusRecorder) IncStoreBusyRetryExhausted() {
	if p == nil || p.storeBusyExhausted == nil {
		return
	}
	p.storeBusyExhausted.Inc()
}

func (p *PrometheusRecorder) ObserveStoreOperationDuration(op string, d time.Duration, success bool) {
	if p == nil || p.storeOpDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.storeOpDuration.WithLabelValues(op, res).Observe(d.Seconds())
}
