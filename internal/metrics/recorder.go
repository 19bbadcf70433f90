package metrics

import "time"

// FireResultLabel enumerates the outcome categories for a single task fire.
type FireResultLabel string

const (
	FireResultSuccess   FireResultLabel = "success"
	FireResultEvaluator FireResultLabel = "evaluator_error"
	FireResultStore     FireResultLabel = "store_error"
)

// Recorder defines observability hooks for the scheduler engine and store.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe for nil receivers when using the NoopRecorder (allowing
// optional injection).
type Recorder interface {
	ObserveFireDuration(d time.Duration)
	IncFireResult(result FireResultLabel)
	IncMissedFire()
	SetPendingSchedules(n int)
	SetEngineRunning(running bool)
	IncStoreBusyRetry()
	IncStoreBusyRetryExhausted()
	ObserveStoreOperationDuration(op string, d time.Duration, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveFireDuration(time.Duration)                       {}
func (NoopRecorder) IncFireResult(FireResultLabel)                          {}
func (NoopRecorder) IncMissedFire()                                         {}
func (NoopRecorder) SetPendingSchedules(int)                                {}
func (NoopRecorder) SetEngineRunning(bool)                                  {}
func (NoopRecorder) IncStoreBusyRetry()                                     {}
func (NoopRecorder) IncStoreBusyRetryExhausted()                            {}
func (NoopRecorder) ObserveStoreOperationDuration(string, time.Duration, bool) {}
