package metrics

import "time"

type testRecorder struct {
	fireDurations    int
	fireResults      map[FireResultLabel]int
	missedFires      int
	pendingSchedules int
	running          bool
	busyRetries      int
	busyExhausted    int
	storeOps         map[string]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{fireResults: map[FireResultLabel]int{}, storeOps: map[string]int{}}
}

func (t *testRecorder) ObserveFireDuration(time.Duration) { t.fireDurations++ }
func (t *testRecorder) IncFireResult(result FireResultLabel) {
	t.fireResults[result]++
}
func (t *testRecorder) IncMissedFire()             { t.missedFires++ }
func (t *testRecorder) SetPendingSchedules(n int)  { t.pendingSchedules = n }
func (t *testRecorder) SetEngineRunning(running bool) { t.running = running }
func (t *testRecorder) IncStoreBusyRetry()         { t.busyRetries++ }
func (t *testRecorder) IncStoreBusyRetryExhausted() { t.busyExhausted++ }
func (t *testRecorder) ObserveStoreOperationDuration(op string, _ time.Duration, _ bool) {
	t.storeOps[op]++
}

// compile-time assertion that testRecorder and NoopRecorder satisfy Recorder.
var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
)
