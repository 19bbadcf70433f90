// Package engine implements the scheduler engine: a single timer armed for
// the earliest due schedule, firing at most one dispatch at a time and
// re-arming for whatever is due next.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	ferrors "github.com/siegeon/tasksched/internal/foundation/errors"
	"github.com/siegeon/tasksched/internal/logfields"
	"github.com/siegeon/tasksched/internal/metrics"
	"github.com/siegeon/tasksched/internal/notify"
	"github.com/siegeon/tasksched/internal/pattern"
	"github.com/siegeon/tasksched/internal/task"
)

const (
	minDelay = 250 * time.Millisecond
	maxDelay = 45 * 24 * time.Hour
)

// Dispatcher runs a task's payload to completion. executor.Executor
// satisfies this interface; the engine depends only on the shape.
type Dispatcher interface {
	Execute(ctx context.Context, taskID string) (string, error)
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithRecorder injects a metrics.Recorder; defaults to metrics.NoopRecorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithBus injects a notify.Bus for ScheduleFired/ScheduleAdvanced/
// ScheduleDeleted events; nil (the default) disables publication.
func WithBus(b *notify.Bus) Option {
	return func(e *Engine) { e.bus = b }
}

// WithLogger overrides the default slog.Default() logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine owns the single pending-fire timer over a task.Store.
type Engine struct {
	mu       sync.Mutex
	running  bool
	timer    *time.Timer
	ctx      context.Context
	cancel   context.CancelFunc
	store    task.Store
	dispatch Dispatcher
	recorder metrics.Recorder
	bus      *notify.Bus
	logger   *slog.Logger
}

// New builds an Engine over store, dispatching fires through dispatch.
func New(store task.Store, dispatch Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		dispatch: dispatch,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start arms the engine if it is not already running. Idempotent. Overdue
// rows fire almost immediately (re-arm clamps their delay to minDelay).
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.running = true
	e.ctx, e.cancel = context.WithCancel(detach(ctx))
	e.recorder.SetEngineRunning(true)
	e.logger.Info("engine started")
	e.rearmLockedWithContext(e.ctx, true)
}

// Stop cancels the pending timer and clears the running flag. Idempotent.
// An in-progress fire holds mu and finishes before Stop returns.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.running = false
	e.stopTimerLocked()
	if e.cancel != nil {
		e.cancel()
	}
	e.recorder.SetEngineRunning(false)
	e.logger.Info("engine stopped")
}

// Running reports whether the engine is armed.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// NextDue returns the due time of the earliest schedule, or nil if the
// engine is not running or no schedule is pending.
func (e *Engine) NextDue(ctx context.Context) (*time.Time, error) {
	e.mu.Lock()
	running := e.running
	e.mu.Unlock()
	if !running {
		return nil, nil
	}
	next, err := e.store.NextDue(ctx)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, nil
	}
	due := next.Due
	return &due, nil
}

// Do runs fn (typically a store mutation) under the engine mutex, then
// re-arms regardless of fn's outcome. fn's error is returned unchanged.
func (e *Engine) Do(ctx context.Context, fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := fn()
	if e.running {
		e.rearmLockedWithContext(ctx, false)
	}
	return err
}

// rearmLockedWithContext cancels any pending timer, loads the earliest due
// schedule and arms a one-shot timer clamped to [minDelay, maxDelay]. A
// store error is logged and a timer is armed to retry after minDelay.
// atStart is true only for the re-arm done from Start: a row already due at
// that point came due while the engine was stopped, not mid-operation, and
// is counted as a missed fire.
func (e *Engine) rearmLockedWithContext(ctx context.Context, atStart bool) {
	e.stopTimerLocked()
	if !e.running {
		return
	}

	next, err := e.store.NextDue(ctx)
	if err != nil {
		e.logger.Error("re-arm: failed to query next due schedule", logfields.Error(err))
		e.recorder.SetPendingSchedules(0)
		// Passing an already-elapsed expectedDue makes onFire query again.
		runCtx, retryDue := e.ctx, time.Now().Add(-minDelay)
		e.timer = time.AfterFunc(minDelay, func() { e.onFire(runCtx, retryDue) })
		return
	}
	if next == nil {
		e.recorder.SetPendingSchedules(0)
		return
	}
	e.recorder.SetPendingSchedules(1)
	if atStart && !next.Due.After(time.Now()) {
		e.recorder.IncMissedFire()
	}

	due := next.Due
	delay := due.Sub(time.Now())
	if delay < minDelay {
		delay = minDelay
	}
	if delay > maxDelay {
		delay = maxDelay
	}

	runCtx := e.ctx
	e.timer = time.AfterFunc(delay, func() { e.onFire(runCtx, due) })
}

// stopTimerLocked cancels e.timer, if any. Must be called with mu held.
func (e *Engine) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// onFire handles a single timer expiry. expectedDue is the due time that
// was armed for; it may be stale if a mutation replaced the earliest row
// while the timer was pending.
func (e *Engine) onFire(ctx context.Context, expectedDue time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}

	now := time.Now()
	if expectedDue.Add(minDelay).After(now) {
		// Long-sleep refresh: the clamp to maxDelay means this wake-up is
		// not yet the real fire.
		e.rearmLockedWithContext(ctx, false)
		return
	}

	next, err := e.store.NextDue(ctx)
	if err != nil {
		e.logger.Error("fire: failed to query next due schedule", logfields.Error(err))
		e.rearmLockedWithContext(ctx, false)
		return
	}
	if next == nil {
		return
	}
	if next.Due.Add(minDelay).After(now) {
		// The earliest row changed under us and isn't actually due yet.
		e.rearmLockedWithContext(ctx, false)
		return
	}

	start := time.Now()
	_, dispatchErr := e.dispatch.Execute(ctx, next.TaskID)
	e.recorder.ObserveFireDuration(time.Since(start))
	e.publishFired(next, dispatchErr)

	if dispatchErr != nil {
		e.logger.Error("scheduled fire failed", logfields.TaskID(next.TaskID), logfields.ScheduleID(formatID(next.ScheduleID)), logfields.Error(dispatchErr))
		if isEvaluatorError(dispatchErr) {
			e.recorder.IncFireResult(metrics.FireResultEvaluator)
		} else {
			e.recorder.IncFireResult(metrics.FireResultStore)
		}
	} else {
		e.recorder.IncFireResult(metrics.FireResultSuccess)
	}

	// Advancement/deletion proceeds regardless of dispatch outcome — a
	// failing evaluation still consumes this occurrence.
	fireEnd := time.Now().UTC()
	if next.Repeats != "" {
		e.advance(ctx, next, fireEnd)
	} else {
		e.deleteOneShot(ctx, next)
	}

	e.rearmLockedWithContext(ctx, false)
}

func (e *Engine) advance(ctx context.Context, next *task.DueRow, at time.Time) {
	p, err := pattern.Parse(next.Repeats)
	if err != nil {
		e.logger.Error("fire: stored pattern no longer parses", logfields.ScheduleID(formatID(next.ScheduleID)), logfields.Pattern(next.Repeats), logfields.Error(err))
		return
	}
	newDue := p.Next(at)
	if err := e.store.AdvanceSchedule(ctx, next.ScheduleID, newDue); err != nil {
		e.logger.Error("fire: failed to advance schedule", logfields.ScheduleID(formatID(next.ScheduleID)), logfields.Error(err))
		return
	}
	e.publishAdvanced(next, newDue)
}

func (e *Engine) deleteOneShot(ctx context.Context, next *task.DueRow) {
	if err := e.store.DeleteSchedule(ctx, next.ScheduleID); err != nil {
		e.logger.Error("fire: failed to delete one-shot schedule", logfields.ScheduleID(formatID(next.ScheduleID)), logfields.Error(err))
		return
	}
	e.publishDeleted(next)
}

func (e *Engine) publishFired(next *task.DueRow, dispatchErr error) {
	if e.bus == nil {
		return
	}
	evt := notify.ScheduleFired{
		TaskID:     next.TaskID,
		ScheduleID: formatID(next.ScheduleID),
		Due:        next.Due,
		Succeeded:  dispatchErr == nil,
		FiredAt:    time.Now(),
	}
	if dispatchErr != nil {
		evt.Error = dispatchErr.Error()
	}
	_ = e.bus.Publish(e.ctx, evt)
}

func (e *Engine) publishAdvanced(next *task.DueRow, newDue time.Time) {
	if e.bus == nil {
		return
	}
	_ = e.bus.Publish(e.ctx, notify.ScheduleAdvanced{
		TaskID:      next.TaskID,
		ScheduleID:  formatID(next.ScheduleID),
		PreviousDue: next.Due,
		NextDue:     &newDue,
		AdvancedAt:  time.Now(),
	})
}

func (e *Engine) publishDeleted(next *task.DueRow) {
	if e.bus == nil {
		return
	}
	_ = e.bus.Publish(e.ctx, notify.ScheduleDeleted{
		TaskID:     next.TaskID,
		ScheduleID: formatID(next.ScheduleID),
		DeletedAt:  time.Now(),
	})
}

func isEvaluatorError(err error) bool {
	var classified *ferrors.ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category() == ferrors.CategoryEvaluator
	}
	return false
}

// detach returns ctx, or context.Background() if ctx is nil.
func detach(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
