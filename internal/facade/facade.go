// Package facade orchestrates every public scheduler verb — create, update,
// delete, get, list, count, schedule, unschedule, execute, start, stop,
// next, running — over a task.Store, an engine.Engine, and an
// executor.Executor. It is the one place callers (the CLI included) need to
// know about; every mutation that touches a schedule re-arms the engine by
// routing the store write through engine.Do.
package facade

import (
	"context"
	"time"

	ferrors "github.com/siegeon/tasksched/internal/foundation/errors"
	"github.com/siegeon/tasksched/internal/pattern"
	"github.com/siegeon/tasksched/internal/task"
)

const (
	defaultListOffset = 0
	defaultListLimit  = 10
)

// Dispatcher is the executor collaborator the facade uses for explicit
// execute calls. executor.Executor satisfies this.
type Dispatcher interface {
	Execute(ctx context.Context, taskID string) (string, error)
}

// Scheduler is the engine collaborator the facade drives. engine.Engine
// satisfies this; tests may substitute a fake.
type Scheduler interface {
	Start(ctx context.Context)
	Stop()
	Running() bool
	NextDue(ctx context.Context) (*time.Time, error)
	Do(ctx context.Context, fn func() error) error
}

// Facade wires a Store, a Scheduler, and a Dispatcher behind the verb set
// operators actually call.
type Facade struct {
	store      task.Store
	engine     Scheduler
	dispatcher Dispatcher
}

// New builds a Facade over store, engine, and dispatcher.
func New(store task.Store, engine Scheduler, dispatcher Dispatcher) *Facade {
	return &Facade{store: store, engine: engine, dispatcher: dispatcher}
}

// CreateInput bundles create's task fields with an optional bundled
// schedule. Due and Repeats are mutually exclusive; both empty means the
// task is created without a schedule.
type CreateInput struct {
	ID          string
	Description string
	Payload     string
	Due         *time.Time
	Repeats     string
	AutoStart   *bool // nil or non-false means auto-start when a schedule is bundled
}

// Create validates id and payload, creates the task, and — if Due or
// Repeats is bundled — schedules it too. Unless AutoStart is explicitly
// false, a bundled schedule starts the engine (if stopped) and re-arms.
func (f *Facade) Create(ctx context.Context, in CreateInput) (*task.Task, error) {
	if !task.ValidID(in.ID) {
		return nil, ferrors.ValidationError("invalid task id").WithContext("id", in.ID).Build()
	}
	if in.Payload == "" {
		return nil, ferrors.ValidationError("payload must not be empty").WithContext("id", in.ID).Build()
	}

	t := task.Task{ID: in.ID, Description: in.Description, Payload: in.Payload}
	hasSchedule := in.Due != nil || in.Repeats != ""

	if hasSchedule {
		if err := f.validateSchedule(in.Due, in.Repeats); err != nil {
			return nil, err
		}
	}

	err := f.engine.Do(ctx, func() error {
		if err := f.store.CreateTask(ctx, t); err != nil {
			return err
		}
		if hasSchedule {
			due, err := resolveDue(in.Due, in.Repeats)
			if err != nil {
				return err
			}
			if _, err := f.store.Schedule(ctx, in.ID, due, in.Repeats); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if hasSchedule && autoStart(in.AutoStart) && !f.engine.Running() {
		f.engine.Start(ctx)
	}

	created, _, err := f.store.GetTask(ctx, in.ID, false)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update changes payload and/or description on an existing task. Neither
// field is validated beyond store-level not-found: id is immutable and not
// accepted here.
func (f *Facade) Update(ctx context.Context, id string, payload, description *string) error {
	return f.engine.Do(ctx, func() error {
		return f.store.UpdateTask(ctx, id, payload, description)
	})
}

// Delete removes a task and its schedules (cascade), then re-arms — the
// deletion may have removed the engine's currently armed row.
func (f *Facade) Delete(ctx context.Context, id string) error {
	return f.engine.Do(ctx, func() error {
		return f.store.DeleteTask(ctx, id)
	})
}

// Get returns a task, optionally with its schedules.
func (f *Facade) Get(ctx context.Context, id string, includeSchedules bool) (*task.Task, []task.Schedule, error) {
	return f.store.GetTask(ctx, id, includeSchedules)
}

// List returns tasks matching filter. offset defaults to 0 and limit to 10
// when either is non-positive, so an explicit 0 limit gets the default page
// size rather than an empty page.
func (f *Facade) List(ctx context.Context, filter task.Filter, offset, limit int) ([]task.Task, error) {
	if offset < 0 {
		offset = defaultListOffset
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return f.store.ListTasks(ctx, filter, offset, limit)
}

// Count returns the total number of tasks matching filter, ignoring paging.
func (f *Facade) Count(ctx context.Context, filter task.Filter) (int, error) {
	return f.store.CountTasks(ctx, filter)
}

// Schedule attaches a new schedule to taskID. Exactly one of due/repeats
// must be present; a bare due must be strictly in the future. Ensures the
// engine is running and re-arms.
func (f *Facade) Schedule(ctx context.Context, taskID string, due *time.Time, repeats string) (int64, error) {
	if err := f.validateSchedule(due, repeats); err != nil {
		return 0, err
	}

	var scheduleID int64
	err := f.engine.Do(ctx, func() error {
		resolvedDue, err := resolveDue(due, repeats)
		if err != nil {
			return err
		}
		scheduleID, err = f.store.Schedule(ctx, taskID, resolvedDue, repeats)
		return err
	})
	if err != nil {
		return 0, err
	}

	if !f.engine.Running() {
		f.engine.Start(ctx)
	}
	return scheduleID, nil
}

// Unschedule removes a schedule and re-arms.
func (f *Facade) Unschedule(ctx context.Context, scheduleID int64) error {
	return f.engine.Do(ctx, func() error {
		return f.store.Unschedule(ctx, scheduleID)
	})
}

// Execute runs taskID's payload directly, bypassing the scheduler. Unlike
// the engine's own fires, failures propagate to the caller.
func (f *Facade) Execute(ctx context.Context, taskID string) (string, error) {
	return f.dispatcher.Execute(ctx, taskID)
}

// Start starts the engine.
func (f *Facade) Start(ctx context.Context) { f.engine.Start(ctx) }

// Stop stops the engine.
func (f *Facade) Stop() { f.engine.Stop() }

// Next returns the due time of the earliest pending schedule, or nil if the
// engine is stopped or nothing is pending.
func (f *Facade) Next(ctx context.Context) (*time.Time, error) { return f.engine.NextDue(ctx) }

// Running reports whether the engine is armed.
func (f *Facade) Running() bool { return f.engine.Running() }

func (f *Facade) validateSchedule(due *time.Time, repeats string) error {
	hasDue := due != nil
	hasRepeats := repeats != ""
	if hasDue == hasRepeats {
		return ferrors.ValidationError("exactly one of due or repeats is required").Build()
	}
	if hasDue && !due.After(time.Now()) {
		return ferrors.ValidationError("due must be strictly in the future").WithContext("due", due.UTC()).Build()
	}
	if hasRepeats {
		if _, err := pattern.Parse(repeats); err != nil {
			return err
		}
	}
	return nil
}

// resolveDue returns the schedule's initial due time: due itself (already
// validated as future) or the pattern's first occurrence from now.
func resolveDue(due *time.Time, repeats string) (time.Time, error) {
	if due != nil {
		return due.UTC(), nil
	}
	p, err := pattern.Parse(repeats)
	if err != nil {
		return time.Time{}, err
	}
	return p.Next(time.Now().UTC()), nil
}

func autoStart(flag *bool) bool {
	return flag == nil || *flag
}
