package task

import (
	"context"
	"time"
)

// DueRow is the earliest-due projection NextDue returns: just enough to
// dispatch a fire and advance or delete the schedule afterward.
type DueRow struct {
	ScheduleID int64
	TaskID     string
	Due        time.Time
	Repeats    string // empty when one-shot
}

// Store is the minimal persistent storage surface the engine and facade
// depend on. A conforming implementation may use any relational database;
// internal/store/sqlite is the reference implementation.
//
// All timestamps are stored and returned in UTC. Filtering is prefix match
// on id OR description. Paging honors offset/limit; counts ignore them.
type Store interface {
	CreateTask(ctx context.Context, t Task) error
	UpdateTask(ctx context.Context, id string, payload, description *string) error
	DeleteTask(ctx context.Context, id string) error
	GetTask(ctx context.Context, id string, includeSchedules bool) (*Task, []Schedule, error)
	ListTasks(ctx context.Context, filter Filter, offset, limit int) ([]Task, error)
	CountTasks(ctx context.Context, filter Filter) (int, error)

	Schedule(ctx context.Context, taskID string, due time.Time, repeats string) (int64, error)
	Unschedule(ctx context.Context, scheduleID int64) error
	NextDue(ctx context.Context) (*DueRow, error)
	AdvanceSchedule(ctx context.Context, scheduleID int64, newDue time.Time) error
	DeleteSchedule(ctx context.Context, scheduleID int64) error

	Close() error
}
