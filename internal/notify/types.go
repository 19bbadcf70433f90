package notify

import "time"

// ScheduleFired is published by the engine immediately after an Executor
// invocation for a due task completes, successfully or not.
//
// This is an orchestration event used by the process's in-process control
// flow. It is not durable and is not written to the task store.
type ScheduleFired struct {
	TaskID     string
	ScheduleID string
	Due        time.Time
	Succeeded  bool
	Error      string
	FiredAt    time.Time
}

// ScheduleAdvanced is published after the engine computes and persists a
// schedule's next due time following a fire.
type ScheduleAdvanced struct {
	TaskID      string
	ScheduleID  string
	PreviousDue time.Time
	NextDue     *time.Time // the newly persisted due time; the engine always sets it
	AdvancedAt  time.Time
}

// ScheduleDeleted is published when the engine deletes a one-shot schedule
// after it fires. Explicit Unschedule calls and task deletion do not publish
// it.
type ScheduleDeleted struct {
	TaskID     string
	ScheduleID string
	DeletedAt  time.Time
}
