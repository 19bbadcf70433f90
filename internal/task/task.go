// Package task holds the scheduler's domain model — Task and Schedule — and
// the Store collaborator interface a persistence layer must satisfy.
package task

import (
	"regexp"
	"time"
)

// idPattern enforces the task id charset: a-z, 0-9, '.', '-', '_'.
var idPattern = regexp.MustCompile(`^[a-z0-9._-]+$`)

// ValidID reports whether id uses only the allowed charset and is non-empty.
// The facade enforces this before any store call; id is otherwise opaque and
// case-sensitive as stored.
func ValidID(id string) bool {
	return id != "" && idPattern.MatchString(id)
}

// Task is the durable unit of work a Schedule fires against.
//
// id is immutable once created; payload is the evaluator's opaque source
// form and must be non-empty on create.
type Task struct {
	ID          string
	Description string
	Payload     string
	Created     time.Time
}

// Schedule binds a Task to a future fire time, optionally recurring.
//
// Repeats, when non-empty, is a pattern string (see internal/pattern) kept
// as the caller wrote it: the facade validates it but does not rewrite it to
// the pattern's canonical Value. When empty the schedule is one-shot and is
// deleted by the engine after it fires.
type Schedule struct {
	ID      int64
	TaskID  string
	Due     time.Time
	Repeats string
}

// Filter narrows ListTasks/CountTasks to tasks whose id or description has
// the given prefix. An empty Filter matches every task.
type Filter struct {
	Prefix string
}
