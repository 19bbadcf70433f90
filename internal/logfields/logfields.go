// Package logfields provides canonical log field names and helpers for structured logging in tasksched.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
// These are used for structured logging with slog.
const (
	KeyTaskID     = "task_id"
	KeyScheduleID = "schedule_id"
	KeyPattern    = "pattern"
	KeyDue        = "due"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyStatus     = "status"
	KeyAttempt    = "attempt"
	KeyExitCode   = "exit_code"
	KeyError      = "error"
	KeyWorker     = "worker"
	KeyName       = "name"
	KeyCount      = "count"
	KeyAddr       = "addr"
)

// TaskID returns a slog.Attr for the task ID field.
func TaskID(id string) slog.Attr { return slog.String(KeyTaskID, id) }

// ScheduleID returns a slog.Attr for the schedule ID field.
func ScheduleID(id string) slog.Attr { return slog.String(KeyScheduleID, id) }

// Pattern returns a slog.Attr for a pattern's canonical string form.
func Pattern(p string) slog.Attr { return slog.String(KeyPattern, p) }

// Due returns a slog.Attr for a due instant, formatted RFC 3339 in UTC.
func Due(t time.Time) slog.Attr { return slog.String(KeyDue, t.UTC().Format(time.RFC3339)) }

// Stage returns a slog.Attr for a pipeline stage name.
func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }

// DurationMS returns a slog.Attr for a duration in milliseconds.
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Status returns a slog.Attr for a task or schedule status.
func Status(s string) slog.Attr { return slog.String(KeyStatus, s) }

// Attempt returns a slog.Attr for a retry attempt counter.
func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }

// ExitCode returns a slog.Attr for a CLI exit code.
func ExitCode(code int) slog.Attr { return slog.Int(KeyExitCode, code) }

// Worker returns a slog.Attr for a worker or component identifier.
func Worker(id string) slog.Attr { return slog.String(KeyWorker, id) }

// Name returns a slog.Attr for a generic name field.
func Name(n string) slog.Attr { return slog.String(KeyName, n) }

// Count returns a slog.Attr for a generic count field.
func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }

// Addr returns a slog.Attr for a network listen address.
func Addr(addr string) slog.Attr { return slog.String(KeyAddr, addr) }

// Error returns a slog.Attr for an error, or an empty string if nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
