// Package sqlite implements task.Store over modernc.org/sqlite, the
// reference TaskStore collaborator (SPEC_FULL.md §4.3).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/siegeon/tasksched/internal/metrics"
	"github.com/siegeon/tasksched/internal/retry"
	"github.com/siegeon/tasksched/internal/task"

	_ "modernc.org/sqlite"
)

// Store implements task.Store using a local SQLite database.
type Store struct {
	db       *sql.DB
	mu       sync.RWMutex
	busy     retry.Policy
	recorder metrics.Recorder
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithBusyRetryPolicy overrides the default busy-retry backoff policy.
func WithBusyRetryPolicy(p retry.Policy) Option {
	return func(s *Store) { s.busy = p }
}

// WithRecorder injects a metrics.Recorder; defaults to metrics.NoopRecorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// Open creates or opens a SQLite-backed Store at dbPath. Use ":memory:" for
// an ephemeral, process-local database (handy for tests).
func Open(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db, busy: retry.DefaultPolicy(), recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initialize(); err != nil {
		_ = db.Close() // best-effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *Store) initialize() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		hyperlambda TEXT NOT NULL,
		description TEXT,
		created     INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS task_due (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		task    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		due     INTEGER NOT NULL,
		repeats TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_task_due_due ON task_due(due);
	CREATE INDEX IF NOT EXISTS idx_task_due_task ON task_due(task);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// withBusyRetry runs op, retrying on transient SQLITE_BUSY/"database is
// locked" errors per s.busy. This is storage-layer contention handling only
// — distinct from and orthogonal to the engine's no-retry-of-fires rule.
func (s *Store) withBusyRetry(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	var err error
attempts:
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !isBusyError(err) {
			break
		}
		if attempt >= s.busy.MaxRetries {
			s.recorder.IncStoreBusyRetryExhausted()
			break
		}
		s.recorder.IncStoreBusyRetry()
		select {
		case <-time.After(s.busy.Delay(attempt + 1)):
		case <-ctx.Done():
			err = ctx.Err()
			break attempts
		}
	}
	s.recorder.ObserveStoreOperationDuration(op, time.Since(start), err == nil)
	return err
}

// unixSeconds and timeFromUnix convert at the store boundary: due/created
// timestamps are stored as INTEGER Unix UTC seconds, not formatted text, so
// that ORDER BY due ASC sorts chronologically rather than lexicographically.
func unixSeconds(t time.Time) int64 {
	return t.UTC().Unix()
}

func timeFromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

var _ task.Store = (*Store)(nil)
