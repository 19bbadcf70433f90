package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	ferrors "github.com/siegeon/tasksched/internal/foundation/errors"
	"github.com/siegeon/tasksched/internal/task"
)

// Schedule inserts a new task_due row and returns its assigned id.
func (s *Store) Schedule(ctx context.Context, taskID string, due time.Time, repeats string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.withBusyRetry(ctx, "schedule", func() error {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO task_due (task, due, repeats) VALUES (?, ?, ?)`,
			taskID, unixSeconds(due), nullableString(repeats))
		if err != nil {
			if isForeignKeyViolation(err) {
				return ferrors.NotFoundError("task not found").WithContext("task_id", taskID).Build()
			}
			return ferrors.StoreError("create schedule").WithContext("task_id", taskID).Build()
		}
		id, err = res.LastInsertId()
		if err != nil {
			return ferrors.StoreError("read inserted schedule id").Build()
		}
		return nil
	})
	return id, err
}

// Unschedule removes a single schedule row by id.
func (s *Store) Unschedule(ctx context.Context, scheduleID int64) error {
	return s.DeleteSchedule(ctx, scheduleID)
}

// NextDue returns the earliest-due schedule row, or nil if none exist.
// Ties on due break on ascending schedule id (ORDER BY due ASC, id ASC).
func (s *Store) NextDue(ctx context.Context) (*task.DueRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, task, due, repeats FROM task_due ORDER BY due ASC, id ASC LIMIT 1`)

	var (
		scheduleID int64
		taskID     string
		due        int64
		repeats    sql.NullString
	)
	if err := row.Scan(&scheduleID, &taskID, &due, &repeats); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, ferrors.StoreError("query next due").Build()
	}

	return &task.DueRow{
		ScheduleID: scheduleID,
		TaskID:     taskID,
		Due:        timeFromUnix(due),
		Repeats:    repeats.String,
	}, nil
}

// AdvanceSchedule updates a schedule's due time after it fires and its
// pattern produces a further occurrence.
func (s *Store) AdvanceSchedule(ctx context.Context, scheduleID int64, newDue time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withBusyRetry(ctx, "advance_schedule", func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE task_due SET due = ? WHERE id = ?`, unixSeconds(newDue), scheduleID)
		if err != nil {
			return ferrors.StoreError("advance schedule").Build()
		}
		return requireScheduleRowsAffected(res, scheduleID)
	})
}

// DeleteSchedule removes a single schedule row, used for one-shot schedules
// after they fire and for explicit Unschedule calls.
func (s *Store) DeleteSchedule(ctx context.Context, scheduleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withBusyRetry(ctx, "delete_schedule", func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM task_due WHERE id = ?`, scheduleID)
		if err != nil {
			return ferrors.StoreError("delete schedule").Build()
		}
		return requireScheduleRowsAffected(res, scheduleID)
	})
}

func scanSchedules(rows *sql.Rows) ([]task.Schedule, error) {
	var schedules []task.Schedule
	for rows.Next() {
		var sc task.Schedule
		var due int64
		var repeats sql.NullString
		if err := rows.Scan(&sc.ID, &sc.TaskID, &due, &repeats); err != nil {
			return nil, ferrors.StoreError("scan schedule").Build()
		}
		sc.Due = timeFromUnix(due)
		sc.Repeats = repeats.String
		schedules = append(schedules, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.StoreError("iterate schedules").Build()
	}
	return schedules, nil
}

func requireScheduleRowsAffected(res sql.Result, scheduleID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return ferrors.StoreError("read rows affected").Build()
	}
	if n == 0 {
		return ferrors.NotFoundError("schedule not found").WithContext("schedule_id", scheduleID).Build()
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") || strings.Contains(msg, "constraint failed: FOREIGN KEY")
}
