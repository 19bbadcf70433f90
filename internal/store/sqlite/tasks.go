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

// CreateTask inserts a new task row. Returns a conflict error if id exists.
func (s *Store) CreateTask(ctx context.Context, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := t.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}

	return s.withBusyRetry(ctx, "create_task", func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO tasks (id, hyperlambda, description, created) VALUES (?, ?, ?, ?)`,
			t.ID, t.Payload, nullableString(t.Description), unixSeconds(created))
		if err != nil {
			if isUniqueViolation(err) {
				return ferrors.ConflictError("task already exists").
					WithContext("task_id", t.ID).Build()
			}
			return ferrors.StoreError("create task").WithContext("task_id", t.ID).Build()
		}
		return nil
	})
}

// UpdateTask updates payload and/or description for an existing task. A nil
// pointer leaves the corresponding column unchanged.
func (s *Store) UpdateTask(ctx context.Context, id string, payload, description *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withBusyRetry(ctx, "update_task", func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE tasks SET
				hyperlambda = COALESCE(?, hyperlambda),
				description = CASE WHEN ? THEN ? ELSE description END
			 WHERE id = ?`,
			payload, description != nil, nullableStringPtr(description), id)
		if err != nil {
			return ferrors.StoreError("update task").WithContext("task_id", id).Build()
		}
		return requireRowsAffected(res, id)
	})
}

// DeleteTask removes a task and (via ON DELETE CASCADE) all of its schedules.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withBusyRetry(ctx, "delete_task", func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return ferrors.StoreError("delete task").WithContext("task_id", id).Build()
		}
		return requireRowsAffected(res, id)
	})
}

// GetTask loads a task by id, optionally with its schedules.
func (s *Store) GetTask(ctx context.Context, id string, includeSchedules bool) (*task.Task, []task.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t task.Task
	var description sql.NullString
	var created int64

	row := s.db.QueryRowContext(ctx,
		`SELECT id, hyperlambda, description, created FROM tasks WHERE id = ?`, id)
	if err := row.Scan(&t.ID, &t.Payload, &description, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ferrors.NotFoundError("task not found").WithContext("task_id", id).Build()
		}
		return nil, nil, ferrors.StoreError("get task").WithContext("task_id", id).Build()
	}
	t.Description = description.String
	t.Created = timeFromUnix(created)

	if !includeSchedules {
		return &t, nil, nil
	}

	schedules, err := s.schedulesForTask(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return &t, schedules, nil
}

func (s *Store) schedulesForTask(ctx context.Context, taskID string) ([]task.Schedule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task, due, repeats FROM task_due WHERE task = ? ORDER BY due ASC, id ASC`, taskID)
	if err != nil {
		return nil, ferrors.StoreError("list schedules").WithContext("task_id", taskID).Build()
	}
	defer rows.Close()
	return scanSchedules(rows)
}

// ListTasks returns tasks matching filter, ordered by created ascending.
func (s *Store) ListTasks(ctx context.Context, filter task.Filter, offset, limit int) ([]task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, hyperlambda, description, created FROM tasks`
	args := []any{}
	if filter.Prefix != "" {
		query += ` WHERE id LIKE ? OR description LIKE ?`
		like := filter.Prefix + "%"
		args = append(args, like, like)
	}
	query += ` ORDER BY created ASC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ferrors.StoreError("list tasks").Build()
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var description sql.NullString
		var created int64
		if err := rows.Scan(&t.ID, &t.Payload, &description, &created); err != nil {
			return nil, ferrors.StoreError("scan task").Build()
		}
		t.Description = description.String
		t.Created = timeFromUnix(created)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.StoreError("iterate tasks").Build()
	}
	return tasks, nil
}

// CountTasks counts tasks matching filter, ignoring offset/limit.
func (s *Store) CountTasks(ctx context.Context, filter task.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT COUNT(*) FROM tasks`
	args := []any{}
	if filter.Prefix != "" {
		query += ` WHERE id LIKE ? OR description LIKE ?`
		like := filter.Prefix + "%"
		args = append(args, like, like)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, ferrors.StoreError("count tasks").Build()
	}
	return count, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableStringPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func requireRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return ferrors.StoreError("read rows affected").WithContext("id", id).Build()
	}
	if n == 0 {
		return ferrors.NotFoundError("not found").WithContext("id", id).Build()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed: UNIQUE")
}
