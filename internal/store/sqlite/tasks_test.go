package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "github.com/siegeon/tasksched/internal/foundation/errors"
	"github.com/siegeon/tasksched/internal/task"
)

func TestCreateGetTask(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	err := s.CreateTask(ctx, task.Task{ID: "nightly-report", Payload: "echo hi", Description: "sends a report", Created: created})
	require.NoError(t, err)

	got, schedules, err := s.GetTask(ctx, "nightly-report", true)
	require.NoError(t, err)
	require.Equal(t, "nightly-report", got.ID)
	require.Equal(t, "echo hi", got.Payload)
	require.Equal(t, "sends a report", got.Description)
	require.True(t, got.Created.Equal(created))
	require.Empty(t, schedules)
}

func TestCreateTaskConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTask(ctx, task.Task{ID: "dup", Payload: "x"}))
	err := s.CreateTask(ctx, task.Task{ID: "dup", Payload: "y"})
	require.Error(t, err)

	var classified *ferrors.ClassifiedError
	require.ErrorAs(t, err, &classified)
	require.Equal(t, ferrors.CategoryAlreadyExists, classified.Category())
}

func TestGetTaskNotFound(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.GetTask(context.Background(), "missing", false)
	require.Error(t, err)

	var classified *ferrors.ClassifiedError
	require.ErrorAs(t, err, &classified)
	require.Equal(t, ferrors.CategoryNotFound, classified.Category())
}

func TestUpdateTaskPartial(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateTask(ctx, task.Task{ID: "t1", Payload: "orig", Description: "orig desc"}))

	newPayload := "updated"
	require.NoError(t, s.UpdateTask(ctx, "t1", &newPayload, nil))

	got, _, err := s.GetTask(ctx, "t1", false)
	require.NoError(t, err)
	require.Equal(t, "updated", got.Payload)
	require.Equal(t, "orig desc", got.Description)

	newDesc := "new desc"
	require.NoError(t, s.UpdateTask(ctx, "t1", nil, &newDesc))
	got, _, err = s.GetTask(ctx, "t1", false)
	require.NoError(t, err)
	require.Equal(t, "updated", got.Payload)
	require.Equal(t, "new desc", got.Description)
}

func TestUpdateTaskNotFound(t *testing.T) {
	s := openTestStore(t)
	payload := "x"
	err := s.UpdateTask(context.Background(), "missing", &payload, nil)
	require.Error(t, err)
}

func TestDeleteTaskCascadesSchedules(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateTask(ctx, task.Task{ID: "t1", Payload: "x"}))
	_, err := s.Schedule(ctx, "t1", time.Now().UTC(), "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, "t1"))

	_, _, err = s.GetTask(ctx, "t1", false)
	require.Error(t, err)

	due, err := s.NextDue(ctx)
	require.NoError(t, err)
	require.Nil(t, due)
}

func TestListTasksPrefixFilterAndPaging(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"report-a", "report-b", "backup-a"} {
		require.NoError(t, s.CreateTask(ctx, task.Task{ID: id, Payload: "x", Created: base.Add(time.Duration(i) * time.Hour)}))
	}

	all, err := s.ListTasks(ctx, task.Filter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)

	reports, err := s.ListTasks(ctx, task.Filter{Prefix: "report"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	page, err := s.ListTasks(ctx, task.Filter{}, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "report-b", page[0].ID)

	count, err := s.CountTasks(ctx, task.Filter{Prefix: "backup"})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
