package facade

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "github.com/siegeon/tasksched/internal/foundation/errors"
	"github.com/siegeon/tasksched/internal/task"
)

type fakeStore struct {
	task.Store // nil embed: only the methods below are exercised

	mu                    sync.Mutex
	tasks                 map[string]task.Task
	schedules             map[int64]task.Schedule
	nextID                int64
	lastOffset, lastLimit int
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: make(map[string]task.Task), schedules: make(map[int64]task.Schedule)}
}

func (s *fakeStore) CreateTask(_ context.Context, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; ok {
		return ferrors.ConflictError("task already exists").Build()
	}
	t.Created = time.Now().UTC()
	s.tasks[t.ID] = t
	return nil
}

func (s *fakeStore) UpdateTask(_ context.Context, id string, payload, description *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return ferrors.NotFoundError("task not found").Build()
	}
	if payload != nil {
		t.Payload = *payload
	}
	if description != nil {
		t.Description = *description
	}
	s.tasks[id] = t
	return nil
}

func (s *fakeStore) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return ferrors.NotFoundError("task not found").Build()
	}
	delete(s.tasks, id)
	return nil
}

func (s *fakeStore) GetTask(_ context.Context, id string, _ bool) (*task.Task, []task.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, nil, ferrors.NotFoundError("task not found").Build()
	}
	return &t, nil, nil
}

func (s *fakeStore) ListTasks(_ context.Context, _ task.Filter, offset, limit int) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOffset, s.lastLimit = offset, limit
	return nil, nil
}

func (s *fakeStore) CountTasks(_ context.Context, _ task.Filter) (int, error) {
	return 0, nil
}

func (s *fakeStore) Schedule(_ context.Context, taskID string, due time.Time, repeats string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[taskID]; !ok {
		return 0, ferrors.NotFoundError("task not found").Build()
	}
	s.nextID++
	s.schedules[s.nextID] = task.Schedule{ID: s.nextID, TaskID: taskID, Due: due, Repeats: repeats}
	return s.nextID, nil
}

func (s *fakeStore) Unschedule(_ context.Context, scheduleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[scheduleID]; !ok {
		return ferrors.NotFoundError("schedule not found").Build()
	}
	delete(s.schedules, scheduleID)
	return nil
}

func (s *fakeStore) scheduleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.schedules)
}

type fakeEngine struct {
	mu      sync.Mutex
	running bool
	doCalls int
}

func (e *fakeEngine) Start(_ context.Context) { e.mu.Lock(); defer e.mu.Unlock(); e.running = true }
func (e *fakeEngine) Stop()                   { e.mu.Lock(); defer e.mu.Unlock(); e.running = false }
func (e *fakeEngine) Running() bool           { e.mu.Lock(); defer e.mu.Unlock(); return e.running }
func (e *fakeEngine) NextDue(_ context.Context) (*time.Time, error) {
	return nil, nil
}
func (e *fakeEngine) Do(_ context.Context, fn func() error) error {
	e.mu.Lock()
	e.doCalls++
	e.mu.Unlock()
	return fn()
}

type fakeDispatcher struct {
	result string
	err    error
	calls  []string
}

func (d *fakeDispatcher) Execute(_ context.Context, taskID string) (string, error) {
	d.calls = append(d.calls, taskID)
	return d.result, d.err
}

func TestCreateRejectsInvalidID(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	f := New(store, engine, &fakeDispatcher{})

	_, err := f.Create(context.Background(), CreateInput{ID: "Has-Upper", Payload: "x"})
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryValidation, ferrors.GetCategory(err))
}

func TestCreateRejectsEmptyPayload(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	f := New(store, engine, &fakeDispatcher{})

	_, err := f.Create(context.Background(), CreateInput{ID: "job1", Payload: ""})
	require.Error(t, err)
}

func TestCreateWithoutScheduleDoesNotStartEngine(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	f := New(store, engine, &fakeDispatcher{})

	created, err := f.Create(context.Background(), CreateInput{ID: "job1", Payload: "x"})
	require.NoError(t, err)
	require.Equal(t, "job1", created.ID)
	require.False(t, engine.Running())
	require.Equal(t, 0, store.scheduleCount())
}

func TestCreateWithBundledDueAutoStarts(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	f := New(store, engine, &fakeDispatcher{})

	due := time.Now().Add(time.Hour)
	_, err := f.Create(context.Background(), CreateInput{ID: "job1", Payload: "x", Due: &due})
	require.NoError(t, err)
	require.True(t, engine.Running())
	require.Equal(t, 1, store.scheduleCount())
}

func TestCreateWithBundledScheduleAutoStartFalseDoesNotStart(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	f := New(store, engine, &fakeDispatcher{})

	due := time.Now().Add(time.Hour)
	no := false
	_, err := f.Create(context.Background(), CreateInput{ID: "job1", Payload: "x", Due: &due, AutoStart: &no})
	require.NoError(t, err)
	require.False(t, engine.Running())
	require.Equal(t, 1, store.scheduleCount())
}

func TestCreatePastDueRejected(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	f := New(store, engine, &fakeDispatcher{})

	due := time.Now().Add(-time.Hour)
	_, err := f.Create(context.Background(), CreateInput{ID: "job1", Payload: "x", Due: &due})
	require.Error(t, err)
	require.Equal(t, 0, store.scheduleCount())
}

func TestScheduleRejectsBothDueAndRepeats(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	f := New(store, engine, &fakeDispatcher{})
	require.NoError(t, taskOnly(store, "job1"))

	due := time.Now().Add(time.Hour)
	_, err := f.Schedule(context.Background(), "job1", &due, "1.hours")
	require.Error(t, err)
}

func TestScheduleRejectsNeitherDueNorRepeats(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	f := New(store, engine, &fakeDispatcher{})
	require.NoError(t, taskOnly(store, "job1"))

	_, err := f.Schedule(context.Background(), "job1", nil, "")
	require.Error(t, err)
}

func TestScheduleStartsEngineAndRearms(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	f := New(store, engine, &fakeDispatcher{})
	require.NoError(t, taskOnly(store, "job1"))

	due := time.Now().Add(time.Hour)
	id, err := f.Schedule(context.Background(), "job1", &due, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	require.True(t, engine.Running())
	require.Equal(t, 1, engine.doCalls)
}

func TestScheduleWithRepeatsResolvesInitialDueFromPattern(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	f := New(store, engine, &fakeDispatcher{})
	require.NoError(t, taskOnly(store, "job1"))

	_, err := f.Schedule(context.Background(), "job1", nil, "1.hours")
	require.NoError(t, err)
	require.Equal(t, 1, store.scheduleCount())
	for _, sched := range store.schedules {
		require.True(t, sched.Due.After(time.Now()))
	}
}

func TestUnscheduleRearms(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	f := New(store, engine, &fakeDispatcher{})
	require.NoError(t, taskOnly(store, "job1"))
	due := time.Now().Add(time.Hour)
	id, err := f.Schedule(context.Background(), "job1", &due, "")
	require.NoError(t, err)

	require.NoError(t, f.Unschedule(context.Background(), id))
	require.Equal(t, 0, store.scheduleCount())
	require.Equal(t, 2, engine.doCalls)
}

func TestDeleteRearms(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	f := New(store, engine, &fakeDispatcher{})
	require.NoError(t, taskOnly(store, "job1"))

	require.NoError(t, f.Delete(context.Background(), "job1"))
	require.Equal(t, 1, engine.doCalls)
}

func TestExecutePropagatesEvaluatorError(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	dispatcher := &fakeDispatcher{err: errors.New("boom")}
	f := New(store, engine, dispatcher)

	_, err := f.Execute(context.Background(), "job1")
	require.Error(t, err)
	require.Equal(t, []string{"job1"}, dispatcher.calls)
}

func TestListDefaultsOffsetAndLimit(t *testing.T) {
	store, engine := newFakeStore(), &fakeEngine{}
	f := New(store, engine, &fakeDispatcher{})

	_, err := f.List(context.Background(), task.Filter{}, -1, 0)
	require.NoError(t, err)
	require.Equal(t, defaultListOffset, store.lastOffset)
	require.Equal(t, defaultListLimit, store.lastLimit)
}

func taskOnly(s *fakeStore, id string) error {
	return s.CreateTask(context.Background(), task.Task{ID: id, Payload: "x"})
}
