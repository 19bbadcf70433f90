// Package executor provides the canonical task execution path: load a task
// by id, hand its payload to an Evaluator, and report the outcome. Both the
// engine's scheduled fires and the facade's explicit execute route through
// Executor so there is exactly one place that knows how to run a task.
package executor

import (
	"context"
	"log/slog"

	ferrors "github.com/siegeon/tasksched/internal/foundation/errors"
	"github.com/siegeon/tasksched/internal/logfields"
	"github.com/siegeon/tasksched/internal/task"
)

// Evaluator is the single hook the executor uses to run a task's payload.
// The payload language is opaque to the scheduler.
type Evaluator interface {
	Evaluate(ctx context.Context, payload string) (string, error)
}

// Executor loads a task and dispatches its payload to an Evaluator.
type Executor struct {
	store     task.Store
	evaluator Evaluator
	logger    *slog.Logger
}

// New builds an Executor over store and evaluator. A nil logger defaults to
// slog.Default().
func New(store task.Store, evaluator Evaluator, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{store: store, evaluator: evaluator, logger: logger}
}

// Execute loads taskID and evaluates its payload, returning the evaluator's
// result. A missing task surfaces a not-found error; a failing evaluation
// surfaces an evaluator error. Callers decide whether to swallow or
// propagate — the engine's scheduled fires swallow, the facade's explicit
// execute propagates.
func (e *Executor) Execute(ctx context.Context, taskID string) (string, error) {
	t, _, err := e.store.GetTask(ctx, taskID, false)
	if err != nil {
		return "", err
	}

	e.logger.Info("executing task", logfields.TaskID(taskID))
	result, err := e.evaluator.Evaluate(ctx, t.Payload)
	if err != nil {
		e.logger.Error("task evaluation failed", logfields.TaskID(taskID), logfields.Error(err))
		return "", ferrors.WrapError(err, ferrors.CategoryEvaluator, "evaluation failed").
			WithContext("task_id", taskID).
			Build()
	}

	e.logger.Info("task evaluation succeeded", logfields.TaskID(taskID))
	return result, nil
}
