// Package errors provides foundational, type-safe error primitives used
// across tasksched to classify scheduler errors: validation, not-found,
// conflict, store-error, evaluator-error (plus parse-error, which is a
// validation error raised at Pattern construction time).
//
// Key features:
//   - ErrorCategory: Broad error classification (validation, not_found, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior (never, immediate, backoff, ...)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter for exit-code presentation
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryNotFound, "task not found").
//		WithContext("task_id", taskID).
//		Build()
package errors
