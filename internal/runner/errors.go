package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTaskCount is returned before any task is spawned when the
	// configured task population is zero or negative.
	ErrInvalidTaskCount = errors.New("task count must be greater than zero")
	// ErrNoStrategy is returned when Run is called without a strategy.
	ErrNoStrategy = errors.New("lock strategy is required")
	// ErrWorkPanicked wraps a panic recovered from the work unit.
	ErrWorkPanicked = errors.New("work unit panicked")
	// ErrAborted is returned when the run was cut short by its deadline or
	// by cancellation of the caller's context.
	ErrAborted = errors.New("benchmark aborted")
)

// TaskError represents a work unit failure inside one task.
type TaskError struct {
	Task int
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
