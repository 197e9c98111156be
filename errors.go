package parsort

import (
	"context"
	"errors"
	"fmt"

	"github.com/lanrat/parsort/pool"
)

// ComparisonError reports that the CompareFunc panicked while a sort was
// ordering elements. Unwrap exposes the panic value when it is an error.
type ComparisonError struct {
	Cause   any    // value passed to panic
	Context string // leaf sort, merge or sequential sort
}

func (e *ComparisonError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("compare failed during %s: %v", e.Context, e.Cause)
	}
	return fmt.Sprintf("compare failed: %v", e.Cause)
}

func (e *ComparisonError) Unwrap() error {
	err, _ := e.Cause.(error)
	return err
}

// NewComparisonError wraps a recovered panic value.
func NewComparisonError(cause any, context string) error {
	return &ComparisonError{Cause: cause, Context: context}
}

// InterruptedError reports that the caller's context was done while a sort was
// waiting on a sub-task. Err is the context error, so errors.Is(err,
// context.Canceled) and errors.Is(err, context.DeadlineExceeded) keep working.
type InterruptedError struct {
	Err error
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("sort interrupted: %v", e.Err)
}

func (e *InterruptedError) Unwrap() error {
	return e.Err
}

// SchedulingError reports that the pool refused work, usually because it was closed.
type SchedulingError struct {
	// Op is the scheduling operation that failed
	Op  string
	Err error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("scheduling error during %s: %v", e.Op, e.Err)
}

func (e *SchedulingError) Unwrap() error {
	return e.Err
}

// ConfigError represents an error in configuration parameters
type ConfigError struct {
	// Field is the name of the configuration field that's invalid
	Field string
	// Value is the invalid value provided
	Value interface{}
	// Reason explains why the value is invalid
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field %s (value: %v): %s", e.Field, e.Value, e.Reason)
}

// IsComparison reports whether err is or wraps a *ComparisonError
func IsComparison(err error) bool {
	var e *ComparisonError
	return errors.As(err, &e)
}

// IsInterrupted reports whether err is or wraps an *InterruptedError
func IsInterrupted(err error) bool {
	var e *InterruptedError
	return errors.As(err, &e)
}

// IsScheduling reports whether err is or wraps a *SchedulingError
func IsScheduling(err error) bool {
	var e *SchedulingError
	return errors.As(err, &e)
}

// classify maps errors coming back from the pool onto the sort error kinds.
// Errors that already carry a kind are returned unchanged.
func classify(ctx context.Context, op string, err error) error {
	if err == nil || IsComparison(err) || IsInterrupted(err) || IsScheduling(err) {
		return err
	}
	if errors.Is(err, pool.ErrClosed) {
		return &SchedulingError{Op: op, Err: err}
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return &InterruptedError{Err: err}
	}
	return err
}

// interrupted returns an *InterruptedError if ctx is done.
func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &InterruptedError{Err: err}
	}
	return nil
}
