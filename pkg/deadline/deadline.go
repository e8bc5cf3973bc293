// Package deadline runs calls against external dependencies with an upper
// bound on how long the caller waits for them.
package deadline

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "download-service/pkg/errors"
)

// ErrTimeout is returned when the call did not finish before its deadline.
var ErrTimeout = apperrors.ErrTimeout

// Call invokes fn with a context bounded by timeout and stops waiting once the
// deadline passes, even if fn ignores its context. A non-positive timeout
// only inherits the parent's deadline.
//
// A timeout yields an error matching ErrTimeout. Cancellation of the parent
// yields the parent's context error.
func Call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	type result struct {
		value T
		err   error
	}

	// Buffered so an abandoned fn can still finish and exit.
	done := make(chan result, 1)
	go func() {
		value, err := fn(callCtx)
		done <- result{value: value, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, fmt.Errorf("%w after %s: %w", ErrTimeout, timeout, r.err)
		}
		return r.value, r.err
	case <-callCtx.Done():
		if parentErr := ctx.Err(); parentErr != nil {
			return zero, parentErr
		}
		return zero, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}
