// Package capability holds the shared contract around injected extraction,
// summarization and scoring backends. The pipeline treats every backend as
// untrusted: calls may time out, fail transiently or return malformed output,
// and the error taxonomy here decides what happens next.
package capability

import (
	"context"
	"errors"
	"fmt"
)

// ErrTimeout marks a call that exceeded its per-call deadline.
var ErrTimeout = errors.New("capability call timed out")

// FailureError wraps a transient backend failure (rate limit, connection
// reset, 5xx). Transient failures are retried with backoff before the record
// is degraded.
type FailureError struct {
	Op  string
	Err error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FailureError) Unwrap() error { return e.Err }

// NewFailure wraps err as a transient capability failure.
func NewFailure(op string, err error) error {
	return &FailureError{Op: op, Err: err}
}

// ValidationError marks backend output that failed the expected shape. It is
// coerced or degraded by the caller, never propagated raw.
type ValidationError struct {
	Op     string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid capability output: %s", e.Op, e.Detail)
}

// Retryable reports whether the call should be attempted again. Timeouts and
// transient failures are retryable; validation problems and cancellation are
// not.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var failure *FailureError
	return errors.As(err, &failure)
}
