package capability

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/career-copilot/internal/util"
)

// RetryPolicy bounds how transient capability failures are retried: up to
// MaxRetries additional attempts with exponential backoff starting at Base.
type RetryPolicy struct {
	MaxRetries int
	Base       time.Duration
}

// Backoff returns the delay before the given retry (1-based). The delay
// doubles per retry.
func (p RetryPolicy) Backoff(retry int) time.Duration {
	if p.Base <= 0 || retry <= 0 {
		return 0
	}
	return p.Base << (retry - 1)
}

// Do invokes fn, retrying per the policy while Retryable(err) holds. The last
// error is returned once attempts are exhausted or the error is permanent.
func (p RetryPolicy) Do(ctx context.Context, logger *zap.Logger, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil || !Retryable(err) || attempt >= p.MaxRetries {
			return err
		}

		delay := p.Backoff(attempt + 1)
		if logger != nil {
			logger.Debug("retrying capability call",
				zap.String("op", op),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", delay),
				zap.Error(err),
			)
		}

		if werr := util.WaitFor(ctx, delay); werr != nil {
			return err
		}
	}
}

// WithTimeout runs fn under a per-call deadline and maps a deadline overrun
// to ErrTimeout so it enters the retry path.
func WithTimeout(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(callCtx)
	if err != nil && callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return ErrTimeout
	}
	return err
}
