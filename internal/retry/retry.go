package retry

import (
	"context"
	"time"

	apperrors "github.com/civitgrab/civitgrab/internal/errors"
)

// Retrier re-runs an operation on retryable failures. A task makes at
// most MaxRetries+1 attempts; non-retryable failures end it on the
// spot. Between attempts the retrier waits an exponential backoff,
// never zero.
type Retrier struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// New creates a Retrier with the given retry budget and backoff bounds.
func New(maxRetries int, baseDelay, maxDelay time.Duration) *Retrier {
	return &Retrier{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		MaxDelay:   maxDelay,
	}
}

// Do runs op until it succeeds, fails non-retryably, or exhausts the
// retry budget. It returns the number of attempts made and the last
// error. A cancelled context aborts the backoff wait.
func (r *Retrier) Do(ctx context.Context, op func() error) (int, error) {
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			return attempt, nil
		}
		if !apperrors.Retryable(err) {
			return attempt, err
		}
		if attempt > r.MaxRetries {
			return attempt, err
		}
		if werr := r.wait(ctx, attempt); werr != nil {
			return attempt, err
		}
	}
}

func (r *Retrier) wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(r.delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// delay doubles per failed attempt, capped at MaxDelay.
func (r *Retrier) delay(attempt int) time.Duration {
	d := r.BaseDelay << (attempt - 1)
	if d > r.MaxDelay || d <= 0 {
		d = r.MaxDelay
	}
	return d
}
