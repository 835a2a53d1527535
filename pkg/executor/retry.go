package executor

import (
	"context"
	"time"
)

// RetryPolicy bounds how often a retriable action failure is re-attempted
// and how long to wait between attempts. It is applied uniformly around any
// handler call, decoupled from the call site.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     []time.Duration
}

// DefaultRetryPolicy retries transient failures up to 3 attempts with
// exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// Delay returns the wait before the given 1-based attempt; attempt 1 has no
// delay. Attempts beyond the schedule reuse its last entry.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 1 || len(p.Backoff) == 0 {
		return 0
	}

	idx := attempt - 2
	if idx >= len(p.Backoff) {
		idx = len(p.Backoff) - 1
	}

	return p.Backoff[idx]
}

// sleep waits for the duration or until the context is done, whichever comes
// first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
