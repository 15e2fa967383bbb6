package generation

import (
	"context"
	"math/rand/v2"
	"time"
)

const (
	rotateDelay   = 500 * time.Millisecond
	backoffBase   = time.Second
	backoffCap    = 10 * time.Second
	backoffJitter = 500 // ms

	unknownProviderCooldown = 30 * time.Minute
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Backoff is the wait before the next attempt: a short fixed delay while
// distinct keys are still untried, then min(1s*2^attempt, 10s) plus up to 500ms jitter.
func Backoff(attempt int, untriedKeys bool, jitter func(n int64) int64) time.Duration {
	if untriedKeys {
		return rotateDelay
	}
	if attempt < 0 {
		attempt = 0
	}
	d := backoffCap
	if attempt < 4 {
		d = backoffBase << attempt
		if d > backoffCap {
			d = backoffCap
		}
	}
	if jitter == nil {
		jitter = rand.Int64N
	}
	return d + time.Duration(jitter(backoffJitter+1))*time.Millisecond
}
