package retry

import (
	"context"
	"fmt"
	"time"
)

// BackoffFn returns the pause before the given attempt (1-based).
type BackoffFn func(attempt int) time.Duration

// ExponentialBackoff doubles the base delay on every attempt.
func ExponentialBackoff(base time.Duration) BackoffFn {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt; i++ {
			d *= 2
		}
		return d
	}
}

// NoBackoff retries immediately.
func NoBackoff() BackoffFn {
	return func(int) time.Duration { return 0 }
}

// Policy bounds a retried external call: how many attempts, how long each
// attempt may run, and how long to pause between attempts.
type Policy struct {
	MaxAttempts       int
	Backoff           BackoffFn
	PerAttemptTimeout time.Duration
}

// Do runs fn up to MaxAttempts times. Each attempt gets an independent
// deadline derived from ctx. The last error is returned on exhaustion.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = NoBackoff()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.PerAttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.PerAttemptTimeout)
		}
		err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt < attempts {
			pause := backoff(attempt)
			if pause > 0 {
				select {
				case <-time.After(pause):
				case <-ctx.Done():
					return lastErr
				}
			}
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
