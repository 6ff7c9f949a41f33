// Package retry provides a small reusable retry policy for collaborators that
// talk to flaky externals (the database gateway at connect time, network
// downloads). Attempts, delay, and backoff growth are fixed per policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// Delay is the wait before the second attempt.
	Delay time.Duration
	// Factor multiplies the delay after each failed attempt. A factor of 0
	// or 1 keeps the delay fixed.
	Factor float64
	// MaxDelay caps the grown delay. Zero means no cap.
	MaxDelay time.Duration
}

// Fixed returns a policy retrying up to attempts times with a constant delay.
func Fixed(attempts int, delay time.Duration) Policy {
	return Policy{MaxAttempts: attempts, Delay: delay}
}

// Do runs op until it succeeds, the attempts are exhausted, or the context is
// canceled. The last error is returned wrapped with the attempt count.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := p.Delay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if p.Factor > 1 {
			delay = time.Duration(float64(delay) * p.Factor)
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
