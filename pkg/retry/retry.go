// Package retry holds the per-call-context retry policy for upstream APIs.
// The interactive path retries without delay so a live stream stays
// responsive; the batch path tolerates long pauses between attempts.
package retry

import (
	"context"
	"time"
)

type Policy struct {
	Attempts int
	Delay    time.Duration
}

var (
	Interactive = Policy{Attempts: 3}
	Batch       = Policy{Attempts: 3, Delay: 10 * time.Minute}
)

// Do runs fn up to p.Attempts times, sleeping p.Delay between attempts.
// It stops early when fn succeeds, when retryable reports the error as
// permanent, or when ctx is cancelled. The last error is returned.
func (p Policy) Do(ctx context.Context, fn func() error, retryable func(error) bool) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		if p.Delay > 0 {
			t := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
