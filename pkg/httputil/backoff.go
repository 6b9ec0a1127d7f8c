package httputil

import (
	"context"
	"errors"
	"time"
)

// maxDelay caps the wait between two attempts.
const maxDelay = 30 * time.Second

// RetryableError marks a transient failure: connection errors, 5xx and 429.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// retry calls fn until it succeeds, returns a permanent error or the
// client's attempts are used up. The wait doubles after each transient
// failure, up to maxDelay.
func (c *Client) retry(ctx context.Context, fn func(attempt int) error) error {
	attempts := max(c.Attempts, 1)
	wait := c.Delay

	var err error
	for attempt := 1; ; attempt++ {
		err = fn(attempt)
		var transient *RetryableError
		if err == nil || !errors.As(err, &transient) || attempt == attempts {
			return err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait = min(wait*2, maxDelay)
	}
}
