package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports a remote resource that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNetwork covers timeouts, refused connections and 5xx responses.
	ErrNetwork = errors.New("network error")
)

// RetryableError marks a failure worth another attempt.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff retries an operation with a doubling delay capped at Max.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	Max      time.Duration
}

// DefaultBackoff is used when connecting to Redis and MongoDB.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, Max: 8 * time.Second}

// Do runs fn until it succeeds, returns an error not marked [Retryable],
// runs out of attempts, or ctx ends.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay
	var lastErr error

	for i := range attempts {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if b.Max > 0 && delay > b.Max {
			delay = b.Max
		}
	}
	return lastErr
}

// RetryWithBackoff runs fn under [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Do(ctx, fn)
}
