package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for cache backends.
var (
	// ErrNotFound is returned when a backend is asked for an entry that
	// does not exist and cannot report it as a plain miss.
	ErrNotFound = errors.New("not found")

	// ErrNetwork marks connectivity failures to a remote backend (Redis
	// timeouts, refused connections). Wrap it with Retryable when the
	// operation is safe to repeat.
	ErrNetwork = errors.New("network error")
)

// RetryableError marks an error as transient: the cache operation that
// produced it may be repeated without side effects. Backends wrap their
// network-level failures with Retryable; callers decide whether to retry.
type RetryableError struct{ Err error }

// Retryable wraps err as transient. A nil err stays nil, so backends can
// wrap unconditionally.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the wrapped error's message.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is marked transient anywhere in its chain.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff runs fn up to 3 times, doubling the wait between
// attempts starting at one second. Only errors marked with Retryable
// trigger another attempt; anything else (and context cancellation)
// returns immediately. Used for remote backends such as Redis, where a
// cold connection often succeeds on the second try.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const maxAttempts = 3
	wait := time.Second

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err

		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				wait *= 2
			}
		}
	}
	return lastErr
}
