// Package retry provides bounded retries with exponential backoff for
// flaky external operations (the render CLI, HTTP health probes).
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"time"
)

// permanentError marks an error that must not be retried (for example an
// HTTP 4xx from a health endpoint, or a CLI usage error).
type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent wraps err so WithBackoff stops retrying and returns the
// underlying error immediately. Returns nil if err is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err is marked permanent.
func IsPermanent(err error) bool {
	var perm *permanentError
	return errors.As(err, &perm)
}

// WithBackoff retries fn with exponential backoff and jitter.
//
// maxRetries is the number of retry attempts after the first try
// (0 = try exactly once). initialDelay is the delay before the first
// retry; each subsequent retry doubles it, with ±25% jitter.
//
// Errors wrapped with Permanent stop the loop immediately and the
// underlying error is returned. Context cancellation aborts the wait
// between attempts and returns ctx.Err().
func WithBackoff(ctx context.Context, maxRetries int, initialDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var permErr *permanentError
		if errors.As(err, &permErr) {
			return permErr.Unwrap()
		}

		// No delay after the final attempt.
		if attempt == maxRetries {
			break
		}

		if err := Sleep(ctx, backoffDelay(initialDelay, attempt)); err != nil {
			return err
		}
	}

	return lastErr
}

// backoffDelay computes initialDelay * 2^attempt with ±25% jitter.
func backoffDelay(initialDelay time.Duration, attempt int) time.Duration {
	delay := time.Duration(float64(initialDelay) * math.Pow(2, float64(attempt)))

	halfDelay := int64(delay) / 2
	if halfDelay <= 0 {
		halfDelay = 1
	}
	jitterBig, err := rand.Int(rand.Reader, big.NewInt(halfDelay))
	if err != nil {
		jitterBig = big.NewInt(0)
	}
	jitter := time.Duration(jitterBig.Int64())
	return delay - delay/4 + jitter
}

// Sleep waits for d, respecting context cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
