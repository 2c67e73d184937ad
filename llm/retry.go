package llm

import (
	"context"
	"errors"
	"time"

	"praxis"
)

// RetryConfig holds retry configuration for completion requests.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts per request.
	MaxAttempts int

	// BackoffBase is the initial backoff duration.
	BackoffBase time.Duration

	// BackoffMultiplier is applied to backoff on each retry.
	BackoffMultiplier float64

	// MaxBackoff caps the maximum backoff duration.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns the retry defaults shared by all providers.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}
}

// Backoff computes the delay before the given retry. attempt is 1-based:
// Backoff(1) is the delay after the first failed attempt.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	backoff := c.BackoffBase
	for i := 1; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * c.BackoffMultiplier)
	}
	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}
	return backoff
}

// retryAfterError wraps an error with a provider-supplied delay hint.
type retryAfterError struct {
	err   error
	after time.Duration
}

func (e *retryAfterError) Error() string { return e.err.Error() }
func (e *retryAfterError) Unwrap() error { return e.err }

// withRetryAfter attaches a delay hint to an error.
func withRetryAfter(err error, after time.Duration) error {
	if after <= 0 {
		return err
	}
	return &retryAfterError{err: err, after: after}
}

// retryAfterHint extracts a provider delay hint, or zero if there is none.
func retryAfterHint(err error) time.Duration {
	var e *retryAfterError
	if errors.As(err, &e) {
		return e.after
	}
	return 0
}

// retryable reports whether a failed attempt is worth repeating.
// Malformed output and validation failures never are; only transport
// level failures and provider throttling get retried.
func retryable(err error) bool {
	switch praxis.ErrorCode(err) {
	case praxis.ERATELIMITED, praxis.ETIMEOUT, praxis.EUNAVAILABLE:
		return true
	}
	return false
}

// Retry runs fn under the retry policy. The provider's retry-after
// hint, when present, overrides the computed backoff for that wait.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		wait := cfg.Backoff(attempt)
		if hint := retryAfterHint(err); hint > 0 {
			wait = hint
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return lastErr
}
