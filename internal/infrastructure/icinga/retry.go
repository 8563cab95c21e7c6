package icinga

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// RetryPolicy configures exponential backoff for read-only API queries.
type RetryPolicy struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	MaxRetries   int
}

// DefaultRetryPolicy returns the standard backoff parameters:
// 100ms initial delay, 2x multiplier, 2s cap, 2 retries.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     2 * time.Second,
		MaxRetries:   2,
	}
}

// WithRetry executes operation with exponential backoff on transient errors.
// Non-retryable errors and context cancellation abort immediately.
func (r *RetryPolicy) WithRetry(ctx context.Context, operation func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == r.MaxRetries {
			return lastErr
		}

		select {
		case <-time.After(r.delay(attempt)):
		case <-ctx.Done():
			return fmt.Errorf("canceled during retry backoff: %w", ctx.Err())
		}
	}
	return lastErr
}

func (r *RetryPolicy) delay(attempt int) time.Duration {
	d := float64(r.InitialDelay)
	for i := 0; i < attempt; i++ {
		d *= r.Multiplier
	}
	if time.Duration(d) > r.MaxDelay {
		return r.MaxDelay
	}
	return time.Duration(d)
}

// isRetryable reports whether an error is worth another attempt: server-side
// 5xx responses and network timeouts are, everything else is not.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == 429
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	// Connection-level failures surface as url.Error wrapping net.OpError.
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
