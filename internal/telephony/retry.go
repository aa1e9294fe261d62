package telephony

import (
	"context"
	"net/http"
	"time"
)

// RetryPolicy is a fixed-delay, bounded retry budget for upstream calls.
// It keeps no state between requests; it is not a circuit breaker.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// RateLimitDelay is waited after a 429.
	RateLimitDelay time.Duration
	// ServerErrorDelay is waited after a 5xx.
	ServerErrorDelay time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:       2,
		RateLimitDelay:   2 * time.Second,
		ServerErrorDelay: time.Second,
	}
}

// Delay reports whether status is retryable and how long to wait before retrying.
func (p RetryPolicy) Delay(status int) (time.Duration, bool) {
	switch {
	case status == http.StatusTooManyRequests:
		return p.RateLimitDelay, true
	case status >= 500 && status <= 599:
		return p.ServerErrorDelay, true
	default:
		return 0, false
	}
}

// Allows reports whether another attempt is permitted after `attempt` attempts.
func (p RetryPolicy) Allows(attempt int) bool {
	return attempt <= p.MaxRetries
}

func retryReason(status int) string {
	if status == http.StatusTooManyRequests {
		return "rate_limited"
	}
	return "server_error"
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
