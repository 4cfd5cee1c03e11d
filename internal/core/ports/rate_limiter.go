package ports

import (
	"context"
	"time"
)

// RateLimitRepository provides atomic fixed-window counters.
// It abstracts storage (e.g., Redis). Implementation should be concurrency-safe.
type RateLimitRepository interface {
	// IncrementWindow atomically increments the counter for subject in the current window
	// and ensures the key expires after ttl. Returns the updated count and the window start time.
	IncrementWindow(ctx context.Context, subject string, window time.Duration, keyPrefix string, ttl time.Duration) (count int, windowStart time.Time, err error)
}

// RateLimiterService limits write actions per visitor.
// Implementations MUST be safe for concurrent use and fail open on storage errors.
type RateLimiterService interface {
	// Allow consumes one unit for subject.
	// remaining: additional actions allowed in the current window after this one (>=0)
	// limit: configured max actions per window
	// reset: time when the current window resets
	Allow(ctx context.Context, subject string) (allowed bool, remaining int, limit int, reset time.Time, err error)
}
