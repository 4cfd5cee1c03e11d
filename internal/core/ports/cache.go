package ports

import (
	"context"
	"time"
)

// Outcome reports how a cache write resolved. A non-nil Err means the write was dropped;
// callers log or count it but continue as if it had succeeded.
type Outcome struct {
	Err error
}

// OK reports whether the write reached the store.
func (o Outcome) OK() bool { return o.Err == nil }

// Lookup is the result of a cache read. Found is false on a miss and on failure;
// Err distinguishes the two for logging only.
type Lookup[T any] struct {
	Value T
	Found bool
	Err   error
}

// Hit reports whether the value came from the store.
func (l Lookup[T]) Hit() bool { return l.Found && l.Err == nil }

// Failed reports whether the read failed rather than missed.
func (l Lookup[T]) Failed() bool { return l.Err != nil }

// ScoredMember is one entry of a sorted-set range.
type ScoredMember struct {
	Member string
	Score  float64
}

// RangeOptions controls SortedSetRange.
type RangeOptions struct {
	// Reverse orders by descending score.
	Reverse bool
	// WithScores attaches scores to the returned members.
	WithScores bool
}

// CacheStore is a fail-open key-value/sorted-set/hash store.
// No method returns a bare error: store failures are carried in Outcome/Lookup so that
// the degrade-to-miss policy is visible at every call site.
type CacheStore interface {
	Get(ctx context.Context, key string) Lookup[[]byte]
	// Set stores value for key; ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) Outcome
	// Delete removes keys; absence is not a failure and zero keys is a no-op.
	Delete(ctx context.Context, keys ...string) Outcome

	SortedSetAdd(ctx context.Context, setKey string, score float64, member string) Outcome
	// SortedSetRaise sets member's score only when it is absent or score is greater.
	SortedSetRaise(ctx context.Context, setKey string, score float64, member string) Outcome
	// SortedSetRange returns members ranked start..stop inclusive.
	SortedSetRange(ctx context.Context, setKey string, start, stop int64, opts RangeOptions) Lookup[[]ScoredMember]
	SortedSetRemove(ctx context.Context, setKey, member string) Outcome

	HashGetAll(ctx context.Context, key string) Lookup[map[string]string]
	// HashIncrBy atomically adds delta to field and returns the new value.
	HashIncrBy(ctx context.Context, key, field string, delta int64) Lookup[int64]

	// IsHealthy pings the store. It is the only operation whose failure is observable.
	IsHealthy(ctx context.Context) bool
}
