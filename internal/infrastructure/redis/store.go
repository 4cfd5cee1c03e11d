package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/avatarctic/blog-platform/internal/core/ports"
	"github.com/avatarctic/blog-platform/internal/infrastructure/metrics"
)

const breakerName = "cache-store"

var _ ports.CacheStore = (*Store)(nil)

// BreakerSettings configures the circuit breaker in front of Redis.
type BreakerSettings struct {
	// MinRequests is the sample size required before the failure ratio is considered.
	MinRequests uint32
	// FailureRatio opens the circuit once reached.
	FailureRatio float64
	// Interval resets closed-state counts.
	Interval time.Duration
	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenMax is the number of probe requests allowed while half-open.
	HalfOpenMax uint32
}

// StoreOptions groups Store construction parameters.
type StoreOptions struct {
	// Prefix namespaces keys as "prefix:key"; empty keeps keys as-is.
	Prefix string
	// OpTimeout bounds every call; zero disables the per-call deadline.
	OpTimeout time.Duration
	Breaker   BreakerSettings
}

// Store implements ports.CacheStore on Redis. Every failure, including timeouts and
// an open circuit, is logged and reported in the returned Outcome/Lookup; nothing panics
// or propagates.
type Store struct {
	r         redis.Cmdable
	prefix    string
	opTimeout time.Duration
	cb        *gobreaker.CircuitBreaker[any]
	logger    *logrus.Logger
}

// NewStore wraps r with namespacing, per-call deadlines and a circuit breaker.
func NewStore(r redis.Cmdable, opts StoreOptions, logger *logrus.Logger) *Store {
	b := opts.Breaker
	if b.MinRequests == 0 {
		b.MinRequests = 10
	}
	if b.FailureRatio <= 0 {
		b.FailureRatio = 0.6
	}
	if b.HalfOpenMax == 0 {
		b.HalfOpenMax = 3
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: b.HalfOpenMax,
		Interval:    b.Interval,
		Timeout:     b.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < b.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= b.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if logger != nil {
				logger.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("cache store circuit breaker state changed")
			}
		},
		// A miss is a healthy answer, and a caller that went away says nothing about Redis.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled)
		},
	})

	return &Store{r: r, prefix: opts.Prefix, opTimeout: opts.OpTimeout, cb: cb, logger: logger}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (s *Store) namespaced(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// exec runs fn through the breaker under the per-call deadline and records the outcome.
// The returned error is nil on success, redis.Nil on a miss and the failure otherwise.
// A caller whose context is already done is answered without touching the breaker.
func (s *Store) exec(ctx context.Context, op, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		metrics.CacheOperations.WithLabelValues(op, "canceled").Inc()
		return nil, err
	}
	if s.opTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opTimeout)
		defer cancel()
	}

	start := time.Now()
	v, err := s.cb.Execute(func() (any, error) { return fn(ctx) })
	metrics.CacheOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.CacheOperations.WithLabelValues(op, "ok").Inc()
	case errors.Is(err, redis.Nil):
		metrics.CacheOperations.WithLabelValues(op, "miss").Inc()
	case errors.Is(err, context.Canceled):
		metrics.CacheOperations.WithLabelValues(op, "canceled").Inc()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CacheOperations.WithLabelValues(op, "rejected").Inc()
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"operation": op, "key": key}).WithError(err).Debug("cache store call rejected by circuit breaker")
		}
	default:
		metrics.CacheOperations.WithLabelValues(op, "error").Inc()
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"operation": op, "key": key}).WithError(err).Warn("cache store call failed")
		}
	}
	return v, err
}

func (s *Store) Get(ctx context.Context, key string) ports.Lookup[[]byte] {
	ns := s.namespaced(key)
	v, err := s.exec(ctx, "get", ns, func(ctx context.Context) (any, error) {
		return s.r.Get(ctx, ns).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return ports.Lookup[[]byte]{}
	}
	if err != nil {
		return ports.Lookup[[]byte]{Err: err}
	}
	b, _ := v.([]byte)
	return ports.Lookup[[]byte]{Value: b, Found: true}
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) ports.Outcome {
	if ttl < 0 {
		ttl = 0
	}
	ns := s.namespaced(key)
	_, err := s.exec(ctx, "set", ns, func(ctx context.Context) (any, error) {
		return nil, s.r.Set(ctx, ns, value, ttl).Err()
	})
	return ports.Outcome{Err: err}
}

func (s *Store) Delete(ctx context.Context, keys ...string) ports.Outcome {
	if len(keys) == 0 {
		return ports.Outcome{}
	}
	ns := make([]string, len(keys))
	for i, k := range keys {
		ns[i] = s.namespaced(k)
	}
	_, err := s.exec(ctx, "del", ns[0], func(ctx context.Context) (any, error) {
		return nil, s.r.Del(ctx, ns...).Err()
	})
	return ports.Outcome{Err: err}
}

func (s *Store) SortedSetAdd(ctx context.Context, setKey string, score float64, member string) ports.Outcome {
	ns := s.namespaced(setKey)
	_, err := s.exec(ctx, "zadd", ns, func(ctx context.Context) (any, error) {
		return nil, s.r.ZAdd(ctx, ns, &redis.Z{Score: score, Member: member}).Err()
	})
	return ports.Outcome{Err: err}
}

// SortedSetRaise uses ZADD GT, which requires Redis 6.2 or later.
func (s *Store) SortedSetRaise(ctx context.Context, setKey string, score float64, member string) ports.Outcome {
	ns := s.namespaced(setKey)
	_, err := s.exec(ctx, "zadd_gt", ns, func(ctx context.Context) (any, error) {
		return nil, s.r.ZAddArgs(ctx, ns, redis.ZAddArgs{GT: true, Members: []redis.Z{{Score: score, Member: member}}}).Err()
	})
	return ports.Outcome{Err: err}
}

func (s *Store) SortedSetRange(ctx context.Context, setKey string, start, stop int64, opts ports.RangeOptions) ports.Lookup[[]ports.ScoredMember] {
	ns := s.namespaced(setKey)
	v, err := s.exec(ctx, "zrange", ns, func(ctx context.Context) (any, error) {
		if opts.WithScores {
			var zs []redis.Z
			var err error
			if opts.Reverse {
				zs, err = s.r.ZRevRangeWithScores(ctx, ns, start, stop).Result()
			} else {
				zs, err = s.r.ZRangeWithScores(ctx, ns, start, stop).Result()
			}
			if err != nil {
				return nil, err
			}
			out := make([]ports.ScoredMember, 0, len(zs))
			for _, z := range zs {
				member, _ := z.Member.(string)
				out = append(out, ports.ScoredMember{Member: member, Score: z.Score})
			}
			return out, nil
		}
		var members []string
		var err error
		if opts.Reverse {
			members, err = s.r.ZRevRange(ctx, ns, start, stop).Result()
		} else {
			members, err = s.r.ZRange(ctx, ns, start, stop).Result()
		}
		if err != nil {
			return nil, err
		}
		out := make([]ports.ScoredMember, 0, len(members))
		for _, m := range members {
			out = append(out, ports.ScoredMember{Member: m})
		}
		return out, nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return ports.Lookup[[]ports.ScoredMember]{Err: err}
	}
	out, _ := v.([]ports.ScoredMember)
	if out == nil {
		out = []ports.ScoredMember{}
	}
	return ports.Lookup[[]ports.ScoredMember]{Value: out, Found: len(out) > 0}
}

func (s *Store) SortedSetRemove(ctx context.Context, setKey, member string) ports.Outcome {
	ns := s.namespaced(setKey)
	_, err := s.exec(ctx, "zrem", ns, func(ctx context.Context) (any, error) {
		return nil, s.r.ZRem(ctx, ns, member).Err()
	})
	return ports.Outcome{Err: err}
}

func (s *Store) HashGetAll(ctx context.Context, key string) ports.Lookup[map[string]string] {
	ns := s.namespaced(key)
	v, err := s.exec(ctx, "hgetall", ns, func(ctx context.Context) (any, error) {
		return s.r.HGetAll(ctx, ns).Result()
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return ports.Lookup[map[string]string]{Err: err}
	}
	h, _ := v.(map[string]string)
	if h == nil {
		h = map[string]string{}
	}
	// HGETALL answers a missing key with an empty map.
	return ports.Lookup[map[string]string]{Value: h, Found: len(h) > 0}
}

func (s *Store) HashIncrBy(ctx context.Context, key, field string, delta int64) ports.Lookup[int64] {
	ns := s.namespaced(key)
	v, err := s.exec(ctx, "hincrby", ns, func(ctx context.Context) (any, error) {
		return s.r.HIncrBy(ctx, ns, field, delta).Result()
	})
	if err != nil {
		return ports.Lookup[int64]{Err: err}
	}
	n, _ := v.(int64)
	return ports.Lookup[int64]{Value: n, Found: true}
}

// IsHealthy pings Redis directly, bypassing the breaker so that recovery is visible
// while the circuit is open.
func (s *Store) IsHealthy(ctx context.Context) bool {
	if s.opTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opTimeout)
		defer cancel()
	}
	if err := s.r.Ping(ctx).Err(); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("cache store ping failed")
		}
		return false
	}
	return true
}

// BreakerState reports the current circuit state, e.g. for health output.
func (s *Store) BreakerState() string {
	return s.cb.State().String()
}
