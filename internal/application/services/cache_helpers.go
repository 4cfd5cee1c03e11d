package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/blog-platform/internal/core/ports"
)

// Cache key shapes shared by the stats, popularity, related and invalidation services.
const (
	postStatsPrefix = "post-stats:"
	relatedPrefix   = "related:"
	// PopularPostsKey is the global sorted set ranking slugs by views.
	PopularPostsKey = "popular-posts"
)

// PostStatsKey returns the stats hash key for slug.
func PostStatsKey(slug string) string { return postStatsPrefix + slug }

// RelatedKey returns the related-posts list key for slug.
func RelatedKey(slug string) string { return relatedPrefix + slug }

func cacheSetSilently(c ports.CacheStore, ctx context.Context, key string, v any, ttl time.Duration, logger *logrus.Logger) {
	b, err := json.Marshal(v)
	if err != nil {
		if logger != nil {
			logger.WithFields(logrus.Fields{"key": key}).WithError(err).Warn("failed to encode cache value")
		}
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.CacheStore, ctx context.Context, key string, logger *logrus.Logger) (T, bool) {
	var v T
	res := c.Get(ctx, key)
	if !res.Hit() {
		return v, false
	}
	if err := json.Unmarshal(res.Value, &v); err != nil {
		// A corrupt entry behaves like a miss and is overwritten on the next compute.
		if logger != nil {
			logger.WithFields(logrus.Fields{"key": key}).WithError(err).Warn("failed to decode cache value")
		}
		return v, false
	}
	return v, true
}
