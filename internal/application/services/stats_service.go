package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/avatarctic/blog-platform/internal/core/domain/stats"
	"github.com/avatarctic/blog-platform/internal/core/ports"
)

// StatsService keeps view and like counters in a per-article store hash.
// Counters are mutated with the store's atomic increment, so concurrent views never lose updates.
type StatsService struct {
	cache      ports.CacheStore
	popularity ports.PopularityService
	logger     *logrus.Logger
}

func NewStatsService(cache ports.CacheStore, popularity ports.PopularityService, logger *logrus.Logger) *StatsService {
	return &StatsService{cache: cache, popularity: popularity, logger: logger}
}

// GetStats returns the counters for slug, creating an empty record on first access.
func (s *StatsService) GetStats(ctx context.Context, slug string) stats.PostStats {
	key := PostStatsKey(slug)
	res := s.cache.HashGetAll(ctx, key)
	if res.Hit() && len(res.Value) > 0 {
		return s.decode(slug, res.Value)
	}
	if res.Failed() {
		return stats.New(slug)
	}
	// HINCRBY by zero creates the hash without clobbering a concurrent writer.
	_ = s.cache.HashIncrBy(ctx, key, stats.ViewsField, 0)
	return stats.New(slug)
}

// IncrementViews records one view and mirrors the new count into the popularity ranking.
func (s *StatsService) IncrementViews(ctx context.Context, slug string) stats.PostStats {
	key := PostStatsKey(slug)
	incr := s.cache.HashIncrBy(ctx, key, stats.ViewsField, 1)

	var snapshot ports.Lookup[map[string]string]
	var g errgroup.Group
	if incr.Hit() && s.popularity != nil {
		views := incr.Value
		g.Go(func() error {
			s.popularity.UpdatePopularScore(ctx, slug, views)
			return nil
		})
	}
	g.Go(func() error {
		snapshot = s.cache.HashGetAll(ctx, key)
		return nil
	})
	_ = g.Wait()

	current := stats.New(slug)
	if snapshot.Hit() {
		current = s.decode(slug, snapshot.Value)
	}
	if incr.Hit() {
		current.Views = incr.Value
	} else {
		// Store unavailable: report a best-effort count and leave the ranking untouched.
		current.Views++
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"slug": slug}).Debug("view not recorded; cache store unavailable")
		}
	}
	return current
}

// IncrementLikes records one like from userHash and returns the new totals.
func (s *StatsService) IncrementLikes(ctx context.Context, slug, userHash string) (stats.LikeResult, error) {
	if userHash == "" {
		return stats.LikeResult{}, stats.ErrVisitorRequired
	}
	key := PostStatsKey(slug)
	incr := s.cache.HashIncrBy(ctx, key, stats.LikeField(userHash), 1)
	snapshot := s.cache.HashGetAll(ctx, key)

	current := stats.New(slug)
	if snapshot.Hit() {
		current = s.decode(slug, snapshot.Value)
	}
	if incr.Hit() {
		current.LikesByUser[userHash] = incr.Value
	} else {
		current.LikesByUser[userHash]++
	}
	return stats.LikeResult{
		TotalLikes:  current.TotalLikes(),
		LikesByUser: current.LikesByUser[userHash],
	}, nil
}

// GetLikesByUser returns how many times userHash liked slug. Anonymous callers get 0 without a store round-trip.
func (s *StatsService) GetLikesByUser(ctx context.Context, slug, userHash string) int64 {
	if userHash == "" {
		return 0
	}
	return s.GetStats(ctx, slug).LikesByUser[userHash]
}

func (s *StatsService) GetTotalLikes(ctx context.Context, slug string) int64 {
	return s.GetStats(ctx, slug).TotalLikes()
}

func (s *StatsService) decode(slug string, fields map[string]string) stats.PostStats {
	st, skipped := stats.FromHash(slug, fields)
	if len(skipped) > 0 && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"slug": slug, "fields": skipped}).Warn("ignoring malformed stats fields")
	}
	return st
}
