package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/blog-platform/internal/core/domain/article"
	"github.com/avatarctic/blog-platform/internal/core/ports"
)

// PopularityService ranks articles by all-time view count using a global sorted set.
// When the set is empty or the store is down it falls back to the most recent articles.
type PopularityService struct {
	cache        ports.CacheStore
	articles     ports.ArticleRepository
	defaultLimit int
	logger       *logrus.Logger
}

func NewPopularityService(cache ports.CacheStore, articles ports.ArticleRepository, defaultLimit int, logger *logrus.Logger) *PopularityService {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	return &PopularityService{cache: cache, articles: articles, defaultLimit: defaultLimit, logger: logger}
}

// GetPopularPosts returns at most limit articles ordered by views descending.
// Content-store errors are returned; cache-store errors degrade to the recency fallback.
func (s *PopularityService) GetPopularPosts(ctx context.Context, limit int) ([]article.PopularPost, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	ranked := s.cache.SortedSetRange(ctx, PopularPostsKey, 0, int64(limit-1), ports.RangeOptions{Reverse: true, WithScores: true})
	if !ranked.Hit() || len(ranked.Value) == 0 {
		return s.recentFallback(ctx, limit)
	}

	slugs := make([]string, 0, len(ranked.Value))
	scores := make(map[string]int64, len(ranked.Value))
	for _, m := range ranked.Value {
		slugs = append(slugs, m.Member)
		scores[m.Member] = int64(m.Score)
	}

	found, err := s.articles.ListPublishedBySlugs(ctx, slugs)
	if err != nil {
		return nil, fmt.Errorf("failed to load popular articles: %w", err)
	}

	posts := make([]article.PopularPost, 0, len(found))
	for _, a := range found {
		if a == nil {
			continue
		}
		views, ok := scores[a.Slug]
		if !ok {
			continue
		}
		posts = append(posts, article.PopularPost{Article: *a, Views: views})
	}
	// The content store returns rows in its own order and silently omits deleted slugs.
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Views > posts[j].Views })
	if len(posts) > limit {
		posts = posts[:limit]
	}
	if s.logger != nil && len(posts) < len(slugs) {
		s.logger.WithFields(logrus.Fields{"ranked": len(slugs), "resolved": len(posts)}).Debug("dropped ranked slugs missing from content store")
	}
	return posts, nil
}

func (s *PopularityService) recentFallback(ctx context.Context, limit int) ([]article.PopularPost, error) {
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"limit": limit}).Debug("popularity ranking empty; using recent articles")
	}
	recent, err := s.articles.ListRecentPublished(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent articles: %w", err)
	}
	posts := make([]article.PopularPost, 0, len(recent))
	for _, a := range recent {
		if a == nil {
			continue
		}
		posts = append(posts, article.PopularPost{Article: *a, Views: 0})
		if len(posts) == limit {
			break
		}
	}
	return posts, nil
}

// UpdatePopularScore sets the absolute score of slug to views. A stale count from a
// concurrent view never lowers an existing score; RemoveFromPopular resets it.
func (s *PopularityService) UpdatePopularScore(ctx context.Context, slug string, views int64) {
	_ = s.cache.SortedSetRaise(ctx, PopularPostsKey, float64(views), slug)
}

func (s *PopularityService) RemoveFromPopular(ctx context.Context, slug string) {
	_ = s.cache.SortedSetRemove(ctx, PopularPostsKey, slug)
}
