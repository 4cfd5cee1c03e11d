package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/avatarctic/blog-platform/internal/core/domain/article"
	"github.com/avatarctic/blog-platform/internal/core/domain/stats"
)

// ArticleRepositoryMock is a lightweight mock for ArticleRepository that counts calls.
type ArticleRepositoryMock struct {
	GetBySlugFn             func(ctx context.Context, slug string) (*article.Article, error)
	ListPublishedBySlugsFn  func(ctx context.Context, slugs []string) ([]*article.Article, error)
	ListByOverlappingTagsFn func(ctx context.Context, tags []string, excludeSlug string) ([]article.Candidate, error)
	ListRecentPublishedFn   func(ctx context.Context, limit int) ([]*article.Article, error)

	mu    sync.Mutex
	calls map[string]int
}

func (m *ArticleRepositoryMock) count(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[name]++
}

// Calls returns how many times method was invoked.
func (m *ArticleRepositoryMock) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *ArticleRepositoryMock) GetBySlug(ctx context.Context, slug string) (*article.Article, error) {
	m.count("GetBySlug")
	if m.GetBySlugFn != nil {
		return m.GetBySlugFn(ctx, slug)
	}
	return nil, article.ErrNotFound
}
func (m *ArticleRepositoryMock) ListPublishedBySlugs(ctx context.Context, slugs []string) ([]*article.Article, error) {
	m.count("ListPublishedBySlugs")
	if m.ListPublishedBySlugsFn != nil {
		return m.ListPublishedBySlugsFn(ctx, slugs)
	}
	return nil, nil
}
func (m *ArticleRepositoryMock) ListByOverlappingTags(ctx context.Context, tags []string, excludeSlug string) ([]article.Candidate, error) {
	m.count("ListByOverlappingTags")
	if m.ListByOverlappingTagsFn != nil {
		return m.ListByOverlappingTagsFn(ctx, tags, excludeSlug)
	}
	return nil, nil
}
func (m *ArticleRepositoryMock) ListRecentPublished(ctx context.Context, limit int) ([]*article.Article, error) {
	m.count("ListRecentPublished")
	if m.ListRecentPublishedFn != nil {
		return m.ListRecentPublishedFn(ctx, limit)
	}
	return nil, nil
}

// StatsServiceMock
type StatsServiceMock struct {
	GetStatsFn       func(ctx context.Context, slug string) stats.PostStats
	IncrementViewsFn func(ctx context.Context, slug string) stats.PostStats
	IncrementLikesFn func(ctx context.Context, slug, userHash string) (stats.LikeResult, error)
}

func (m *StatsServiceMock) GetStats(ctx context.Context, slug string) stats.PostStats {
	if m.GetStatsFn != nil {
		return m.GetStatsFn(ctx, slug)
	}
	return stats.New(slug)
}
func (m *StatsServiceMock) IncrementViews(ctx context.Context, slug string) stats.PostStats {
	if m.IncrementViewsFn != nil {
		return m.IncrementViewsFn(ctx, slug)
	}
	return stats.New(slug)
}
func (m *StatsServiceMock) IncrementLikes(ctx context.Context, slug, userHash string) (stats.LikeResult, error) {
	if m.IncrementLikesFn != nil {
		return m.IncrementLikesFn(ctx, slug, userHash)
	}
	return stats.LikeResult{}, nil
}
func (m *StatsServiceMock) GetLikesByUser(ctx context.Context, slug, userHash string) int64 {
	if userHash == "" {
		return 0
	}
	return m.GetStats(ctx, slug).LikesByUser[userHash]
}
func (m *StatsServiceMock) GetTotalLikes(ctx context.Context, slug string) int64 {
	return m.GetStats(ctx, slug).TotalLikes()
}

// PopularityServiceMock
type PopularityServiceMock struct {
	GetPopularPostsFn func(ctx context.Context, limit int) ([]article.PopularPost, error)
	Updated           map[string]int64
	Removed           []string
	mu                sync.Mutex
}

func (m *PopularityServiceMock) GetPopularPosts(ctx context.Context, limit int) ([]article.PopularPost, error) {
	if m.GetPopularPostsFn != nil {
		return m.GetPopularPostsFn(ctx, limit)
	}
	return []article.PopularPost{}, nil
}
func (m *PopularityServiceMock) UpdatePopularScore(ctx context.Context, slug string, views int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Updated == nil {
		m.Updated = map[string]int64{}
	}
	m.Updated[slug] = views
}
func (m *PopularityServiceMock) RemoveFromPopular(ctx context.Context, slug string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removed = append(m.Removed, slug)
}

// RelatedServiceMock
type RelatedServiceMock struct {
	GetRelatedPostsFn func(ctx context.Context, slug string, limit int) ([]article.RelatedPost, error)
}

func (m *RelatedServiceMock) GetRelatedPosts(ctx context.Context, slug string, limit int) ([]article.RelatedPost, error) {
	if m.GetRelatedPostsFn != nil {
		return m.GetRelatedPostsFn(ctx, slug, limit)
	}
	return []article.RelatedPost{}, nil
}

// InvalidationServiceMock records the hooks it receives.
type InvalidationServiceMock struct {
	ArticleSavedFn   func(ctx context.Context, change article.Change) error
	ArticleRemovedFn func(ctx context.Context, removal article.Removal) error
	Reset            []string
}

func (m *InvalidationServiceMock) InvalidatePost(ctx context.Context, slug string) {
	m.Reset = append(m.Reset, slug)
}
func (m *InvalidationServiceMock) InvalidateRelated(ctx context.Context, slug string) {}
func (m *InvalidationServiceMock) InvalidateRelatedByTags(ctx context.Context, tags []string, excludeSlug string) error {
	return nil
}
func (m *InvalidationServiceMock) InvalidatePopularPost(ctx context.Context, slug string) {}
func (m *InvalidationServiceMock) ArticleSaved(ctx context.Context, change article.Change) error {
	if m.ArticleSavedFn != nil {
		return m.ArticleSavedFn(ctx, change)
	}
	return nil
}
func (m *InvalidationServiceMock) ArticleRemoved(ctx context.Context, removal article.Removal) error {
	if m.ArticleRemovedFn != nil {
		return m.ArticleRemovedFn(ctx, removal)
	}
	return nil
}

// RateLimiterServiceMock
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, subject string) (bool, int, int, time.Time, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, subject string) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, subject)
	}
	return true, 1, 1, time.Now(), nil
}

// RateLimitRepositoryMock
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, subject string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, subject string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, subject, window, keyPrefix, ttl)
	}
	return 1, time.Now().Truncate(window), nil
}
