package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/avatarctic/blog-platform/internal/core/domain/article"
	"github.com/avatarctic/blog-platform/internal/core/ports"
)

// InvalidationService deletes derived cache entries that a content mutation may have made stale.
type InvalidationService struct {
	cache      ports.CacheStore
	articles   ports.ArticleRepository
	popularity ports.PopularityService
	logger     *logrus.Logger
}

func NewInvalidationService(cache ports.CacheStore, articles ports.ArticleRepository, popularity ports.PopularityService, logger *logrus.Logger) *InvalidationService {
	return &InvalidationService{cache: cache, articles: articles, popularity: popularity, logger: logger}
}

// InvalidatePost drops the stats and related-list entries of slug.
func (s *InvalidationService) InvalidatePost(ctx context.Context, slug string) {
	_ = s.cache.Delete(ctx, PostStatsKey(slug), RelatedKey(slug))
}

// InvalidateRelated drops only the related-list entry of slug, keeping its counters.
func (s *InvalidationService) InvalidateRelated(ctx context.Context, slug string) {
	_ = s.cache.Delete(ctx, RelatedKey(slug))
}

// InvalidateRelatedByTags drops the related lists of every article sharing a tag with tags.
// The excluded slug is usually the edited article, whose own list is handled by the caller.
func (s *InvalidationService) InvalidateRelatedByTags(ctx context.Context, tags []string, excludeSlug string) error {
	tags = article.NormalizeTags(tags)
	if len(tags) == 0 {
		return nil
	}
	affected, err := s.articles.ListByOverlappingTags(ctx, tags, excludeSlug)
	if err != nil {
		return fmt.Errorf("failed to find articles sharing tags: %w", err)
	}
	if len(affected) == 0 {
		return nil
	}
	keys := make([]string, 0, len(affected))
	for _, a := range affected {
		keys = append(keys, RelatedKey(a.Slug))
	}
	_ = s.cache.Delete(ctx, keys...)
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"tags": tags, "exclude": excludeSlug, "invalidated": len(keys)}).Debug("related caches invalidated by tag")
	}
	return nil
}

// InvalidatePopularPost removes slug from the ranking and drops its caches; used on delete/unpublish.
func (s *InvalidationService) InvalidatePopularPost(ctx context.Context, slug string) {
	var g errgroup.Group
	g.Go(func() error {
		if s.popularity != nil {
			s.popularity.RemoveFromPopular(ctx, slug)
		}
		return nil
	})
	g.Go(func() error {
		s.InvalidatePost(ctx, slug)
		return nil
	})
	_ = g.Wait()
}

// ArticleSaved runs after an article is created or updated.
func (s *InvalidationService) ArticleSaved(ctx context.Context, change article.Change) error {
	// Edits keep post-stats:{slug}; InvalidatePost would reset view and like counters.
	s.InvalidateRelated(ctx, change.Slug)
	if !change.TagsChanged() {
		return nil
	}
	return s.InvalidateRelatedByTags(ctx, article.UnionTags(change.OldTags, change.NewTags), change.Slug)
}

// ArticleRemoved runs after an article is soft-deleted or unpublished.
func (s *InvalidationService) ArticleRemoved(ctx context.Context, removal article.Removal) error {
	s.InvalidatePopularPost(ctx, removal.Slug)
	if len(removal.Tags) == 0 {
		return nil
	}
	return s.InvalidateRelatedByTags(ctx, removal.Tags, removal.Slug)
}
