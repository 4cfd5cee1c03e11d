package ports

import (
	"context"

	"github.com/avatarctic/blog-platform/internal/core/domain/article"
	"github.com/avatarctic/blog-platform/internal/core/domain/stats"
)

// StatsService tracks per-article views and likes.
type StatsService interface {
	GetStats(ctx context.Context, slug string) stats.PostStats
	IncrementViews(ctx context.Context, slug string) stats.PostStats
	IncrementLikes(ctx context.Context, slug, userHash string) (stats.LikeResult, error)
	GetLikesByUser(ctx context.Context, slug, userHash string) int64
	GetTotalLikes(ctx context.Context, slug string) int64
}

// PopularityService ranks articles by all-time views.
type PopularityService interface {
	GetPopularPosts(ctx context.Context, limit int) ([]article.PopularPost, error)
	UpdatePopularScore(ctx context.Context, slug string, views int64)
	RemoveFromPopular(ctx context.Context, slug string)
}

// RelatedService computes tag-similar articles.
type RelatedService interface {
	GetRelatedPosts(ctx context.Context, slug string, limit int) ([]article.RelatedPost, error)
}

// InvalidationService drops derived cache entries after content mutations.
type InvalidationService interface {
	InvalidatePost(ctx context.Context, slug string)
	InvalidateRelated(ctx context.Context, slug string)
	InvalidateRelatedByTags(ctx context.Context, tags []string, excludeSlug string) error
	InvalidatePopularPost(ctx context.Context, slug string)

	// ArticleSaved applies the create/update invalidation contract.
	ArticleSaved(ctx context.Context, change article.Change) error
	// ArticleRemoved applies the delete/unpublish invalidation contract.
	ArticleRemoved(ctx context.Context, removal article.Removal) error
}
