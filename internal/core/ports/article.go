package ports

import (
	"context"

	"github.com/avatarctic/blog-platform/internal/core/domain/article"
)

// ArticleRepository is the read side of the relational content store.
// All queries exclude soft-deleted rows.
type ArticleRepository interface {
	// GetBySlug returns article.ErrNotFound when the slug is unknown or deleted.
	GetBySlug(ctx context.Context, slug string) (*article.Article, error)
	// ListPublishedBySlugs returns published articles among slugs, in no particular order.
	ListPublishedBySlugs(ctx context.Context, slugs []string) ([]*article.Article, error)
	// ListByOverlappingTags returns articles sharing at least one tag, excluding excludeSlug when set.
	ListByOverlappingTags(ctx context.Context, tags []string, excludeSlug string) ([]article.Candidate, error)
	// ListRecentPublished returns the newest published articles first.
	ListRecentPublished(ctx context.Context, limit int) ([]*article.Article, error)
}
