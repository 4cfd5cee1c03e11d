package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/blog-platform/internal/core/domain/article"
	"github.com/avatarctic/blog-platform/internal/core/ports"
	"github.com/avatarctic/blog-platform/internal/infrastructure/db"
)

// ArticleRepository reads articles from PostgreSQL. Tags live in a text[] column.
type ArticleRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(database *db.Database, logger *logrus.Logger) ports.ArticleRepository {
	return &ArticleRepository{
		db:     database,
		logger: logger,
	}
}

type articleRow struct {
	ID          uuid.UUID      `db:"id"`
	Slug        string         `db:"slug"`
	Title       string         `db:"title"`
	Summary     string         `db:"summary"`
	Tags        pq.StringArray `db:"tags"`
	PublishedAt *time.Time     `db:"published_at"`
	DeletedAt   *time.Time     `db:"deleted_at"`
}

func (r articleRow) toDomain() *article.Article {
	return &article.Article{
		ID:          r.ID,
		Slug:        r.Slug,
		Title:       r.Title,
		Summary:     r.Summary,
		Tags:        []string(r.Tags),
		PublishedAt: r.PublishedAt,
		DeletedAt:   r.DeletedAt,
	}
}

const articleColumns = `id, slug, title, summary, tags, published_at, deleted_at`

// GetBySlug retrieves a non-deleted article by slug
func (r *ArticleRepository) GetBySlug(ctx context.Context, slug string) (*article.Article, error) {
	var row articleRow
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE slug = $1 AND deleted_at IS NULL`

	if err := r.db.DB.GetContext(ctx, &row, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, article.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return row.toDomain(), nil
}

// ListPublishedBySlugs retrieves the published articles among slugs
func (r *ArticleRepository) ListPublishedBySlugs(ctx context.Context, slugs []string) ([]*article.Article, error) {
	if len(slugs) == 0 {
		return []*article.Article{}, nil
	}
	var rows []articleRow
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE slug = ANY($1) AND published_at IS NOT NULL AND deleted_at IS NULL`

	if err := r.db.DB.SelectContext(ctx, &rows, query, pq.Array(slugs)); err != nil {
		return nil, fmt.Errorf("failed to list articles by slug: %w", err)
	}
	return toArticles(rows), nil
}

// ListByOverlappingTags retrieves articles sharing at least one tag with tags
func (r *ArticleRepository) ListByOverlappingTags(ctx context.Context, tags []string, excludeSlug string) ([]article.Candidate, error) {
	if len(tags) == 0 {
		return []article.Candidate{}, nil
	}
	var rows []articleRow
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE tags && $1 AND slug <> $2 AND deleted_at IS NULL
		ORDER BY published_at DESC NULLS LAST, slug`

	if err := r.db.DB.SelectContext(ctx, &rows, query, pq.Array(tags), excludeSlug); err != nil {
		return nil, fmt.Errorf("failed to list articles by tag: %w", err)
	}
	out := make([]article.Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, article.Candidate{
			Slug:        row.Slug,
			Title:       row.Title,
			Summary:     row.Summary,
			PublishedAt: row.PublishedAt,
			Tags:        []string(row.Tags),
		})
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"tags": len(tags), "candidates": len(out)}).Debug("tag overlap query")
	}
	return out, nil
}

// ListRecentPublished retrieves the newest published articles
func (r *ArticleRepository) ListRecentPublished(ctx context.Context, limit int) ([]*article.Article, error) {
	if limit <= 0 {
		return []*article.Article{}, nil
	}
	var rows []articleRow
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE published_at IS NOT NULL AND deleted_at IS NULL
		ORDER BY published_at DESC
		LIMIT $1`

	if err := r.db.DB.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent articles: %w", err)
	}
	return toArticles(rows), nil
}

func toArticles(rows []articleRow) []*article.Article {
	out := make([]*article.Article, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
