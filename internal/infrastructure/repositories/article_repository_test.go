package repositories_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/blog-platform/internal/core/domain/article"
	"github.com/avatarctic/blog-platform/internal/infrastructure/db"
	"github.com/avatarctic/blog-platform/internal/infrastructure/repositories"
)

var articleCols = []string{"id", "slug", "title", "summary", "tags", "published_at", "deleted_at"}

func newArticleRepo(t *testing.T) (*repositories.ArticleRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	repo := repositories.NewArticleRepository(&db.Database{DB: sqlx.NewDb(mockDB, "sqlmock")}, nil)
	return repo.(*repositories.ArticleRepository), mock
}

func TestArticleRepository_GetBySlug(t *testing.T) {
	repo, mock := newArticleRepo(t)
	id := uuid.New()
	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM articles WHERE slug = \$1 AND deleted_at IS NULL`).
		WithArgs("go-generics").
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow(id.String(), "go-generics", "Generics", "intro", "{go,generics}", published, nil))

	a, err := repo.GetBySlug(context.Background(), "go-generics")
	require.NoError(t, err)
	require.Equal(t, id, a.ID)
	require.Equal(t, []string{"go", "generics"}, a.Tags)
	require.NotNil(t, a.PublishedAt)
	require.True(t, a.PublishedAt.Equal(published))
	require.True(t, a.IsPublic())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepository_GetBySlug_NotFound(t *testing.T) {
	repo, mock := newArticleRepo(t)
	mock.ExpectQuery(`FROM articles WHERE slug = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBySlug(context.Background(), "missing")
	require.ErrorIs(t, err, article.ErrNotFound)
}

func TestArticleRepository_GetBySlug_WrapsDriverErrors(t *testing.T) {
	repo, mock := newArticleRepo(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(`FROM articles`).WillReturnError(boom)

	_, err := repo.GetBySlug(context.Background(), "x")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, article.ErrNotFound)
}

func TestArticleRepository_ListPublishedBySlugs(t *testing.T) {
	repo, mock := newArticleRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`WHERE slug = ANY\(\$1\) AND published_at IS NOT NULL AND deleted_at IS NULL`).
		WithArgs(pq.Array([]string{"a", "b"})).
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow(uuid.NewString(), "b", "B", "", "{}", now, nil))

	out, err := repo.ListPublishedBySlugs(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "b", out[0].Slug)
	require.Empty(t, out[0].Tags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepository_ListPublishedBySlugs_EmptyInputSkipsQuery(t *testing.T) {
	repo, mock := newArticleRepo(t)
	out, err := repo.ListPublishedBySlugs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepository_ListByOverlappingTags(t *testing.T) {
	repo, mock := newArticleRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`WHERE tags && \$1 AND slug <> \$2 AND deleted_at IS NULL`).
		WithArgs(pq.Array([]string{"go", "db"}), "x").
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow(uuid.NewString(), "y", "Y", "sy", "{go,db}", now, nil).
			AddRow(uuid.NewString(), "draft", "D", "", "{go}", nil, nil))

	out, err := repo.ListByOverlappingTags(context.Background(), []string{"go", "db"}, "x")
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "y", out[0].Slug)
	require.Equal(t, []string{"go", "db"}, out[0].Tags)
	require.Nil(t, out[1].PublishedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepository_ListRecentPublished(t *testing.T) {
	repo, mock := newArticleRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`ORDER BY published_at DESC LIMIT \$1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow(uuid.NewString(), "new", "N", "", "{}", now, nil).
			AddRow(uuid.NewString(), "old", "O", "", "{}", now.Add(-time.Hour), nil))

	out, err := repo.ListRecentPublished(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, "new", out[0].Slug)
	require.Equal(t, "old", out[1].Slug)
	require.NoError(t, mock.ExpectationsWereMet())
}
