package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avatarctic/blog-platform/internal/application/services"
	"github.com/avatarctic/blog-platform/internal/core/domain/article"
	impl "github.com/avatarctic/blog-platform/internal/infrastructure/redis"
	"github.com/avatarctic/blog-platform/internal/mocks"
)

type library struct {
	mu       sync.Mutex
	articles map[string]*article.Article
}

func newLibrary(list ...*article.Article) *library {
	l := &library{articles: map[string]*article.Article{}}
	for _, a := range list {
		l.articles[a.Slug] = a
	}
	return l
}

func (l *library) retag(slug string, tags ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.articles[slug].Tags = tags
}

func (l *library) remove(slug string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.articles, slug)
}

func (l *library) repo() *mocks.ArticleRepositoryMock {
	return &mocks.ArticleRepositoryMock{
		GetBySlugFn: func(ctx context.Context, slug string) (*article.Article, error) {
			l.mu.Lock()
			defer l.mu.Unlock()
			if a, ok := l.articles[slug]; ok {
				cp := *a
				return &cp, nil
			}
			return nil, article.ErrNotFound
		},
		ListPublishedBySlugsFn: func(ctx context.Context, slugs []string) ([]*article.Article, error) {
			l.mu.Lock()
			defer l.mu.Unlock()
			var out []*article.Article
			for _, s := range slugs {
				if a, ok := l.articles[s]; ok && a.IsPublic() {
					cp := *a
					out = append(out, &cp)
				}
			}
			return out, nil
		},
		ListByOverlappingTagsFn: func(ctx context.Context, tags []string, exclude string) ([]article.Candidate, error) {
			l.mu.Lock()
			defer l.mu.Unlock()
			want := map[string]bool{}
			for _, t := range tags {
				want[t] = true
			}
			var out []article.Candidate
			for _, slug := range []string{"x", "y", "z", "w"} {
				a, ok := l.articles[slug]
				if !ok || slug == exclude {
					continue
				}
				for _, t := range a.Tags {
					if want[t] {
						out = append(out, article.Candidate{Slug: a.Slug, Title: a.Title, PublishedAt: a.PublishedAt, Tags: a.Tags})
						break
					}
				}
			}
			return out, nil
		},
	}
}

func TestScenario_ContentLifecycle(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t, impl.StoreOptions{Prefix: "blog", OpTimeout: time.Second})

	now := time.Now()
	lib := newLibrary(
		&article.Article{Slug: "x", Title: "X", Tags: []string{"go", "redis"}, PublishedAt: &now},
		&article.Article{Slug: "y", Title: "Y", Tags: []string{"go", "redis"}, PublishedAt: &now},
		&article.Article{Slug: "z", Title: "Z", Tags: []string{"go", "sql"}, PublishedAt: &now},
	)
	repo := lib.repo()

	popularity := services.NewPopularityService(store, repo, 5, nil)
	statsSvc := services.NewStatsService(store, popularity, nil)
	related := services.NewRelatedService(store, repo, nil, nil)
	invalidation := services.NewInvalidationService(store, repo, popularity, nil)

	// views feed the ranking
	for i := 0; i < 3; i++ {
		statsSvc.IncrementViews(ctx, "y")
	}
	statsSvc.IncrementViews(ctx, "x")
	require.Equal(t, "3", mr.HGet("blog:post-stats:y", "views"))

	top, err := popularity.GetPopularPosts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "y", top[0].Slug)
	require.Equal(t, int64(3), top[0].Views)

	// related lists are computed once and cached
	rel, err := related.GetRelatedPosts(ctx, "x", 0)
	require.NoError(t, err)
	require.Equal(t, []string{"y", "z"}, relatedSlugs(rel))
	require.True(t, mr.Exists("blog:related:x"))
	require.Equal(t, 24*time.Hour, mr.TTL("blog:related:x"))
	calls := repo.Calls("ListByOverlappingTags")
	_, err = related.GetRelatedPosts(ctx, "x", 0)
	require.NoError(t, err)
	require.Equal(t, calls, repo.Calls("ListByOverlappingTags"))

	// warm the neighbours, then retag z away from redis
	_, _ = related.GetRelatedPosts(ctx, "y", 0)
	_, _ = related.GetRelatedPosts(ctx, "z", 0)
	lib.retag("z", "sql")
	require.NoError(t, invalidation.ArticleSaved(ctx, article.Change{Slug: "z", OldTags: []string{"go", "sql"}, NewTags: []string{"sql"}}))
	require.False(t, mr.Exists("blog:related:z"))
	require.False(t, mr.Exists("blog:related:x"))
	require.False(t, mr.Exists("blog:related:y"))
	// counters survive edits
	require.True(t, mr.Exists("blog:post-stats:x"))

	rel, err = related.GetRelatedPosts(ctx, "x", 0)
	require.NoError(t, err)
	require.Equal(t, []string{"y"}, relatedSlugs(rel))

	// removal drops the ranking entry and every derived cache
	lib.remove("y")
	require.NoError(t, invalidation.ArticleRemoved(ctx, article.Removal{Slug: "y", Tags: []string{"go", "redis"}}))
	require.False(t, mr.Exists("blog:post-stats:y"))
	require.False(t, mr.Exists("blog:related:x"))
	members, err := mr.ZMembers("blog:popular-posts")
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, members)
}

func TestScenario_CacheOutage(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t, impl.StoreOptions{OpTimeout: 200 * time.Millisecond})

	now := time.Now()
	lib := newLibrary(
		&article.Article{Slug: "x", Tags: []string{"go"}, PublishedAt: &now},
		&article.Article{Slug: "y", Tags: []string{"go"}, PublishedAt: &now},
	)
	repo := lib.repo()
	repo.ListRecentPublishedFn = func(ctx context.Context, limit int) ([]*article.Article, error) {
		return []*article.Article{{Slug: "y", PublishedAt: &now}, {Slug: "x", PublishedAt: &now}}, nil
	}

	popularity := services.NewPopularityService(store, repo, 5, nil)
	statsSvc := services.NewStatsService(store, popularity, nil)
	related := services.NewRelatedService(store, repo, nil, nil)
	mr.Close()

	st := statsSvc.IncrementViews(ctx, "x")
	require.Equal(t, int64(1), st.Views)

	top, err := popularity.GetPopularPosts(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "y", top[0].Slug)
	require.Equal(t, int64(0), top[0].Views)

	rel, err := related.GetRelatedPosts(ctx, "x", 0)
	require.NoError(t, err)
	require.Equal(t, []string{"y"}, relatedSlugs(rel))

	require.False(t, store.IsHealthy(ctx))
}

func relatedSlugs(posts []article.RelatedPost) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Slug)
	}
	return out
}
