package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/avatarctic/blog-platform/internal/core/domain/article"
	"github.com/avatarctic/blog-platform/internal/core/ports"
)

// RelatedConfig groups the tunables of the related-posts calculator.
type RelatedConfig struct {
	Limit         int
	MinSimilarity float64
	TTL           time.Duration
}

// RelatedService ranks articles by Jaccard similarity of their tag sets and caches the result per slug.
type RelatedService struct {
	cache    ports.CacheStore
	articles ports.ArticleRepository
	cfg      RelatedConfig
	logger   *logrus.Logger
	sf       singleflight.Group
}

func NewRelatedService(cache ports.CacheStore, articles ports.ArticleRepository, cfg *RelatedConfig, logger *logrus.Logger) *RelatedService {
	c := RelatedConfig{Limit: 3, MinSimilarity: 0.1, TTL: 24 * time.Hour}
	if cfg != nil {
		if cfg.Limit > 0 {
			c.Limit = cfg.Limit
		}
		if cfg.MinSimilarity >= 0 {
			c.MinSimilarity = cfg.MinSimilarity
		}
		if cfg.TTL > 0 {
			c.TTL = cfg.TTL
		}
	}
	return &RelatedService{cache: cache, articles: articles, cfg: c, logger: logger}
}

// GetRelatedPosts returns at most limit articles similar to slug, most similar first.
func (s *RelatedService) GetRelatedPosts(ctx context.Context, slug string, limit int) ([]article.RelatedPost, error) {
	if limit <= 0 {
		limit = s.cfg.Limit
	}
	if cached, ok := cacheGet[[]article.RelatedPost](s.cache, ctx, RelatedKey(slug), s.logger); ok {
		return truncateRelated(cached, limit), nil
	}

	res, err, _ := s.sf.Do(slug+"|"+strconv.Itoa(limit), func() (any, error) {
		return s.compute(ctx, slug, limit)
	})
	if err != nil {
		return nil, err
	}
	posts, ok := res.([]article.RelatedPost)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return truncateRelated(posts, limit), nil
}

func (s *RelatedService) compute(ctx context.Context, slug string, limit int) ([]article.RelatedPost, error) {
	source, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			return []article.RelatedPost{}, nil
		}
		return nil, fmt.Errorf("failed to load article %q: %w", slug, err)
	}
	// Zero-tag articles have no related content. Not cached: tags may be added later.
	if len(article.NormalizeTags(source.Tags)) == 0 {
		return []article.RelatedPost{}, nil
	}

	candidates, err := s.articles.ListByOverlappingTags(ctx, source.Tags, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load related candidates for %q: %w", slug, err)
	}

	related := s.rank(source.Tags, candidates)
	related = truncateRelated(related, limit)
	cacheSetSilently(s.cache, ctx, RelatedKey(slug), related, s.cfg.TTL, s.logger)
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"slug": slug, "candidates": len(candidates), "related": len(related)}).Debug("related posts computed")
	}
	return related, nil
}

// rank scores candidates, drops those below the threshold and sorts by similarity, keeping store order on ties.
func (s *RelatedService) rank(tags []string, candidates []article.Candidate) []article.RelatedPost {
	related := make([]article.RelatedPost, 0, len(candidates))
	for _, c := range candidates {
		if c.PublishedAt == nil {
			continue
		}
		common, sim := JaccardSimilarity(tags, c.Tags)
		if sim < s.cfg.MinSimilarity {
			continue
		}
		related = append(related, article.RelatedPost{
			Slug:           c.Slug,
			Title:          c.Title,
			Summary:        c.Summary,
			PublishedAt:    c.PublishedAt,
			CommonTagCount: common,
			Similarity:     sim,
		})
	}
	sort.SliceStable(related, func(i, j int) bool { return related[i].Similarity > related[j].Similarity })
	return related
}

func truncateRelated(posts []article.RelatedPost, limit int) []article.RelatedPost {
	if posts == nil {
		return []article.RelatedPost{}
	}
	if limit > 0 && len(posts) > limit {
		return posts[:limit]
	}
	return posts
}
