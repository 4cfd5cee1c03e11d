package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/blog-platform/internal/core/domain/article"
	"github.com/avatarctic/blog-platform/internal/core/domain/stats"
	"github.com/avatarctic/blog-platform/internal/infrastructure/httpserver/helpers"
)

type statsResponse struct {
	Slug       string `json:"slug"`
	Views      int64  `json:"views"`
	TotalLikes int64  `json:"total_likes"`
	MyLikes    int64  `json:"my_likes"`
}

func newStatsResponse(ps stats.PostStats, visitor string) statsResponse {
	resp := statsResponse{Slug: ps.Slug, Views: ps.Views, TotalLikes: ps.TotalLikes()}
	if visitor != "" {
		resp.MyLikes = ps.LikesByUser[visitor]
	}
	return resp
}

type likeResponse struct {
	TotalLikes  int64 `json:"total_likes"`
	LikesByUser int64 `json:"likes_by_user"`
}

// requirePublicArticle returns 404 unless slug names a published, non-deleted article.
func (s *Server) requirePublicArticle(ctx context.Context, slug string) error {
	a, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "article not found")
		}
		if s.logger != nil {
			s.logger.WithError(err).WithField("slug", slug).Error("failed to load article")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load article")
	}
	if !a.IsPublic() {
		return echo.NewHTTPError(http.StatusNotFound, "article not found")
	}
	return nil
}

func (s *Server) getPopularPosts(c echo.Context) error {
	limit, err := helpers.ParseLimit(c)
	if err != nil {
		return err
	}
	posts, err := s.popularitySvc.GetPopularPosts(c.Request().Context(), limit)
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Error("failed to get popular posts")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get popular posts")
	}
	return c.JSON(http.StatusOK, posts)
}

func (s *Server) getPostStats(c echo.Context) error {
	slug, err := helpers.GetSlugParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := s.requirePublicArticle(ctx, slug); err != nil {
		return err
	}
	ps := s.statsSvc.GetStats(ctx, slug)
	return c.JSON(http.StatusOK, newStatsResponse(ps, helpers.GetVisitorHash(c)))
}

func (s *Server) recordView(c echo.Context) error {
	slug, err := helpers.GetSlugParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := s.requirePublicArticle(ctx, slug); err != nil {
		return err
	}
	ps := s.statsSvc.IncrementViews(ctx, slug)
	return c.JSON(http.StatusOK, newStatsResponse(ps, helpers.GetVisitorHash(c)))
}

func (s *Server) likePost(c echo.Context) error {
	slug, err := helpers.GetSlugParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := s.requirePublicArticle(ctx, slug); err != nil {
		return err
	}
	res, err := s.statsSvc.IncrementLikes(ctx, slug, helpers.GetVisitorHash(c))
	if err != nil {
		if errors.Is(err, stats.ErrVisitorRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, "visitor could not be identified")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record like")
	}
	return c.JSON(http.StatusOK, likeResponse{TotalLikes: res.TotalLikes, LikesByUser: res.LikesByUser})
}

func (s *Server) getRelatedPosts(c echo.Context) error {
	slug, err := helpers.GetSlugParam(c)
	if err != nil {
		return err
	}
	limit, err := helpers.ParseLimit(c)
	if err != nil {
		return err
	}
	related, err := s.relatedSvc.GetRelatedPosts(c.Request().Context(), slug, limit)
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).WithField("slug", slug).Error("failed to get related posts")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get related posts")
	}
	return c.JSON(http.StatusOK, related)
}
