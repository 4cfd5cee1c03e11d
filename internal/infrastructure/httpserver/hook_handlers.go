package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/blog-platform/internal/core/domain/article"
	"github.com/avatarctic/blog-platform/internal/infrastructure/httpserver/helpers"
)

func (s *Server) logHook(c echo.Context, hook, slug string) {
	if s.logger == nil {
		return
	}
	fields := logrus.Fields{"hook": hook, "slug": slug}
	if claims, ok := helpers.GetEditorClaimsRaw(c); ok {
		fields["editor"] = claims.Subject
	}
	s.logger.WithFields(fields).Info("content hook applied")
}

func (s *Server) articleSaved(c echo.Context) error {
	var change article.Change
	if err := c.Bind(&change); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	change.Slug = strings.TrimSpace(change.Slug)
	if change.Slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "slug is required")
	}
	if err := s.invalidation.ArticleSaved(c.Request().Context(), change); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).WithField("slug", change.Slug).Error("failed to invalidate after save")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to invalidate caches")
	}
	s.logHook(c, "saved", change.Slug)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) articleRemoved(c echo.Context) error {
	var removal article.Removal
	if err := c.Bind(&removal); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	removal.Slug = strings.TrimSpace(removal.Slug)
	if removal.Slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "slug is required")
	}
	if err := s.invalidation.ArticleRemoved(c.Request().Context(), removal); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).WithField("slug", removal.Slug).Error("failed to invalidate after removal")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to invalidate caches")
	}
	s.logHook(c, "removed", removal.Slug)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) resetPostCache(c echo.Context) error {
	slug, err := helpers.GetSlugParam(c)
	if err != nil {
		return err
	}
	s.invalidation.InvalidatePost(c.Request().Context(), slug)
	s.logHook(c, "reset", slug)
	return c.NoContent(http.StatusNoContent)
}
