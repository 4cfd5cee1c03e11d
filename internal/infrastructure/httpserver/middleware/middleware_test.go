package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/blog-platform/internal/application/services"
	"github.com/avatarctic/blog-platform/internal/core/domain/auth"
	"github.com/avatarctic/blog-platform/internal/infrastructure/httpserver/helpers"
	"github.com/avatarctic/blog-platform/internal/infrastructure/httpserver/middleware"
	"github.com/avatarctic/blog-platform/internal/mocks"
)

func serve(t *testing.T, mw []echo.MiddlewareFunc, h echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.POST("/x", h, mw...)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func ok(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

func TestEditorAuth(t *testing.T) {
	tokens := services.NewEditorTokenService("secret", "blog-admin")
	m := middleware.NewEditorAuthMiddleware(tokens, nil)
	var seen *auth.EditorClaims
	h := func(c echo.Context) error {
		seen, _ = helpers.GetEditorClaimsRaw(c)
		return ok(c)
	}

	t.Run("missing header", func(t *testing.T) {
		rec := serve(t, []echo.MiddlewareFunc{m.RequireEditor()}, h, httptest.NewRequest(http.MethodPost, "/x", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := serve(t, []echo.MiddlewareFunc{m.RequireEditor()}, h, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("reader role", func(t *testing.T) {
		tok, err := tokens.IssueToken("r", auth.Role("reader"), time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := serve(t, []echo.MiddlewareFunc{m.RequireEditor()}, h, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("editor", func(t *testing.T) {
		tok, err := tokens.IssueToken("ed", auth.RoleEditor, time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := serve(t, []echo.MiddlewareFunc{m.RequireEditor()}, h, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		require.Equal(t, "ed", seen.Subject)
	})
}

func TestRateLimit_PerVisitor(t *testing.T) {
	reset := time.Unix(1700000060, 0)
	var subjects []string
	limiter := &mocks.RateLimiterServiceMock{AllowFn: func(ctx context.Context, subject string) (bool, int, int, time.Time, error) {
		subjects = append(subjects, subject)
		return len(subjects) <= 1, 0, 1, reset, nil
	}}
	rl := middleware.NewRateLimitMiddleware(limiter, nil)
	visitor := middleware.NewVisitorMiddleware("salt")
	chain := []echo.MiddlewareFunc{visitor.IdentifyVisitor(), rl.PerVisitor()}

	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/x", nil)
		r.RemoteAddr = "203.0.113.7:5555"
		r.Header.Set("User-Agent", "test")
		return r
	}

	first := serve(t, chain, ok, req())
	require.Equal(t, http.StatusNoContent, first.Code)
	require.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1700000060", first.Header().Get("X-RateLimit-Reset"))

	second := serve(t, chain, ok, req())
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.Len(t, subjects, 2)
	require.Equal(t, subjects[0], subjects[1])
	require.Len(t, subjects[0], 32)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &mocks.RateLimiterServiceMock{AllowFn: func(ctx context.Context, subject string) (bool, int, int, time.Time, error) {
		return true, 5, 5, time.Now(), errors.New("redis down")
	}}
	rl := middleware.NewRateLimitMiddleware(limiter, nil)
	visitor := middleware.NewVisitorMiddleware("")
	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	rec := serve(t, []echo.MiddlewareFunc{visitor.IdentifyVisitor(), rl.PerVisitor()}, ok, r)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
