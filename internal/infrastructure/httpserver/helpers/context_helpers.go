package helpers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/blog-platform/internal/core/domain/auth"
)

// MaxListLimit caps the limit query parameter of list endpoints.
const MaxListLimit = 50

func GetEditorClaimsFromContext(c echo.Context) (*auth.EditorClaims, error) {
	claims, ok := GetEditorClaimsRaw(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid editor context")
	}
	return claims, nil
}

// GetVisitorHash returns the visitor hash set by the visitor middleware, or "" for anonymous requests.
func GetVisitorHash(c echo.Context) string {
	h, _ := GetVisitorHashRaw(c)
	return h
}

func GetJWTTokenFromContext(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "empty token")
	}
	return token, nil
}

// GetSlugParam reads the :slug path parameter.
func GetSlugParam(c echo.Context) (string, error) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "slug is required")
	}
	return slug, nil
}

// ParseLimit reads the limit query parameter; absent means 0 so the service default applies.
func ParseLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
	}
	if n > MaxListLimit {
		n = MaxListLimit
	}
	return n, nil
}
