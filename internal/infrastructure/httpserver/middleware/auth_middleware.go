package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/blog-platform/internal/core/domain/auth"
	"github.com/avatarctic/blog-platform/internal/core/ports"
	"github.com/avatarctic/blog-platform/internal/infrastructure/httpserver/helpers"
)

type EditorAuthMiddleware struct {
	tokens ports.EditorTokenService
	logger *logrus.Logger
}

func NewEditorAuthMiddleware(tokens ports.EditorTokenService, logger *logrus.Logger) *EditorAuthMiddleware {
	return &EditorAuthMiddleware{tokens: tokens, logger: logger}
}

// RequireEditor validates the bearer token and requires an editor or admin role.
func (m *EditorAuthMiddleware) RequireEditor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := helpers.GetJWTTokenFromContext(c)
			if err != nil {
				return err
			}

			claims, err := m.tokens.ValidateToken(tokenString)
			if err != nil {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path, "error": err.Error()}).Warn("editor token rejected")
				}
				if errors.Is(err, auth.ErrForbidden) {
					return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			helpers.SetEditorClaims(c, claims)
			if m.logger != nil {
				m.logger.WithFields(logrus.Fields{"subject": claims.Subject, "role": claims.Role}).Debug("editor token validated")
			}
			return next(c)
		}
	}
}
