package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/avatarctic/blog-platform/internal/infrastructure/httpserver/helpers"
	"github.com/avatarctic/blog-platform/internal/utils"
)

// VisitorMiddleware derives the pseudonymous visitor hash used for likes and rate limiting.
type VisitorMiddleware struct {
	salt string
}

func NewVisitorMiddleware(salt string) *VisitorMiddleware {
	return &VisitorMiddleware{salt: salt}
}

func (m *VisitorMiddleware) IdentifyVisitor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if h := utils.VisitorHash(c.RealIP(), c.Request().UserAgent(), m.salt); h != "" {
				helpers.SetVisitorHash(c, h)
			}
			return next(c)
		}
	}
}
