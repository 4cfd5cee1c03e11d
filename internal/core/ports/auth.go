package ports

import (
	"time"

	"github.com/avatarctic/blog-platform/internal/core/domain/auth"
)

// EditorTokenService issues and validates editor hook tokens.
type EditorTokenService interface {
	IssueToken(subject string, role auth.Role, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*auth.EditorClaims, error)
}
