package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the content role carried by an editor token.
type Role string

const (
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrForbidden    = errors.New("role may not manage content")
)

// EditorClaims are the JWT claims accepted on content-mutation hooks.
type EditorClaims struct {
	Role Role `json:"role"`

	jwt.RegisteredClaims
}

// CanManageContent reports whether the role may trigger cache invalidation.
func (c *EditorClaims) CanManageContent() bool {
	return c.Role == RoleEditor || c.Role == RoleAdmin
}
