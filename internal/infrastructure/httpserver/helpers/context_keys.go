package helpers

import (
	"github.com/labstack/echo/v4"

	"github.com/avatarctic/blog-platform/internal/core/domain/auth"
)

type ctxKey string

const (
	keyEditorClaims ctxKey = "editor_claims"
	keyVisitorHash  ctxKey = "visitor_hash"
)

func SetEditorClaims(c echo.Context, claims *auth.EditorClaims) { c.Set(string(keyEditorClaims), claims) }
func GetEditorClaimsRaw(c echo.Context) (*auth.EditorClaims, bool) {
	v := c.Get(string(keyEditorClaims))
	claims, ok := v.(*auth.EditorClaims)
	return claims, ok && claims != nil
}

func SetVisitorHash(c echo.Context, hash string) { c.Set(string(keyVisitorHash), hash) }
func GetVisitorHashRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyVisitorHash))
	h, ok := v.(string)
	return h, ok && h != ""
}
