package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avatarctic/blog-platform/internal/core/domain/auth"
)

// EditorTokenService signs and verifies HS256 editor tokens.
type EditorTokenService struct {
	secret []byte
	issuer string
}

func NewEditorTokenService(secret, issuer string) *EditorTokenService {
	return &EditorTokenService{secret: []byte(secret), issuer: issuer}
}

// IssueToken returns a signed token for subject valid for ttl.
func (s *EditorTokenService) IssueToken(subject string, role auth.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &auth.EditorClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString and checks signature, expiry, issuer and role.
func (s *EditorTokenService) ValidateToken(tokenString string) (*auth.EditorClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &auth.EditorClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC (prevent alg confusion)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*auth.EditorClaims)
	if !ok || !token.Valid {
		return nil, auth.ErrInvalidToken
	}
	if !claims.CanManageContent() {
		return nil, auth.ErrForbidden
	}
	return claims, nil
}
