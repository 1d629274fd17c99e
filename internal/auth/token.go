// Package auth implements session tokens, the resource authorization guard,
// and password hashing.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mwalczyk/socialfeed/internal/domain"
)

// SessionLifetime is how long an issued token stays valid.
const SessionLifetime = 7 * 24 * time.Hour

// TokenCodec issues and verifies HMAC-signed session tokens. The signing
// secret is set once at startup and never changes at runtime.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec creates a codec with the given signing secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue signs a token binding the bearer to accountID, valid for
// SessionLifetime from now.
func (c *TokenCodec) Issue(accountID string) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(SessionLifetime)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks the token's signature and expiry and returns the subject
// account id. Any failure maps to domain.ErrInvalidToken.
func (c *TokenCodec) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now() }))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}
	return claims.Subject, nil
}
