// Package auth verifies access credentials and resolves them to user ids.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rsinha/huddle/internal/core"
	"github.com/rsinha/huddle/internal/domain"
)

// accessClaims mirrors the access-token shape: the user id travels in the
// _id claim alongside the registered set.
type accessClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

type TokenResolver struct {
	secret []byte
}

func NewTokenResolver(secret string) *TokenResolver {
	return &TokenResolver{secret: []byte(secret)}
}

// Resolve verifies an access token and returns its subject. Signature and
// expiry failures collapse into ErrUnauthorized; callers must not leak the
// distinction to the client.
func (t *TokenResolver) Resolve(credential string) (domain.UserID, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(credential, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrUnauthorized, err)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: token has no subject", core.ErrUnauthorized)
	}
	return domain.UserID(claims.UserID), nil
}

// Sign issues an access token for a user id. Real token issuance lives in the
// auth service; Sign exists for tooling and tests.
func (t *TokenResolver) Sign(id domain.UserID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := accessClaims{
		UserID: string(id),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}
