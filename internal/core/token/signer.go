// Package token issues and verifies the signed session tokens that carry
// identity claims between requests. Sessions are stateless: expiry lives in
// the token itself and nothing is recorded server-side per session.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userhub/identity-service/internal/core/domain"
)

// Verification failures are distinguished for diagnostics; callers at the
// transport boundary collapse all three into a single unauthorized response.
var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token has expired")
)

// Claims is the session payload: a point-in-time projection of the user at
// issuance. Subject holds the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

// Signer issues and verifies HMAC-signed session tokens.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer from the server-held secret. An empty secret is
// refused so the process cannot come up signing tokens with a guessable key.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is not configured")
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Issue signs a session token for the user, valid for ttl from now.
func (s *Signer) Issue(user *domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify parses raw, checks the signature and expiry, and returns the claims.
// Failures map to exactly one of ErrTokenMalformed, ErrTokenSignatureInvalid
// or ErrTokenExpired.
func (s *Signer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !t.Valid {
		return nil, ErrTokenSignatureInvalid
	}
	return claims, nil
}
