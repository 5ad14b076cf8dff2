// Package auth verifies bearer tokens minted by the identity provider.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// ErrInvalidToken is returned for malformed, expired or wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid bearer token")

// Claims is the token payload; the subject is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 tokens with a shared secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier creates a verifier for secret. An empty secret yields nil.
func NewVerifier(secret string) *Verifier {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil
	}
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Verify parses token and returns the principal it names.
func (v *Verifier) Verify(token string) (identity.Principal, error) {
	if v == nil {
		return identity.Principal{}, fmt.Errorf("%w: verifier not configured", ErrInvalidToken)
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))
	if err != nil {
		return identity.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return identity.Principal{}, ErrInvalidToken
	}
	return identity.Principal{UserID: claims.Subject, Email: claims.Email}, nil
}

// Issue mints a token for userID; used by local tooling and tests.
func (v *Verifier) Issue(userID, email string, ttl time.Duration) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w: verifier not configured", ErrInvalidToken)
	}
	now := v.now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
