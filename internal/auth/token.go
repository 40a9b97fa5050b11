// Package auth implements token issuance and verification plus the request
// middleware that turns a cookie into an authenticated identity.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when the request carries no token cookie.
	ErrNoToken = errors.New("no token provided")

	// ErrTokenInvalid is returned for a malformed token or a bad signature.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned when the token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Identity is the authenticated principal attached to the request context.
type Identity struct {
	ID    string
	Email string
}

// Claims is the signed token payload: user identity plus issued-at/expiry.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email"`
}

// TokenService issues and verifies signed, time-limited bearer tokens. The
// secret and lifetime are fixed at construction; rotating the secret
// invalidates all outstanding tokens, which is the only revocation mechanism
// there is.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// Option customizes a TokenService.
type Option func(*TokenService)

// WithClock replaces the time source, so tests can simulate expiry without
// real delays.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a TokenService signing with secret for the given
// lifetime.
func NewTokenService(secret string, lifetime time.Duration, opts ...Option) *TokenService {
	s := &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue produces a signed token embedding the user's id and email, expiring
// one lifetime from now.
func (s *TokenService) Issue(userID, email string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
		UserID: userID,
		Email:  email,
	})
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the embedded identity.
// Expiry failures surface as ErrTokenExpired; everything else (bad signature,
// malformed structure, wrong algorithm) collapses to ErrTokenInvalid.
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenInvalid
	}
	if !token.Valid {
		return Identity{}, ErrTokenInvalid
	}
	return Identity{ID: claims.UserID, Email: claims.Email}, nil
}
