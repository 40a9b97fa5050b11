package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/joestump/linkstash/internal/store"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Middleware provides HTTP middleware for authentication and role gating.
type Middleware struct {
	tokens *TokenService
	users  *store.UserStore
}

// NewMiddleware creates a new auth Middleware.
func NewMiddleware(ts *TokenService, us *store.UserStore) *Middleware {
	return &Middleware{tokens: ts, users: us}
}

// RequireAuth extracts the token cookie, verifies it, and attaches the
// embedded Identity to the request context. A missing cookie and a failed
// verification both end the request with 401.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "Not authorized, no token provided")
			return
		}

		identity, err := m.tokens.Verify(cookie.Value)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				writeAuthError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			writeAuthError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole returns a middleware that 403s unless the authenticated user's
// stored role is in allowedRoles. It re-reads the user record so role changes
// apply without re-login. Must be composed after RequireAuth.
func (m *Middleware) RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Not authorized, no token provided")
				return
			}

			user, err := m.users.GetByID(r.Context(), identity.ID)
			if err != nil {
				// Token references a user that no longer resolves.
				writeAuthError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}

			if !slices.Contains(allowedRoles, user.Role) {
				writeAuthError(w, http.StatusForbidden,
					fmt.Sprintf("User role %s is not authorized to access this route", user.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext retrieves the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

// writeAuthError writes the client-facing error envelope directly; the
// middleware runs before any handler-level translation.
func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
