package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/linkstash/internal/auth"
	"github.com/joestump/linkstash/internal/store"
)

// authHandler provides signup, login, me, and logout.
type authHandler struct {
	users   *store.UserStore
	tokens  *auth.TokenService
	cookies auth.CookiePolicy
	logger  *zap.Logger
}

func registerAuthRoutes(r chi.Router, deps Deps) {
	h := &authHandler{
		users:   deps.Users,
		tokens:  deps.Tokens,
		cookies: deps.Cookies,
		logger:  deps.Logger,
	}
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/me", h.Me)
			r.Post("/logout", h.Logout)
		})
	})
}

// Signup creates the user, then logs them straight in by issuing a token and
// setting the cookie.
// POST /api/auth/signup
func (h *authHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	user, err := h.users.Create(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.issueCookie(w, user); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dataResponse{Success: true, Data: user})
}

// Login verifies credentials and sets a fresh token cookie.
// POST /api/auth/login
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.issueCookie(w, user); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: user})
}

// Me returns the current user, re-read from the store rather than echoed from
// token claims.
// GET /api/auth/me
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, store.ErrNotFound)
		return
	}

	user, err := h.users.GetByID(r.Context(), identity.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: user})
}

// Logout overwrites the token cookie with the cleared sentinel.
// POST /api/auth/logout
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: struct{}{}})
}

func (h *authHandler) issueCookie(w http.ResponseWriter, user *store.User) error {
	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return err
	}
	h.cookies.Set(w, token)
	return nil
}
