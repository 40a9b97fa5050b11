package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/linkstash/internal/store"
)

// adminHandler provides the role-gated user listing. Signup only ever creates
// the "user" role; granting "admin" is an operator action against the store.
type adminHandler struct {
	users  *store.UserStore
	logger *zap.Logger
}

func registerAdminRoutes(r chi.Router, deps Deps) {
	h := &adminHandler{users: deps.Users, logger: deps.Logger}
	r.Get("/users", h.ListUsers)
}

// ListUsers returns all registered users.
// GET /api/admin/users
func (h *adminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: users})
}
