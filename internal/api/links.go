package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/linkstash/internal/auth"
	"github.com/joestump/linkstash/internal/links"
	"github.com/joestump/linkstash/internal/store"
)

// linksHandler provides the link CRUD, search, and tag aggregation endpoints.
// All routes run behind RequireAuth; ownership is enforced by the service.
type linksHandler struct {
	links  *links.Service
	logger *zap.Logger
}

func registerLinkRoutes(r chi.Router, deps Deps) {
	h := &linksHandler{links: deps.Links, logger: deps.Logger}
	r.Route("/links", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/tags", h.Tags)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns one page of the caller's links, filtered by ?search and ?tag.
// GET /api/links
func (h *linksHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	q := r.URL.Query()
	params := store.SearchParams{
		Text: q.Get("search"),
		Tag:  q.Get("tag"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		params.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		params.Limit = limit
	}

	result, err := h.links.List(r.Context(), identity.ID, params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, pageResponse{
		Success:    true,
		Count:      result.Count,
		Page:       result.Page,
		TotalPages: result.TotalPages,
		HasMore:    result.HasMore,
		Data:       result.Links,
	})
}

// Create stores a new link owned by the caller.
// POST /api/links
func (h *linksHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	link, err := h.links.Create(r.Context(), identity.ID, store.LinkFields{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dataResponse{Success: true, Data: link})
}

// Update patches the provided subset of {url, title, description, tags}.
// PATCH /api/links/{id}
func (h *linksHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req updateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	link, err := h.links.Update(r.Context(), identity.ID, chi.URLParam(r, "id"), store.LinkPatch{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: link})
}

// Delete removes the caller's link.
// DELETE /api/links/{id}
func (h *linksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	if err := h.links.Delete(r.Context(), identity.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: struct{}{}})
}

// Tags returns the caller's distinct tags with usage counts.
// GET /api/links/tags
func (h *linksHandler) Tags(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	counts, err := h.links.Tags(r.Context(), identity.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, tagsResponse{Success: true, Count: len(counts), Data: counts})
}
