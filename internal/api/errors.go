package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/joestump/linkstash/internal/links"
	"github.com/joestump/linkstash/internal/store"
)

// errorBody is the uniform client-facing error envelope.
type errorBody struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Errors  []store.FieldError `json:"errors,omitempty"`
	Field   string             `json:"field,omitempty"`
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError is the single translation point from internal failure kinds to
// the client envelope. Unexpected errors are logged with full detail and
// surfaced with a generic message only.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Message: "Validation Error",
			Errors:  verr.Fields,
		})
	case errors.Is(err, store.ErrDuplicateEmail):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Message: "email already exists",
			Field:   "email",
		})
	case errors.Is(err, store.ErrDuplicateLink):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Message: "url already exists",
			Field:   "url",
		})
	case errors.Is(err, store.ErrInvalidCredentials):
		// Single message for unknown email and wrong password alike.
		writeJSON(w, http.StatusUnauthorized, errorBody{Message: "Invalid credentials"})
	case errors.Is(err, links.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Message: "Not authorized to access this link"})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Message: "Resource not found"})
	default:
		logger.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: "Internal Server Error"})
	}
}

// badRequest reports a request that could not be decoded at all.
func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Message: message})
}
