// Package api wires the HTTP surface: routing, request decoding, and the
// translation of internal failures into the client-facing JSON envelope.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/joestump/linkstash/internal/auth"
	"github.com/joestump/linkstash/internal/links"
	"github.com/joestump/linkstash/internal/store"
)

// Deps holds all dependencies required to build the router.
type Deps struct {
	Logger         *zap.Logger
	DB             *sqlx.DB
	AuthMiddleware *auth.Middleware
	Tokens         *auth.TokenService
	Cookies        auth.CookiePolicy
	Users          *store.UserStore
	Links          *links.Service
}

// NewRouter creates the application router. Auth endpoints live under
// /api/auth, link endpoints under /api/links behind RequireAuth, and the
// admin listing under /api/admin behind the role gate.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(deps.Logger))

	r.Get("/healthz", healthHandler(deps.DB))

	r.Route("/api", func(r chi.Router) {
		registerAuthRoutes(r, deps)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			registerLinkRoutes(r, deps)

			r.Route("/admin", func(r chi.Router) {
				r.Use(deps.AuthMiddleware.RequireRole("admin"))
				registerAdminRoutes(r, deps)
			})
		})
	})

	return r
}

// requestLogger logs one line per request with status and duration.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// healthHandler reports liveness of the process and its database.
func healthHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
