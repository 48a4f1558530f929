// Package http wires the HTTP surface: router, middleware, and routes.
package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"carebot/internal/handlers"
	"carebot/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService service.ChatService
	Uploader    handlers.PolicyUploader
	Resyncer    handlers.Resyncer
	Stats       handlers.StoreStats
	DB          *sql.DB
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	policyHandler := handlers.NewPolicyHandler(deps.Uploader)
	adminHandler := handlers.NewAdminHandler(deps.Resyncer, deps.Stats)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodPost, "/policies", policyHandler)
		r.Route("/admin", func(r chi.Router) {
			r.Post("/sync", adminHandler.Sync)
			r.Get("/diagnostic", adminHandler.Diagnostic)
		})
	})

	r.Method(http.MethodGet, "/health", healthHandler)

	return r
}
