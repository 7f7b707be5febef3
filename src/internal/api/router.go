package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates the control API router with all endpoints.
func NewRouter(service ConnectionService, version VersionInfo) http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(Logger)
	r.Use(LoopbackOnly)
	r.Use(JSONContentType)

	h := NewHandler(service, version)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.GetStatus)
		r.Get("/health", h.CheckHealth)
		r.Get("/port", h.GetPort)

		r.Post("/connect", h.Connect)
		r.Post("/disconnect", h.Disconnect)
	})

	return r
}
