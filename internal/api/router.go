package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the JSON API. The dashboard UI itself lives elsewhere;
// this surface only exposes collection, queries, and annotations.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/collect", h.Collect)
		r.Get("/latest", h.Latest)
		r.Get("/telemetry", h.Telemetry)
		r.Get("/stats/{field}", h.Stats)
		r.Get("/comfort", h.Comfort)
		r.Get("/annotations", h.ListAnnotations)
		r.Post("/annotations", h.AddAnnotation)
	})

	return r
}
