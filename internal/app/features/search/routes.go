// internal/app/features/search/routes.go
package search

import (
	"github.com/go-chi/chi/v5"

	"github.com/tripbook/tripbook/internal/app/system/auth"
)

// Routes returns the subrouter for search queries, mounted under /search.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireMember)
	r.Get("/trips", h.Trips)
	r.Get("/locations", h.Locations)
	r.Get("/members", h.Members)
	return r
}
