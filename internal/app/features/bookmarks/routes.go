// internal/app/features/bookmarks/routes.go
package bookmarks

import (
	"github.com/go-chi/chi/v5"

	"github.com/tripbook/tripbook/internal/app/system/auth"
)

// Routes returns the subrouter for bookmarks, mounted under /bookmarks.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireMember)
	r.Post("/{tripID}", h.Toggle)
	r.Get("/", h.List)
	return r
}
