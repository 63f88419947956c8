// internal/app/features/admin/routes.go
package admin

import (
	"github.com/go-chi/chi/v5"

	"github.com/tripbook/tripbook/internal/app/system/auth"
)

// Routes returns the subrouter for operational endpoints, mounted under /admin.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireMember)
	r.Post("/reindex", h.Reindex)
	return r
}
