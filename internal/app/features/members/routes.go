// internal/app/features/members/routes.go
package members

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter for member registration, mounted under
// /members. Registration is the one unauthenticated write.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Register)
	return r
}
