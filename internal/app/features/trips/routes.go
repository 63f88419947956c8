// internal/app/features/trips/routes.go
package trips

import (
	"github.com/go-chi/chi/v5"

	"github.com/tripbook/tripbook/internal/app/system/auth"
)

// Routes returns the subrouter for trip and participant operations,
// mounted under /trips. Everything here requires an authenticated member.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireMember)

	r.Post("/", h.Create)
	r.Get("/{tripID}", h.Detail)
	r.Put("/{tripID}", h.Update)

	r.Post("/{tripID}/participants", h.Invite)
	r.Delete("/{tripID}/participants/{memberID}", h.Remove)
	r.Post("/{tripID}/accept", h.Accept)
	r.Post("/{tripID}/deny", h.Deny)
	r.Post("/{tripID}/leave", h.Leave)

	r.Post("/{tripID}/locations", h.AddLocation)

	return r
}
