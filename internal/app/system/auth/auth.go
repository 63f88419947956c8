// internal/app/system/auth/auth.go
package auth

// Token verification happens at the edge: the gateway validates the JWT and
// forwards the authenticated member id in the X-Member-ID header. This
// package only lifts that id into the request context.

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const memberHeader = "X-Member-ID"

type ctxKey struct{}

// LoadMember parses the forwarded member id, if any, into the request
// context. An absent or malformed header leaves the request anonymous.
func LoadMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(memberHeader); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireMember rejects anonymous requests with 401.
func RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := MemberID(r); !ok {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MemberID returns the authenticated member id from the request context.
func MemberID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(ctxKey{}).(uuid.UUID)
	return id, ok
}

// WithTestMember injects a member id directly into the request context.
// Handler tests use this to bypass the middleware.
func WithTestMember(r *http.Request, id uuid.UUID) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))
}
