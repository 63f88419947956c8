package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tripbook/tripbook/internal/app/system/auth"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewAuthenticatedRequest creates an HTTP request with a member id in
// context, bypassing the header middleware.
func NewAuthenticatedRequest(method, target string, memberID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return auth.WithTestMember(req, memberID)
}
