// internal/app/features/bookmarks/handler.go
package bookmarks

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/app/store/trips"
	"github.com/tripbook/tripbook/internal/app/system/auth"
	"github.com/tripbook/tripbook/internal/app/system/httpjson"
)

// Handler exposes bookmark toggling and listing over HTTP.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler constructs the bookmarks Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, log: logger}
}

// Toggle handles POST /bookmarks/{tripID}.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	memberID, _ := auth.MemberID(r)
	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "bad_request", "invalid tripID")
		return
	}
	bookmarked, err := h.svc.Toggle(r.Context(), memberID, tripID)
	switch {
	case errors.Is(err, tripstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "trip_not_found", "trip does not exist")
		return
	case errors.Is(err, ErrNotAuthorized):
		httpjson.Error(w, http.StatusForbidden, "not_authorized", err.Error())
		return
	case err != nil:
		h.log.Error("bookmark toggle failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"bookmarked": bookmarked})
}

// List handles GET /bookmarks?page=N (zero-based). A page can hold fewer
// than the configured page size: hidden trips are filtered out after the
// fetch and not backfilled.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	memberID, _ := auth.MemberID(r)
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpjson.Error(w, http.StatusBadRequest, "bad_request", "invalid page")
			return
		}
		page = n
	}
	items, err := h.svc.List(r.Context(), memberID, page)
	if err != nil {
		h.log.Error("bookmark listing failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	httpjson.Write(w, http.StatusOK, items)
}
