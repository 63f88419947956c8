// internal/app/features/search/handler.go
package search

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/app/system/auth"
	"github.com/tripbook/tripbook/internal/app/system/httpjson"
)

// Handler exposes the hybrid search queries over HTTP.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler constructs the search Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, log: logger}
}

// Trips handles GET /search/trips?keyword=...&by_bookmarks=1.
func (h *Handler) Trips(w http.ResponseWriter, r *http.Request) {
	h.trips(w, r, h.svc.SearchTrips)
}

// Locations handles GET /search/locations?keyword=...&by_bookmarks=1.
func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	h.trips(w, r, h.svc.SearchTripsByLocation)
}

func (h *Handler) trips(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, requesterID uuid.UUID, keyword string, byBookmarks bool) ([]TripResult, error)) {
	requesterID, _ := auth.MemberID(r)
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		httpjson.Error(w, http.StatusBadRequest, "bad_request", "keyword is required")
		return
	}
	byBookmarks := r.URL.Query().Get("by_bookmarks") == "1"
	results, err := fn(r.Context(), requesterID, keyword, byBookmarks)
	if err != nil {
		h.log.Error("trip search failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	httpjson.Write(w, http.StatusOK, results)
}

// Members handles GET /search/members?keyword=...&trip_id=....
// With trip_id, each candidate is annotated with is_invited from the
// projected index, accepted as eventually consistent.
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.MemberID(r)
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		httpjson.Error(w, http.StatusBadRequest, "bad_request", "keyword is required")
		return
	}

	var (
		results []MemberResult
		err     error
	)
	if raw := r.URL.Query().Get("trip_id"); raw != "" {
		tripID, perr := uuid.Parse(raw)
		if perr != nil {
			httpjson.Error(w, http.StatusBadRequest, "bad_request", "invalid trip_id")
			return
		}
		results, err = h.svc.SearchAddableMembersInTrip(r.Context(), tripID, requesterID, keyword)
	} else {
		results, err = h.svc.SearchAddableMembers(r.Context(), requesterID, keyword)
	}
	if err != nil {
		h.log.Error("member search failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	httpjson.Write(w, http.StatusOK, results)
}
