// internal/app/features/trips/handler.go
package trips

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/app/store/members"
	"github.com/tripbook/tripbook/internal/app/store/trips"
	"github.com/tripbook/tripbook/internal/app/system/auth"
	"github.com/tripbook/tripbook/internal/app/system/httpjson"
	"github.com/tripbook/tripbook/internal/domain/models"
)

// Handler exposes the trip and participant operations over HTTP.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler constructs the trips Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, log: logger}
}

type createRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Private     bool     `json:"private"`
	InviteeIDs  []string `json:"invitee_ids"`
}

type tripResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Private     bool     `json:"private"`
	LeaderID    string   `json:"leader_id"`
	Locations   []string `json:"locations,omitempty"`
}

func toResponse(t models.Trip, locs []models.Location) tripResponse {
	resp := tripResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Private:     t.Private,
		LeaderID:    t.LeaderID.String(),
	}
	for _, loc := range locs {
		resp.Locations = append(resp.Locations, loc.Name)
	}
	return resp
}

// Create handles POST /trips.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	memberID, _ := auth.MemberID(r)
	var req createRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if req.Title == "" {
		httpjson.Error(w, http.StatusBadRequest, "bad_request", "title is required")
		return
	}
	invitees, ok := parseIDs(w, req.InviteeIDs)
	if !ok {
		return
	}
	trip, err := h.svc.Create(r.Context(), memberID, CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Private:     req.Private,
		InviteeIDs:  invitees,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toResponse(trip, nil))
}

// Detail handles GET /trips/{tripID}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	memberID, _ := auth.MemberID(r)
	tripID, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	trip, locs, err := h.svc.Detail(r.Context(), tripID, memberID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toResponse(trip, locs))
}

type updateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
}

// Update handles PUT /trips/{tripID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	memberID, _ := auth.MemberID(r)
	tripID, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	var req updateRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if req.Title == "" {
		httpjson.Error(w, http.StatusBadRequest, "bad_request", "title is required")
		return
	}
	if err := h.svc.UpdateMeta(r.Context(), tripID, memberID, req.Title, req.Description, req.Private); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type inviteRequest struct {
	MemberIDs []string `json:"member_ids"`
}

// Invite handles POST /trips/{tripID}/participants.
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	memberID, _ := auth.MemberID(r)
	tripID, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	var req inviteRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	ids, ok := parseIDs(w, req.MemberIDs)
	if !ok {
		return
	}
	if err := h.svc.Invite(r.Context(), tripID, memberID, ids); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Accept handles POST /trips/{tripID}/accept.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.selfTransition(w, r, h.svc.Accept)
}

// Deny handles POST /trips/{tripID}/deny.
func (h *Handler) Deny(w http.ResponseWriter, r *http.Request) {
	h.selfTransition(w, r, h.svc.Deny)
}

// Leave handles POST /trips/{tripID}/leave.
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	h.selfTransition(w, r, h.svc.Leave)
}

func (h *Handler) selfTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, tripID, memberID uuid.UUID) error) {
	memberID, _ := auth.MemberID(r)
	tripID, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	if err := fn(r.Context(), tripID, memberID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Remove handles DELETE /trips/{tripID}/participants/{memberID}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	removerID, _ := auth.MemberID(r)
	tripID, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "memberID")
	if !ok {
		return
	}
	if err := h.svc.Remove(r.Context(), tripID, removerID, memberID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type locationRequest struct {
	Name          string `json:"name"`
	ThumbnailPath string `json:"thumbnail_path"`
}

// AddLocation handles POST /trips/{tripID}/locations.
func (h *Handler) AddLocation(w http.ResponseWriter, r *http.Request) {
	memberID, _ := auth.MemberID(r)
	tripID, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	var req locationRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		httpjson.Error(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	loc, err := h.svc.AddLocation(r.Context(), tripID, memberID, req.Name, req.ThumbnailPath)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, map[string]string{
		"id":   loc.ID.String(),
		"name": loc.Name,
	})
}

// writeError maps service errors onto the response taxonomy: 404 for
// missing entities, 403 for failed authority checks, 409 for
// state-inconsistent transitions.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tripstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "trip_not_found", "trip does not exist")
	case errors.Is(err, memberstore.ErrNotFound), errors.Is(err, ErrUnknownInvitee):
		httpjson.Error(w, http.StatusNotFound, "member_not_found", "member does not exist")
	case errors.Is(err, ErrNotAuthorized):
		httpjson.Error(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, ErrNotInvited), errors.Is(err, ErrAlreadyAccepted),
		errors.Is(err, ErrNotMember), errors.Is(err, ErrLeaderImmovable):
		httpjson.Error(w, http.StatusConflict, "invalid_transition", err.Error())
	default:
		h.log.Error("trip request failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "bad_request", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseIDs(w http.ResponseWriter, raw []string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "bad_request", "invalid member id "+s)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
