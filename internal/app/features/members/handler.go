// internal/app/features/members/handler.go
package members

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/app/store/members"
	"github.com/tripbook/tripbook/internal/app/system/httpjson"
)

// Handler exposes member registration over HTTP.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler constructs the members Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, log: logger}
}

type registerRequest struct {
	Username         string `json:"username"`
	Phone            string `json:"phone"`
	Nickname         string `json:"nickname"`
	Password         string `json:"password"`
	ProfileImagePath string `json:"profile_image_path"`
}

type registerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

// Register handles POST /members.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	member, err := h.svc.Register(r.Context(), RegisterInput{
		Username:         req.Username,
		Phone:            req.Phone,
		Nickname:         req.Nickname,
		Password:         req.Password,
		ProfileImagePath: req.ProfileImagePath,
	})
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpjson.Error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	case errors.Is(err, memberstore.ErrDuplicateUsername),
		errors.Is(err, memberstore.ErrDuplicatePhone),
		errors.Is(err, memberstore.ErrDuplicateNickname):
		httpjson.Error(w, http.StatusConflict, "duplicate", err.Error())
		return
	case err != nil:
		h.log.Error("registration failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	httpjson.Write(w, http.StatusCreated, registerResponse{
		ID:       member.ID.String(),
		Username: member.Username,
		Nickname: member.Nickname,
	})
}
