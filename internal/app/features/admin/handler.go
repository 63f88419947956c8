// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/app/system/auth"
	"github.com/tripbook/tripbook/internal/app/system/httpjson"
	"github.com/tripbook/tripbook/internal/domain/models"
)

// Reindexer rebuilds the search index from relational truth.
type Reindexer interface {
	Rebuild(ctx context.Context) error
}

// MemberReader resolves the caller for the role check.
type MemberReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (models.Member, error)
}

// Handler exposes operational endpoints restricted to system members.
type Handler struct {
	reindexer Reindexer
	members   MemberReader
	log       *zap.Logger
}

// NewHandler constructs the admin Handler.
func NewHandler(reindexer Reindexer, members MemberReader, logger *zap.Logger) *Handler {
	return &Handler{reindexer: reindexer, members: members, log: logger}
}

// Reindex handles POST /admin/reindex. The rebuild runs inline; the
// request holds until every document is replaced.
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	memberID, _ := auth.MemberID(r)
	caller, err := h.members.FindByID(r.Context(), memberID)
	if err != nil || caller.Role != models.RoleSystem {
		httpjson.Error(w, http.StatusForbidden, "not_authorized", "system role required")
		return
	}
	if err := h.reindexer.Rebuild(r.Context()); err != nil {
		h.log.Error("reindex failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal", "reindex failed")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "reindexed"})
}
