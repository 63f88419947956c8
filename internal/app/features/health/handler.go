package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pingTimeout = 5 * time.Second

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB     *gorm.DB
	Client *mongo.Client
	Log    *zap.Logger
}

// NewHandler constructs a health Handler over both backing stores.
func NewHandler(db *gorm.DB, client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Client: client,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	SearchIndex string `json:"search_index"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "search_index":"connected" }
//
// On failure of either store: 503 with status "error" and the failing
// component marked "disconnected".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:      "ok",
		Database:    "connected",
		SearchIndex: "connected",
	}

	if sqlDB, err := h.DB.DB(); err != nil {
		h.fail(w, resp, "database", err)
		return
	} else if err := sqlDB.PingContext(ctx); err != nil {
		h.Log.Error("health-check: postgres ping failed", zap.Error(err))
		h.fail(w, resp, "database", err)
		return
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		h.fail(w, resp, "search_index", err)
		return
	}

	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) fail(w http.ResponseWriter, resp healthResponse, component string, err error) {
	w.WriteHeader(http.StatusServiceUnavailable)
	resp.Status = "error"
	resp.Message = "Store unavailable"
	resp.Error = err.Error()
	switch component {
	case "database":
		resp.Database = "disconnected"
	case "search_index":
		resp.SearchIndex = "disconnected"
	}
	_ = json.NewEncoder(w).Encode(resp)
}
