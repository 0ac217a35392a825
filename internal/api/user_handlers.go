package api

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/youthfin/yofin/internal/metrics"
	"github.com/youthfin/yofin/internal/source"
)

// UserHandler serves user profiles through the source gateway
type UserHandler struct {
	gateway   source.Gateway
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(gateway source.Gateway, collector *metrics.Collector, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		gateway:   gateway,
		collector: collector,
		logger:    logger,
	}
}

// GetUser handles GET /api/v1/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request, userID string) {
	start := time.Now()
	profile, err := h.gateway.FetchUserProfile(r.Context(), userID)
	h.collector.ObserveSourceFetch("user_profile", string(h.gateway.Mode()), time.Since(start))
	if err != nil {
		respondError(w, h.logger, "failed to fetch user profile", err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
