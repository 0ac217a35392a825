package api

import (
	"net/http"
	"strconv"

	"log/slog"

	"github.com/youthfin/yofin/internal/models"
)

// HistoryHandler serves past recommendations
type HistoryHandler struct {
	store  HistoryStore
	logger *slog.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(store HistoryStore, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		store:  store,
		logger: logger,
	}
}

// HistoryResponse represents the recommendation history response
type HistoryResponse struct {
	UserID  string                         `json:"user_id"`
	History []models.RecommendationHistory `json:"history"`
	Count   int                            `json:"count"`
}

// GetHistory handles GET /api/v1/recommendations/{userID}/history
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request, userID string) {
	if h.store == nil {
		http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := h.store.ListByUser(r.Context(), userID, limit)
	if err != nil {
		respondError(w, h.logger, "failed to load recommendation history", err)
		return
	}

	if entries == nil {
		entries = []models.RecommendationHistory{}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		UserID:  userID,
		History: entries,
		Count:   len(entries),
	})
}
