package api

import (
	"net/http"
	"strconv"

	"log/slog"

	"github.com/youthfin/yofin/internal/models"
)

// InferenceLogHandler serves the AI call audit trail to operators
type InferenceLogHandler struct {
	store  InferenceLogStore
	logger *slog.Logger
}

// NewInferenceLogHandler creates a new inference log handler
func NewInferenceLogHandler(store InferenceLogStore, logger *slog.Logger) *InferenceLogHandler {
	return &InferenceLogHandler{
		store:  store,
		logger: logger,
	}
}

// InferenceLogsResponse represents the audit trail listing response
type InferenceLogsResponse struct {
	Logs  []models.InferenceLog `json:"logs"`
	Count int                   `json:"count"`
}

// ListInferenceLogs handles GET /api/v1/admin/inference-logs
func (h *InferenceLogHandler) ListInferenceLogs(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}

	filter := models.InferenceLogFilter{
		Provider:  r.URL.Query().Get("provider"),
		Operation: r.URL.Query().Get("operation"),
		Status:    r.URL.Query().Get("status"),
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		filter.Limit = parsed
	}

	logs, err := h.store.List(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, "failed to list inference logs", err)
		return
	}

	if logs == nil {
		logs = []models.InferenceLog{}
	}

	writeJSON(w, http.StatusOK, InferenceLogsResponse{
		Logs:  logs,
		Count: len(logs),
	})
}

// GetInferenceStats handles GET /api/v1/admin/inference-logs/stats
func (h *InferenceLogHandler) GetInferenceStats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}

	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		respondError(w, h.logger, "failed to aggregate inference stats", err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
