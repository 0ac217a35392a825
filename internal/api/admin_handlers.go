package api

import (
	"context"
	"net/http"

	"log/slog"

	"github.com/youthfin/yofin/internal/preprocess"
)

// Preprocessor runs the seed data pipeline.
type Preprocessor interface {
	Run(ctx context.Context, dir string) (*preprocess.Report, error)
}

// AdminHandler handles admin-only operations
type AdminHandler struct {
	preprocessor Preprocessor
	seedDir      string
	logger       *slog.Logger
}

// NewAdminHandler creates a new admin handler. The seed directory is fixed
// at startup; requests cannot point the pipeline at arbitrary paths.
func NewAdminHandler(preprocessor Preprocessor, seedDir string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		preprocessor: preprocessor,
		seedDir:      seedDir,
		logger:       logger,
	}
}

// RunPreprocess handles POST /api/v1/admin/preprocess. It ingests the seed
// data directory synchronously and returns the per-file report.
func (h *AdminHandler) RunPreprocess(w http.ResponseWriter, r *http.Request) {
	if h.preprocessor == nil {
		http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("admin triggered preprocess", "dir", h.seedDir)

	report, err := h.preprocessor.Run(r.Context(), h.seedDir)
	if err != nil {
		respondError(w, h.logger, "preprocess run failed", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
