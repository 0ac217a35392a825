package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/youthfin/yofin/internal/models"
)

// writeJSON writes a JSON response with CORS headers.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// errorStatus maps a domain error onto an HTTP status and an outward message
// that carries no internal detail. Validation messages pass through since
// they only name the offending request field.
func errorStatus(err error) (int, string) {
	var verr ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, models.ErrNoEligibleProducts):
		return http.StatusNotFound, "No eligible products available"
	case errors.Is(err, models.ErrEmptyPortfolio):
		return http.StatusNotFound, "Portfolio is empty"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, models.ErrSourceUnavailable):
		return http.StatusServiceUnavailable, "Upstream source unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondError writes the mapped error response. Internal failures keep their
// detail in the log only.
func respondError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	status, public := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, "error", err)
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	http.Error(w, public, status)
}
