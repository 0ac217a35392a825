// Package inference records AI API calls for auditing. Writes are
// asynchronous and best-effort so a slow or unavailable database never
// blocks a recommendation.
package inference

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/youthfin/yofin/internal/models"
)

// LogStore persists inference log rows.
type LogStore interface {
	Create(ctx context.Context, log models.InferenceLog) error
}

// Logger logs inference calls to the database.
type Logger struct {
	store  LogStore
	logger *slog.Logger
}

// NewLogger creates a new inference logger. A nil store disables persistence
// but keeps the call sites valid.
func NewLogger(store LogStore, logger *slog.Logger) *Logger {
	return &Logger{
		store:  store,
		logger: logger,
	}
}

// LogCallParams describes one inference API call.
type LogCallParams struct {
	Provider     string
	Model        string
	Operation    string
	TokensUsed   int
	InputTokens  *int
	OutputTokens *int
	LatencyMs    *int
	Status       string // "success" or "error"
	ErrorMessage *string
	Metadata     map[string]interface{}
}

// LogCall records an inference call. The database write happens in a
// background goroutine so the caller is never blocked.
func (l *Logger) LogCall(ctx context.Context, params LogCallParams) {
	if l == nil || l.store == nil {
		return
	}

	var metadataJSON string
	if params.Metadata != nil {
		if jsonBytes, err := json.Marshal(params.Metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	log := models.InferenceLog{
		Provider:     params.Provider,
		Model:        params.Model,
		Operation:    params.Operation,
		TokensUsed:   params.TokensUsed,
		InputTokens:  params.InputTokens,
		OutputTokens: params.OutputTokens,
		LatencyMs:    params.LatencyMs,
		Status:       params.Status,
		ErrorMessage: params.ErrorMessage,
		Metadata:     metadataJSON,
	}

	go func() {
		bgCtx := context.Background()
		if err := l.store.Create(bgCtx, log); err != nil {
			l.logger.Error("failed to log inference call", "error", err)
		}
	}()
}

// TokenUsage carries provider-reported token counts.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// LogProviderCall records one call for any provider, deriving status and
// latency fields from the outcome.
func (l *Logger) LogProviderCall(ctx context.Context, provider, model, operation string, usage TokenUsage, latency time.Duration, err error, metadata map[string]interface{}) {
	params := LogCallParams{
		Provider:     provider,
		Model:        model,
		Operation:    operation,
		TokensUsed:   usage.InputTokens + usage.OutputTokens,
		InputTokens:  &usage.InputTokens,
		OutputTokens: &usage.OutputTokens,
		Metadata:     metadata,
	}

	latencyMs := int(latency.Milliseconds())
	params.LatencyMs = &latencyMs

	if err != nil {
		params.Status = "error"
		errMsg := err.Error()
		params.ErrorMessage = &errMsg
	} else {
		params.Status = "success"
	}

	l.LogCall(ctx, params)
}
