package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/youthfin/yofin/internal/models"
)

// defaultInferenceLogLimit bounds an unqualified audit trail listing.
const defaultInferenceLogLimit = 100

// InferenceLogRepository handles the AI call audit trail.
type InferenceLogRepository struct {
	db *sql.DB
}

// NewInferenceLogRepository creates a new repository.
func NewInferenceLogRepository(db *sql.DB) *InferenceLogRepository {
	return &InferenceLogRepository{db: db}
}

// Create records a single model call. The id and created_at columns default
// in the database.
func (r *InferenceLogRepository) Create(ctx context.Context, log models.InferenceLog) error {
	query := `
		INSERT INTO inference_logs (
			provider, model, operation, tokens_used, input_tokens, output_tokens,
			latency_ms, status, error_message, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	metadata := sql.NullString{String: log.Metadata, Valid: log.Metadata != ""}

	_, err := r.db.ExecContext(ctx, query,
		log.Provider,
		log.Model,
		log.Operation,
		log.TokensUsed,
		log.InputTokens,
		log.OutputTokens,
		log.LatencyMs,
		log.Status,
		log.ErrorMessage,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to store inference log: %w", err)
	}

	return nil
}

// List retrieves recent calls matching the filter, newest first.
func (r *InferenceLogRepository) List(ctx context.Context, filter models.InferenceLogFilter) ([]models.InferenceLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultInferenceLogLimit
	}

	query := `
		SELECT id, provider, model, operation, tokens_used, input_tokens,
		       output_tokens, latency_ms, status, error_message, metadata, created_at
		FROM inference_logs
		WHERE 1=1
	`
	args := []interface{}{}
	argPos := 1

	if filter.Provider != "" {
		query += fmt.Sprintf(" AND provider = $%d", argPos)
		args = append(args, filter.Provider)
		argPos++
	}

	if filter.Operation != "" {
		query += fmt.Sprintf(" AND operation = $%d", argPos)
		args = append(args, filter.Operation)
		argPos++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argPos)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inference logs: %w", err)
	}
	defer rows.Close()

	var logs []models.InferenceLog
	for rows.Next() {
		var log models.InferenceLog
		var metadata sql.NullString

		err := rows.Scan(
			&log.ID,
			&log.Provider,
			&log.Model,
			&log.Operation,
			&log.TokensUsed,
			&log.InputTokens,
			&log.OutputTokens,
			&log.LatencyMs,
			&log.Status,
			&log.ErrorMessage,
			&metadata,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inference log: %w", err)
		}

		log.Metadata = metadata.String
		logs = append(logs, log)
	}

	return logs, rows.Err()
}

// GetStats aggregates call counts, token usage, and latency over the whole
// audit trail.
func (r *InferenceLogRepository) GetStats(ctx context.Context) (*models.InferenceLogStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(tokens_used), 0),
		       COUNT(*) FILTER (WHERE status = 'success'),
		       COUNT(*) FILTER (WHERE status = 'error'),
		       COALESCE(AVG(latency_ms), 0)
		FROM inference_logs
	`

	var stats models.InferenceLogStats
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalCalls,
		&stats.TotalTokens,
		&stats.SuccessfulCalls,
		&stats.FailedCalls,
		&stats.AvgLatencyMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate inference stats: %w", err)
	}

	return &stats, nil
}
