package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/youthfin/yofin/internal/models"
)

// defaultHistoryLimit bounds an unqualified history listing.
const defaultHistoryLimit = 20

// HistoryRepository handles recommendation history records.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create stores one recommendation audit record.
func (r *HistoryRepository) Create(ctx context.Context, history models.RecommendationHistory) error {
	query := `
		INSERT INTO recommendation_history (
			id, user_id, payload, strategy, model_name, confidence, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		history.ID,
		history.UserID,
		[]byte(history.Payload),
		history.Strategy,
		history.ModelName,
		history.Confidence,
		history.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store recommendation history: %w", err)
	}

	return nil
}

// ListByUser retrieves the user's most recent records, newest first.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.RecommendationHistory, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	query := `
		SELECT id, user_id, payload, strategy, model_name, confidence, created_at
		FROM recommendation_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for user %s: %w", userID, err)
	}
	defer rows.Close()

	var records []models.RecommendationHistory
	for rows.Next() {
		var record models.RecommendationHistory
		var payload []byte

		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&payload,
			&record.Strategy,
			&record.ModelName,
			&record.Confidence,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}

		record.Payload = payload
		records = append(records, record)
	}

	return records, rows.Err()
}
