package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/youthfin/yofin/internal/models"
)

// RecommendationStore persists the outcome of one recommendation request:
// the user's replaced portfolio items plus the audit history row, in a
// single transaction so the two tables never disagree.
type RecommendationStore struct {
	db *sql.DB
}

func NewRecommendationStore(db *sql.DB) *RecommendationStore {
	return &RecommendationStore{db: db}
}

// Save replaces the user's portfolio with the recommended items and appends
// a history row carrying the full recommendation payload.
func (s *RecommendationStore) Save(ctx context.Context, rec models.Recommendation) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}

	items := make([]models.AllocationItem, len(rec.Items))
	copy(items, rec.Items)
	for i := range items {
		items[i].RecommendationID = rec.ID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_portfolios WHERE user_id = $1", rec.UserID); err != nil {
		return fmt.Errorf("failed to clear portfolio: %w", err)
	}

	if err := insertItems(ctx, tx, rec.UserID, items); err != nil {
		return err
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recommendation_history (id, user_id, payload, strategy, model_name, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(),
		rec.UserID,
		payload,
		string(rec.Strategy),
		rec.ModelName,
		rec.ConfidenceScore,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
