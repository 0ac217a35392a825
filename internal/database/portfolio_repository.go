package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/youthfin/yofin/internal/models"
)

// PortfolioRepository handles a user's persisted allocation items.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new portfolio repository.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// ReplaceForUser atomically swaps the user's portfolio for the given items.
// The delete and all inserts run in one transaction so concurrent readers
// never observe a partial portfolio.
func (r *PortfolioRepository) ReplaceForUser(ctx context.Context, userID string, items []models.AllocationItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_portfolios WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to clear portfolio for user %s: %w", userID, err)
	}

	if err := insertItems(ctx, tx, userID, items); err != nil {
		return err
	}

	return tx.Commit()
}

// AddForUser appends items to the user's portfolio without touching
// existing rows.
func (r *PortfolioRepository) AddForUser(ctx context.Context, userID string, items []models.AllocationItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertItems(ctx, tx, userID, items); err != nil {
		return err
	}

	return tx.Commit()
}

func insertItems(ctx context.Context, tx *sql.Tx, userID string, items []models.AllocationItem) error {
	if len(items) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO user_portfolios (
			id, user_id, product_code, product_name, allocation_percentage,
			investment_amount, expected_return, risk_level, recommendation_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, item := range items {
		id := item.ID
		if id == "" {
			id = uuid.New().String()
		}

		var recommendationID interface{}
		if item.RecommendationID != "" {
			recommendationID = item.RecommendationID
		}

		// Spread timestamps a microsecond apart to keep insertion order
		// recoverable from created_at.
		_, err = stmt.ExecContext(ctx,
			id,
			userID,
			item.ProductCode,
			item.ProductName,
			item.AllocationPercentage,
			item.InvestmentAmount,
			item.ExpectedReturn,
			item.RiskLevel,
			recommendationID,
			now.Add(time.Duration(i)*time.Microsecond),
		)
		if err != nil {
			return fmt.Errorf("failed to insert portfolio item %s: %w", item.ProductCode, err)
		}
	}

	return nil
}

// ListByUser retrieves the user's allocation items in insertion order.
func (r *PortfolioRepository) ListByUser(ctx context.Context, userID string) ([]models.AllocationItem, error) {
	query := `
		SELECT id, user_id, product_code, product_name, allocation_percentage,
		       investment_amount, expected_return, risk_level, recommendation_id, created_at
		FROM user_portfolios
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio for user %s: %w", userID, err)
	}
	defer rows.Close()

	var items []models.AllocationItem
	for rows.Next() {
		var item models.AllocationItem
		var recommendationID sql.NullString

		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductCode,
			&item.ProductName,
			&item.AllocationPercentage,
			&item.InvestmentAmount,
			&item.ExpectedReturn,
			&item.RiskLevel,
			&recommendationID,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio item: %w", err)
		}

		if recommendationID.Valid {
			item.RecommendationID = recommendationID.String
		}

		items = append(items, item)
	}

	return items, rows.Err()
}
