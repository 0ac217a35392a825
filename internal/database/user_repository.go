package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/youthfin/yofin/internal/models"
)

// UserRepository handles user profile database operations. Profiles use the
// upstream user id as primary key, not a generated uuid.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user profile, or nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	query := `
		SELECT id, name, age, income_level, total_assets, investment_preference,
		       interest_areas, risk_tolerance, investment_goal, investment_horizon,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var profile models.UserProfile
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.UserID,
		&profile.Name,
		&profile.Age,
		&profile.IncomeLevel,
		&profile.TotalAssets,
		&profile.InvestmentPreference,
		pq.Array(&profile.InterestAreas),
		&profile.RiskTolerance,
		&profile.InvestmentGoal,
		&profile.InvestmentHorizon,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user %s: %w", id, err)
	}

	return &profile, nil
}

// Upsert inserts or refreshes a profile snapshot.
func (r *UserRepository) Upsert(ctx context.Context, profile models.UserProfile) error {
	query := `
		INSERT INTO users (
			id, name, age, income_level, total_assets, investment_preference,
			interest_areas, risk_tolerance, investment_goal, investment_horizon,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			income_level = EXCLUDED.income_level,
			total_assets = EXCLUDED.total_assets,
			investment_preference = EXCLUDED.investment_preference,
			interest_areas = EXCLUDED.interest_areas,
			risk_tolerance = EXCLUDED.risk_tolerance,
			investment_goal = EXCLUDED.investment_goal,
			investment_horizon = EXCLUDED.investment_horizon,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		profile.UserID,
		profile.Name,
		profile.Age,
		profile.IncomeLevel,
		profile.TotalAssets,
		profile.InvestmentPreference,
		pq.Array(profile.InterestAreas),
		profile.RiskTolerance,
		profile.InvestmentGoal,
		profile.InvestmentHorizon,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", profile.UserID, err)
	}

	return nil
}
