// Package engine turns a user profile and canonical product/policy records
// into a portfolio recommendation. An AI strategy runs when a provider is
// configured; the deterministic fallback guarantees a valid recommendation
// whenever the model call fails or no provider exists.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/youthfin/yofin/internal/models"
)

// AIStrategy produces a recommendation through a model provider.
type AIStrategy interface {
	GenerateRecommendation(ctx context.Context, profile models.UserProfile, products []models.Product, policies []models.Policy) (*models.Recommendation, error)
}

// Engine orchestrates strategy selection. Strategy choice depends only on
// AI availability, never on profile content.
type Engine struct {
	ai       AIStrategy
	fallback *FallbackStrategy
	logger   *slog.Logger
}

// New creates an engine. A nil ai strategy means every recommendation uses
// the deterministic fallback.
func New(ai AIStrategy, logger *slog.Logger) *Engine {
	return &Engine{
		ai:       ai,
		fallback: NewFallbackStrategy(),
		logger:   logger,
	}
}

// GenerateRecommendation produces a complete recommendation for the profile.
// The only observable difference between strategies is the confidence score;
// AI failures are recovered transparently and never surface to the caller.
func (e *Engine) GenerateRecommendation(ctx context.Context, profile models.UserProfile, products []models.Product, policies []models.Policy) (*models.Recommendation, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("user %s: %w", profile.UserID, models.ErrNoEligibleProducts)
	}
	if profile.TotalAssets < 0 {
		return nil, fmt.Errorf("user %s: total assets must be non-negative", profile.UserID)
	}

	var rec *models.Recommendation

	if e.ai != nil {
		aiRec, err := e.ai.GenerateRecommendation(ctx, profile, products, policies)
		switch {
		case err == nil:
			rec = aiRec
		case errors.Is(err, context.Canceled):
			return nil, err
		default:
			e.logger.Warn("ai generation failed, using fallback",
				"user_id", profile.UserID,
				"error", fmt.Errorf("%w: %v", models.ErrAIGenerationFailed, err))
		}
	}

	if rec == nil {
		rec = e.fallback.Generate(profile, products, policies)
		e.logger.Info("generated fallback recommendation",
			"user_id", profile.UserID,
			"items", len(rec.Items),
			"expected_return", rec.ExpectedTotalReturn,
			"risk_score", rec.TotalRiskScore)
	}

	rec.ID = uuid.New().String()
	rec.UserID = profile.UserID
	rec.CreatedAt = time.Now()

	return rec, nil
}

// AnalyzeRisk reports portfolio risk for the given allocation items.
func (e *Engine) AnalyzeRisk(items []models.AllocationItem) models.RiskReport {
	return AnalyzeRisk(items)
}
