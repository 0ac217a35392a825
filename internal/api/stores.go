package api

import (
	"context"

	"github.com/youthfin/yofin/internal/models"
)

// Persistence surfaces the handlers depend on. The database package provides
// the production implementations; tests substitute in-memory fakes.

type ProductStore interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetByCode(ctx context.Context, code string) (*models.Product, error)
	Create(ctx context.Context, product models.Product) error
	Update(ctx context.Context, product models.Product) error
	Deactivate(ctx context.Context, code string) error
}

type PolicyStore interface {
	List(ctx context.Context, filter models.PolicyFilter) ([]models.Policy, error)
	GetByCode(ctx context.Context, code string) (*models.Policy, error)
	Create(ctx context.Context, policy models.Policy) error
	Update(ctx context.Context, policy models.Policy) error
	Deactivate(ctx context.Context, code string) error
}

type PortfolioStore interface {
	AddForUser(ctx context.Context, userID string, items []models.AllocationItem) error
	ListByUser(ctx context.Context, userID string) ([]models.AllocationItem, error)
}

// RecommendationSaver persists a recommendation's portfolio items and history
// row atomically.
type RecommendationSaver interface {
	Save(ctx context.Context, rec models.Recommendation) error
}

type HistoryStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.RecommendationHistory, error)
}

type InferenceLogStore interface {
	List(ctx context.Context, filter models.InferenceLogFilter) ([]models.InferenceLog, error)
	GetStats(ctx context.Context) (*models.InferenceLogStats, error)
}
