package scheduler

import (
	"context"
	"time"

	"log/slog"

	"github.com/youthfin/yofin/internal/metrics"
	"github.com/youthfin/yofin/internal/models"
	"github.com/youthfin/yofin/internal/source"
)

// ProductStore persists refreshed products.
type ProductStore interface {
	UpsertBatch(ctx context.Context, products []models.Product) error
}

// PolicyStore persists refreshed policies.
type PolicyStore interface {
	UpsertBatch(ctx context.Context, policies []models.Policy) error
}

// RefreshScheduler periodically syncs the product and policy catalog from
// the source gateway into the local store.
type RefreshScheduler struct {
	gateway   source.Gateway
	products  ProductStore
	policies  PolicyStore
	collector *metrics.Collector
	logger    *slog.Logger
	stopChan  chan struct{}
	interval  time.Duration
}

// NewRefreshScheduler creates a new catalog refresh scheduler. An interval
// of zero disables it.
func NewRefreshScheduler(
	gateway source.Gateway,
	products ProductStore,
	policies PolicyStore,
	collector *metrics.Collector,
	interval time.Duration,
	logger *slog.Logger,
) *RefreshScheduler {
	return &RefreshScheduler{
		gateway:   gateway,
		products:  products,
		policies:  policies,
		collector: collector,
		logger:    logger,
		stopChan:  make(chan struct{}),
		interval:  interval,
	}
}

// Start begins the refresh loop. The first refresh runs immediately.
func (s *RefreshScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Catalog refresh disabled")
		return
	}

	s.logger.Info("Starting catalog refresh", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.refresh(ctx)

	for {
		select {
		case <-ticker.C:
			s.refresh(ctx)
		case <-s.stopChan:
			s.logger.Info("Catalog refresh stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Catalog refresh stopping due to context cancellation")
			return
		}
	}
}

// Stop stops the scheduler
func (s *RefreshScheduler) Stop() {
	close(s.stopChan)
}

// refresh pulls the full catalog from the gateway and upserts it. A failure
// on one kind does not block the other.
func (s *RefreshScheduler) refresh(ctx context.Context) {
	mode := string(s.gateway.Mode())

	start := time.Now()
	products, err := s.gateway.FetchProducts(ctx, models.ProductFilter{})
	s.collector.ObserveSourceFetch("products", mode, time.Since(start))
	if err != nil {
		s.logger.Error("Failed to fetch products for refresh", "error", err)
	} else if len(products) > 0 {
		if err := s.products.UpsertBatch(ctx, products); err != nil {
			s.logger.Error("Failed to upsert refreshed products", "error", err)
		} else {
			s.logger.Info("Refreshed product catalog", "count", len(products))
		}
	}

	start = time.Now()
	policies, err := s.gateway.FetchPolicies(ctx, models.PolicyFilter{})
	s.collector.ObserveSourceFetch("policies", mode, time.Since(start))
	if err != nil {
		s.logger.Error("Failed to fetch policies for refresh", "error", err)
		return
	}
	if len(policies) > 0 {
		if err := s.policies.UpsertBatch(ctx, policies); err != nil {
			s.logger.Error("Failed to upsert refreshed policies", "error", err)
			return
		}
		s.logger.Info("Refreshed policy catalog", "count", len(policies))
	}
}
