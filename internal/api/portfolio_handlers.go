package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/youthfin/yofin/internal/analyzer"
	"github.com/youthfin/yofin/internal/engine"
	"github.com/youthfin/yofin/internal/metrics"
	"github.com/youthfin/yofin/internal/models"
	"github.com/youthfin/yofin/internal/source"
)

// persistTimeout bounds the background write that follows a recommendation.
const persistTimeout = 10 * time.Second

// PortfolioHandler handles recommendation and portfolio requests
type PortfolioHandler struct {
	gateway    source.Gateway
	engine     *engine.Engine
	analyzer   *analyzer.Analyzer
	portfolios PortfolioStore
	saver      RecommendationSaver
	collector  *metrics.Collector
	aiProvider string
	logger     *slog.Logger
}

// NewPortfolioHandler creates a new portfolio handler. portfolios and saver
// may be nil when the database is unavailable; the recommendation flow keeps
// working without persistence.
func NewPortfolioHandler(
	gateway source.Gateway,
	eng *engine.Engine,
	an *analyzer.Analyzer,
	portfolios PortfolioStore,
	saver RecommendationSaver,
	collector *metrics.Collector,
	aiProvider string,
	logger *slog.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		gateway:    gateway,
		engine:     eng,
		analyzer:   an,
		portfolios: portfolios,
		saver:      saver,
		collector:  collector,
		aiProvider: aiProvider,
		logger:     logger,
	}
}

// RecommendRequest represents a recommendation request. A caller either
// names a known user or submits a profile inline.
type RecommendRequest struct {
	UserID  string              `json:"user_id"`
	Profile *models.UserProfile `json:"profile,omitempty"`
}

// PortfolioResponse represents a user's current portfolio
type PortfolioResponse struct {
	UserID string                  `json:"user_id"`
	Items  []models.AllocationItem `json:"items"`
	Count  int                     `json:"count"`
}

// AddItemsRequest represents directly submitted portfolio items
type AddItemsRequest struct {
	Items []models.AllocationItem `json:"items"`
}

// Recommend handles POST /api/v1/portfolio/recommend
func (h *PortfolioHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := ValidateRecommendRequest(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	mode := string(h.gateway.Mode())

	var profile models.UserProfile
	if req.Profile != nil {
		profile = *req.Profile
		if profile.UserID == "" {
			profile.UserID = req.UserID
		}
	} else {
		start := time.Now()
		fetched, err := h.gateway.FetchUserProfile(ctx, req.UserID)
		h.collector.ObserveSourceFetch("user_profile", mode, time.Since(start))
		if err != nil {
			respondError(w, h.logger, "failed to fetch user profile", err)
			return
		}
		profile = *fetched
	}

	start := time.Now()
	products, err := h.gateway.FetchProducts(ctx, models.ProductFilter{})
	h.collector.ObserveSourceFetch("products", mode, time.Since(start))
	if err != nil {
		respondError(w, h.logger, "failed to fetch products", err)
		return
	}
	if len(products) == 0 {
		respondError(w, h.logger, "no products available", models.ErrNoEligibleProducts)
		return
	}

	policyFilter := models.PolicyFilter{}
	if profile.Age > 0 {
		age := profile.Age
		policyFilter.Age = &age
	}

	start = time.Now()
	policies, err := h.gateway.FetchPolicies(ctx, policyFilter)
	h.collector.ObserveSourceFetch("policies", mode, time.Since(start))
	if err != nil {
		respondError(w, h.logger, "failed to fetch policies", err)
		return
	}

	rec, err := h.engine.GenerateRecommendation(ctx, profile, products, policies)
	if err != nil {
		respondError(w, h.logger, "failed to generate recommendation", err)
		return
	}

	h.collector.RecordRecommendation(string(rec.Strategy), h.aiProvider)
	if h.aiProvider != "" && rec.Strategy == models.StrategyFallback {
		h.collector.RecordAIFailure(h.aiProvider)
	}

	// Persist in the background so a slow or degraded database never
	// delays the response. Anonymous inline profiles are not persisted.
	if h.saver != nil && rec.UserID != "" {
		saved := *rec
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()
			if err := h.saver.Save(ctx, saved); err != nil {
				h.logger.Warn("failed to persist recommendation", "user_id", saved.UserID, "error", err)
			}
		}()
	}

	writeJSON(w, http.StatusOK, rec)
}

// GetAnalysis handles GET /api/v1/portfolio/analysis/{userID}
func (h *PortfolioHandler) GetAnalysis(w http.ResponseWriter, r *http.Request, userID string) {
	if h.portfolios == nil {
		http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}

	items, err := h.portfolios.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, "failed to load portfolio", err)
		return
	}
	if len(items) == 0 {
		respondError(w, h.logger, "portfolio is empty", models.ErrEmptyPortfolio)
		return
	}

	start := time.Now()
	products, err := h.gateway.FetchProducts(r.Context(), models.ProductFilter{})
	h.collector.ObserveSourceFetch("products", string(h.gateway.Mode()), time.Since(start))
	if err != nil {
		respondError(w, h.logger, "failed to fetch products", err)
		return
	}

	byCode := make(map[string]models.Product, len(products))
	for _, p := range products {
		byCode[p.ProductCode] = p
	}

	analysis, err := h.analyzer.Analyze(userID, items, byCode)
	if err != nil {
		respondError(w, h.logger, "failed to analyze portfolio", err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// GetPortfolio handles GET /api/v1/portfolio/{userID}
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request, userID string) {
	if h.portfolios == nil {
		http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}

	items, err := h.portfolios.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, "failed to load portfolio", err)
		return
	}

	if items == nil {
		items = []models.AllocationItem{}
	}

	writeJSON(w, http.StatusOK, PortfolioResponse{
		UserID: userID,
		Items:  items,
		Count:  len(items),
	})
}

// AddItems handles POST /api/v1/portfolio/{userID}/items
func (h *PortfolioHandler) AddItems(w http.ResponseWriter, r *http.Request, userID string) {
	if h.portfolios == nil {
		http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}

	var req AddItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := ValidateAllocationItems(req.Items); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.portfolios.AddForUser(r.Context(), userID, req.Items); err != nil {
		respondError(w, h.logger, "failed to add portfolio items", err)
		return
	}

	h.logger.Info("portfolio items added", "user_id", userID, "count", len(req.Items))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "added",
		"user_id": userID,
		"count":   len(req.Items),
	})
}
