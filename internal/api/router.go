package api

import (
	"net/http"
	"strings"

	"log/slog"

	"github.com/youthfin/yofin/internal/analyzer"
	"github.com/youthfin/yofin/internal/auth"
	"github.com/youthfin/yofin/internal/engine"
	"github.com/youthfin/yofin/internal/metrics"
	"github.com/youthfin/yofin/internal/source"
)

// allowCORS sets the CORS headers every API route shares.
func allowCORS(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// pathSegment extracts the single path element between prefix and suffix.
// It returns "" when the remainder is empty or spans multiple elements.
func pathSegment(path, prefix, suffix string) string {
	s := strings.TrimPrefix(path, prefix)
	s = strings.TrimSuffix(s, suffix)
	s = strings.Trim(s, "/")
	if strings.Contains(s, "/") {
		return ""
	}
	return s
}

// SetupRoutes configures all API routes. The store arguments may be nil when
// the database is unavailable; the affected routes then answer 503 while the
// gateway-backed recommendation flow stays up.
func SetupRoutes(mux *http.ServeMux, gateway source.Gateway, eng *engine.Engine, products ProductStore, policies PolicyStore, portfolios PortfolioStore, saver RecommendationSaver, history HistoryStore, inferenceLogs InferenceLogStore, preprocessor Preprocessor, seedDir string, collector *metrics.Collector, authConfig auth.Config, aiProvider string, logger *slog.Logger) {
	portfolioHandler := NewPortfolioHandler(gateway, eng, analyzer.New(), portfolios, saver, collector, aiProvider, logger)
	productHandler := NewProductHandler(products, logger)
	policyHandler := NewPolicyHandler(policies, logger)
	userHandler := NewUserHandler(gateway, collector, logger)
	historyHandler := NewHistoryHandler(history, logger)
	inferenceLogHandler := NewInferenceLogHandler(inferenceLogs, logger)
	authHandler := NewAuthHandler(authConfig, logger)
	adminHandler := NewAdminHandler(preprocessor, seedDir, logger)

	// Auth middleware
	authMiddleware := auth.AuthMiddleware(authConfig)

	// Authentication routes (public)
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(authHandler.ValidateToken)).ServeHTTP(w, r)
	})

	// Recommendation flow (public)
	mux.HandleFunc("/api/v1/portfolio/recommend", func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w, "POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		portfolioHandler.Recommend(w, r)
	})

	mux.HandleFunc("/api/v1/portfolio/analysis/", func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w, "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		userID := pathSegment(r.URL.Path, "/api/v1/portfolio/analysis/", "")
		if userID == "" {
			http.Error(w, "User ID is required", http.StatusBadRequest)
			return
		}
		portfolioHandler.GetAnalysis(w, r, userID)
	})

	mux.HandleFunc("/api/v1/portfolio/", func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w, "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		// POST /api/v1/portfolio/{userID}/items requires auth
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/items") {
			authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				userID := pathSegment(r.URL.Path, "/api/v1/portfolio/", "/items")
				if userID == "" {
					http.Error(w, "User ID is required", http.StatusBadRequest)
					return
				}
				portfolioHandler.AddItems(w, r, userID)
			})).ServeHTTP(w, r)
			return
		}

		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		userID := pathSegment(r.URL.Path, "/api/v1/portfolio/", "")
		if userID == "" {
			http.Error(w, "User ID is required", http.StatusBadRequest)
			return
		}
		portfolioHandler.GetPortfolio(w, r, userID)
	})

	// Product catalog
	mux.HandleFunc("/api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w, "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if products == nil {
			http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}
		switch r.Method {
		case http.MethodGet:
			productHandler.ListProducts(w, r)
		case http.MethodPost:
			authMiddleware(http.HandlerFunc(productHandler.CreateProduct)).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/products/", func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w, "GET, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if products == nil {
			http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}
		code := pathSegment(r.URL.Path, "/api/v1/products/", "")
		if code == "" {
			http.Error(w, "Product code is required", http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodGet:
			productHandler.GetProduct(w, r, code)
		case http.MethodPut:
			authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				productHandler.UpdateProduct(w, r, code)
			})).ServeHTTP(w, r)
		case http.MethodDelete:
			authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				productHandler.DeleteProduct(w, r, code)
			})).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Youth policy catalog
	mux.HandleFunc("/api/v1/policies", func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w, "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if policies == nil {
			http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}
		switch r.Method {
		case http.MethodGet:
			policyHandler.ListPolicies(w, r)
		case http.MethodPost:
			authMiddleware(http.HandlerFunc(policyHandler.CreatePolicy)).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/policies/", func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w, "GET, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if policies == nil {
			http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}
		code := pathSegment(r.URL.Path, "/api/v1/policies/", "")
		if code == "" {
			http.Error(w, "Policy code is required", http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodGet:
			policyHandler.GetPolicy(w, r, code)
		case http.MethodPut:
			authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				policyHandler.UpdatePolicy(w, r, code)
			})).ServeHTTP(w, r)
		case http.MethodDelete:
			authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				policyHandler.DeletePolicy(w, r, code)
			})).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// User profiles (served through the source gateway)
	mux.HandleFunc("/api/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w, "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		userID := pathSegment(r.URL.Path, "/api/v1/users/", "")
		if userID == "" {
			http.Error(w, "User ID is required", http.StatusBadRequest)
			return
		}
		userHandler.GetUser(w, r, userID)
	})

	// Recommendation history
	mux.HandleFunc("/api/v1/recommendations/", func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w, "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/history") {
			userID := pathSegment(r.URL.Path, "/api/v1/recommendations/", "/history")
			if userID == "" {
				http.Error(w, "User ID is required", http.StatusBadRequest)
				return
			}
			historyHandler.GetHistory(w, r, userID)
			return
		}
		http.Error(w, "Not found", http.StatusNotFound)
	})

	// Admin routes (require auth)
	mux.HandleFunc("/api/v1/admin/preprocess", func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w, "POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		authMiddleware(http.HandlerFunc(adminHandler.RunPreprocess)).ServeHTTP(w, r)
	})

	mux.HandleFunc("/api/v1/admin/inference-logs", func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w, "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		authMiddleware(http.HandlerFunc(inferenceLogHandler.ListInferenceLogs)).ServeHTTP(w, r)
	})

	mux.HandleFunc("/api/v1/admin/inference-logs/stats", func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w, "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		authMiddleware(http.HandlerFunc(inferenceLogHandler.GetInferenceStats)).ServeHTTP(w, r)
	})

	// Catch-all preflight for any unmatched API path
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			allowCORS(w, "GET, POST, PUT, DELETE, OPTIONS")
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "Not found", http.StatusNotFound)
	})
}
