package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	_ "github.com/lib/pq"

	"github.com/youthfin/yofin/internal/api"
	"github.com/youthfin/yofin/internal/auth"
	"github.com/youthfin/yofin/internal/cloudsql"
	"github.com/youthfin/yofin/internal/config"
	"github.com/youthfin/yofin/internal/database"
	"github.com/youthfin/yofin/internal/engine"
	"github.com/youthfin/yofin/internal/inference"
	"github.com/youthfin/yofin/internal/logging"
	"github.com/youthfin/yofin/internal/metrics"
	"github.com/youthfin/yofin/internal/preprocess"
	"github.com/youthfin/yofin/internal/scheduler"
	"github.com/youthfin/yofin/internal/server"
	"github.com/youthfin/yofin/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting yofin")

	// Connect to database (supports both local DATABASE_URL and Cloud SQL).
	// An unreachable database disables persistence routes but keeps the
	// gateway-backed recommendation flow alive.
	dbURL, err := cloudsql.BuildDatabaseURL()
	if err != nil {
		logger.Error("failed to build database URL", "error", err)
		os.Exit(1)
	}

	connConfig := cloudsql.GetConnectionConfig()
	logger.Info("database configuration", "config", connConfig)

	logger.Info("connecting to database")
	db, err := sql.Open("postgres", dbURL)
	if err == nil {
		err = db.Ping()
	}
	if err != nil {
		logger.Warn("database unavailable, persistence disabled", "error", err)
		if db != nil {
			db.Close()
		}
		db = nil
	} else {
		defer db.Close()
		logger.Info("database connected")

		// Run pending migrations (non-fatal to allow app to start even if migrations fail)
		if err := database.RunMigrations(db, cfg.Database.MigrationsDir, logger); err != nil {
			logger.Warn("failed to run migrations, continuing anyway", "error", err)
		}
	}

	// Create repositories. Every store stays nil without a database so the
	// API degrades route by route instead of refusing to boot.
	var (
		productRepo *database.ProductRepository
		policyRepo  *database.PolicyRepository

		productStore      api.ProductStore
		policyStore       api.PolicyStore
		portfolioStore    api.PortfolioStore
		historyStore      api.HistoryStore
		saver             api.RecommendationSaver
		inferenceLogStore api.InferenceLogStore
		inferenceStore    inference.LogStore
	)
	if db != nil {
		productRepo = database.NewProductRepository(db)
		policyRepo = database.NewPolicyRepository(db)
		productStore = productRepo
		policyStore = policyRepo
		portfolioStore = database.NewPortfolioRepository(db)
		historyStore = database.NewHistoryRepository(db)
		saver = database.NewRecommendationStore(db)

		inferenceRepo := database.NewInferenceLogRepository(db)
		inferenceLogStore = inferenceRepo
		inferenceStore = inferenceRepo
	}

	// Create inference logger
	inferenceLogger := inference.NewLogger(inferenceStore, logger)

	// Create the AI strategy when a provider is configured; otherwise every
	// recommendation takes the deterministic fallback.
	var (
		aiStrategy  engine.AIStrategy
		fieldMapper preprocess.FieldMapper
		aiProvider  string
	)
	if cfg.AI.Enabled() {
		aiCfg := engine.DefaultAIConfig()
		aiCfg.Provider = cfg.AI.Provider
		aiCfg.APIKey = cfg.AI.APIKey
		aiCfg.Model = cfg.AI.Model
		if cfg.AI.Timeout > 0 {
			aiCfg.Timeout = int(cfg.AI.Timeout.Seconds())
		}
		if cfg.AI.MaxRetries > 0 {
			aiCfg.MaxRetries = cfg.AI.MaxRetries
		}

		client, err := engine.NewAIClient(context.Background(), aiCfg, logger, inferenceLogger)
		if err != nil {
			logger.Warn("failed to initialize AI client, using fallback strategy", "error", err)
		} else {
			aiStrategy = client
			fieldMapper = client
			aiProvider = cfg.AI.Provider
			logger.Info("AI client initialized", "provider", aiCfg.Provider, "model", aiCfg.Model)
		}
	} else {
		logger.Info("no AI provider configured, using fallback strategy")
	}

	eng := engine.New(aiStrategy, logger)

	// Select the source gateway
	var gateway source.Gateway
	if cfg.Source.Live() {
		gateway = source.NewLiveGateway(cfg.Source.ProductServiceURL, cfg.Source.UserServiceURL, cfg.Source.Timeout, logger)
		logger.Info("using live source gateway",
			"product_service", cfg.Source.ProductServiceURL,
			"user_service", cfg.Source.UserServiceURL)
	} else {
		gateway = source.NewMockGateway()
		logger.Info("using mock source gateway")
	}

	// Setup HTTP routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := "ok"
		dbStatus := "ok"
		code := http.StatusOK
		if db == nil {
			status = "degraded"
			dbStatus = "unavailable"
			code = http.StatusServiceUnavailable
		} else if err := db.PingContext(r.Context()); err != nil {
			status = "degraded"
			dbStatus = "unreachable"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"status":%q,"database":%q,"source_mode":%q}`, status, dbStatus, gateway.Mode())
	})

	// Service info endpoint
	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		provider := aiProvider
		if provider == "" {
			provider = "none"
		}
		fmt.Fprintf(w, `{"service":"yofin","status":"ready","version":"0.1.0","source_mode":%q,"ai_provider":%q}`, gateway.Mode(), provider)
	})

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}
	mux.Handle("/metrics", collector.Handler())

	// Preprocessing service backing the admin route
	var preprocessor api.Preprocessor
	if db != nil {
		preprocessor = preprocess.New(productRepo, policyRepo, fieldMapper, preprocess.Mode(cfg.Preprocess.Mode), collector, logger)
	}

	// Load auth configuration
	authConfig := auth.LoadConfigFromEnv()
	logger.Info("auth configured", "jwt_secret_set", authConfig.JWTSecret != "change-this-secret")

	// Add REST API routes
	logger.Info("setting up REST API")
	api.SetupRoutes(mux, gateway, eng, productStore, policyStore, portfolioStore, saver, historyStore, inferenceLogStore, preprocessor, cfg.Preprocess.SeedDataDir, collector, authConfig, aiProvider, logger)

	// Start the catalog refresh scheduler
	if db != nil && cfg.Scheduler.RefreshInterval > 0 {
		logger.Info("starting catalog refresh scheduler", "interval", cfg.Scheduler.RefreshInterval)
		refresh := scheduler.NewRefreshScheduler(gateway, productRepo, policyRepo, collector, cfg.Scheduler.RefreshInterval, logger)
		go refresh.Start(context.Background())
	}

	// Start server
	srv := server.New(cfg.Server, logger, collector.InstrumentHandler(mux))

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("yofin started successfully")
	logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
