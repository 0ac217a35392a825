package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"os"

	"log/slog"

	_ "github.com/lib/pq"

	"github.com/youthfin/yofin/internal/cloudsql"
	"github.com/youthfin/yofin/internal/config"
	"github.com/youthfin/yofin/internal/database"
	"github.com/youthfin/yofin/internal/engine"
	"github.com/youthfin/yofin/internal/inference"
	"github.com/youthfin/yofin/internal/logging"
	"github.com/youthfin/yofin/internal/preprocess"
)

// One-shot seed data ingestion. Reads every JSON file in the seed directory,
// normalizes the records and upserts them into the catalog tables.
func main() {
	dirFlag := flag.String("dir", "", "seed data directory (overrides SEED_DATA_DIR)")
	modeFlag := flag.String("mode", "", "normalization mode, rule or ai (overrides PREPROCESS_MODE)")
	flag.Parse()

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

	dir := cfg.Preprocess.SeedDataDir
	if *dirFlag != "" {
		dir = *dirFlag
	}
	mode := cfg.Preprocess.Mode
	if *modeFlag != "" {
		mode = *modeFlag
	}

	logger.Info("starting preprocess run", "dir", dir, "mode", mode)

	dbURL, err := cloudsql.BuildDatabaseURL()
	if err != nil {
		logger.Error("failed to build database URL", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(db, cfg.Database.MigrationsDir, logger); err != nil {
		logger.Warn("failed to run migrations, continuing anyway", "error", err)
	}

	productRepo := database.NewProductRepository(db)
	policyRepo := database.NewPolicyRepository(db)
	inferenceLogger := inference.NewLogger(database.NewInferenceLogRepository(db), logger)

	var mapper preprocess.FieldMapper
	if mode == string(preprocess.ModeAI) {
		if !cfg.AI.Enabled() {
			logger.Warn("ai mode requested but no provider configured, using rule mode")
		} else {
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
				logger.Warn("failed to initialize AI client, using rule mode", "error", err)
			} else {
				mapper = client
			}
		}
	}

	svc := preprocess.New(productRepo, policyRepo, mapper, preprocess.Mode(mode), nil, logger)

	report, err := svc.Run(context.Background(), dir)
	if err != nil {
		logger.Error("preprocess run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("preprocess run complete",
		"files", len(report.Files),
		"loaded", report.Loaded,
		"normalized", report.Normalized,
		"upserted", report.Upserted,
		"skipped", report.Skipped,
		"duration_ms", report.DurationMS)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error("failed to render report", "error", err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
}
