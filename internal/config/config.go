package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config represents runtime configuration derived from environment variables,
// optionally seeded from a TOML file named by CONFIG_FILE. Environment
// variables always win over file values.
type Config struct {
	Server     ServerConfig
	Logging    LoggingConfig
	Database   DatabaseConfig
	Source     SourceConfig
	AI         AIConfig
	Scheduler  SchedulerConfig
	Preprocess PreprocessConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// DatabaseConfig holds database-adjacent settings. The connection string
// itself is assembled by the cloudsql package from its own variables.
type DatabaseConfig struct {
	MigrationsDir string
}

// SourceConfig selects and parameterizes the upstream data gateway.
type SourceConfig struct {
	ProductServiceURL string
	UserServiceURL    string
	Timeout           time.Duration
}

// Live reports whether both upstream base URLs are configured. Anything less
// runs against the deterministic mock gateway.
func (s SourceConfig) Live() bool {
	return s.ProductServiceURL != "" && s.UserServiceURL != ""
}

// AIConfig selects and parameterizes the recommendation model provider.
// An empty Provider disables AI generation entirely.
type AIConfig struct {
	Provider   string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Enabled reports whether an AI provider has been configured.
func (a AIConfig) Enabled() bool {
	return a.Provider != ""
}

// SchedulerConfig controls the periodic product/policy refresh loop.
// A zero RefreshInterval disables the scheduler.
type SchedulerConfig struct {
	RefreshInterval time.Duration
}

// PreprocessConfig controls the seed-data preprocessing pipeline.
type PreprocessConfig struct {
	SeedDataDir string
	Mode        string
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultMigrationsDir = "./migrations"
	defaultSourceTimeout = 30 * time.Second
	defaultAITimeout     = 30 * time.Second
	defaultAIMaxRetries  = 2
	defaultSeedDataDir   = "data/seed"
	defaultPreprocess    = "rule"

	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultGeminiModel    = "gemini-2.0-flash"
)

// fileConfig is the TOML overlay shape. Zero values mean "not set" and leave
// the default or environment value in place.
type fileConfig struct {
	Server struct {
		Port string `toml:"port"`
	} `toml:"server"`
	Logging struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"logging"`
	Source struct {
		ProductServiceURL string `toml:"product_service_url"`
		UserServiceURL    string `toml:"user_service_url"`
		TimeoutSeconds    int    `toml:"timeout_seconds"`
	} `toml:"source"`
	Scheduler struct {
		RefreshIntervalMinutes int `toml:"refresh_interval_minutes"`
	} `toml:"scheduler"`
	Preprocess struct {
		SeedDataDir string `toml:"seed_data_dir"`
		Mode        string `toml:"mode"`
	} `toml:"preprocess"`
}

// Load reads configuration from the environment, applying defaults when
// values are not provided. A .env file in the working directory is loaded
// first if present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			Port:            defaultPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Database: DatabaseConfig{
			MigrationsDir: defaultMigrationsDir,
		},
		Source: SourceConfig{
			Timeout: defaultSourceTimeout,
		},
		AI: AIConfig{
			Timeout:    defaultAITimeout,
			MaxRetries: defaultAIMaxRetries,
		},
		Preprocess: PreprocessConfig{
			SeedDataDir: defaultSeedDataDir,
			Mode:        defaultPreprocess,
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, fmt.Errorf("failed to apply CONFIG_FILE: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if fc.Server.Port != "" {
		cfg.Server.Port = fc.Server.Port
	}
	if fc.Logging.Level != "" {
		level, err := parseLogLevel(fc.Logging.Level)
		if err != nil {
			return fmt.Errorf("invalid logging.level: %w", err)
		}
		cfg.Logging.Level = level
	}
	if fc.Logging.Format != "" {
		cfg.Logging.Format = fc.Logging.Format
	}
	if fc.Source.ProductServiceURL != "" {
		cfg.Source.ProductServiceURL = fc.Source.ProductServiceURL
	}
	if fc.Source.UserServiceURL != "" {
		cfg.Source.UserServiceURL = fc.Source.UserServiceURL
	}
	if fc.Source.TimeoutSeconds > 0 {
		cfg.Source.Timeout = time.Duration(fc.Source.TimeoutSeconds) * time.Second
	}
	if fc.Scheduler.RefreshIntervalMinutes > 0 {
		cfg.Scheduler.RefreshInterval = time.Duration(fc.Scheduler.RefreshIntervalMinutes) * time.Minute
	}
	if fc.Preprocess.SeedDataDir != "" {
		cfg.Preprocess.SeedDataDir = fc.Preprocess.SeedDataDir
	}
	if fc.Preprocess.Mode != "" {
		cfg.Preprocess.Mode = fc.Preprocess.Mode
	}

	return nil
}

func applyEnv(cfg *Config) error {
	// Cloud Run sets PORT, but allow SERVER_PORT override for local dev
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	} else if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_READ_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}

	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		cfg.Database.MigrationsDir = v
	}

	if v := os.Getenv("PRODUCT_SERVICE_URL"); v != "" {
		cfg.Source.ProductServiceURL = v
	}
	if v := os.Getenv("USER_SERVICE_URL"); v != "" {
		cfg.Source.UserServiceURL = v
	}
	if v := os.Getenv("SOURCE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid SOURCE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Source.Timeout = d
	}

	cfg.AI.Provider = os.Getenv("AI_PROVIDER")
	switch cfg.AI.Provider {
	case "":
	case "openai":
		cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
		cfg.AI.Model = getEnv("OPENAI_MODEL", defaultOpenAIModel)
	case "anthropic":
		cfg.AI.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		cfg.AI.Model = getEnv("ANTHROPIC_MODEL", defaultAnthropicModel)
	case "gemini":
		cfg.AI.APIKey = os.Getenv("GEMINI_API_KEY")
		cfg.AI.Model = getEnv("GEMINI_MODEL", defaultGeminiModel)
	default:
		return fmt.Errorf("invalid AI_PROVIDER: must be one of openai, anthropic, gemini")
	}

	if v := os.Getenv("AI_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid AI_TIMEOUT_SECONDS: %w", err)
		}
		cfg.AI.Timeout = d
	}

	if v := os.Getenv("AI_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid AI_MAX_RETRIES: must be a non-negative integer")
		}
		cfg.AI.MaxRetries = n
	}

	if v := os.Getenv("REFRESH_INTERVAL_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid REFRESH_INTERVAL_MINUTES: must be a non-negative integer")
		}
		cfg.Scheduler.RefreshInterval = time.Duration(n) * time.Minute
	}

	if v := os.Getenv("SEED_DATA_DIR"); v != "" {
		cfg.Preprocess.SeedDataDir = v
	}
	if v := os.Getenv("PREPROCESS_MODE"); v != "" {
		cfg.Preprocess.Mode = v
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.AI.Enabled() && cfg.AI.APIKey == "" {
		return fmt.Errorf("AI_PROVIDER is %s but its API key is not set", cfg.AI.Provider)
	}

	switch cfg.Preprocess.Mode {
	case "rule", "ai":
	default:
		return fmt.Errorf("invalid PREPROCESS_MODE: must be 'rule' or 'ai'")
	}

	return nil
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
