package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"log/slog"
)

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != defaultPort {
		t.Errorf("expected default port %q, got %q", defaultPort, cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != defaultReadTimeout {
		t.Errorf("expected default read timeout %v, got %v", defaultReadTimeout, cfg.Server.ReadTimeout)
	}
	if cfg.Logging.Level != slog.LevelInfo {
		t.Errorf("expected default log level %v, got %v", slog.LevelInfo, cfg.Logging.Level)
	}
	if cfg.Logging.Format != defaultLogFormat {
		t.Errorf("expected default log format %q, got %q", defaultLogFormat, cfg.Logging.Format)
	}
	if cfg.Database.MigrationsDir != defaultMigrationsDir {
		t.Errorf("expected default migrations dir %q, got %q", defaultMigrationsDir, cfg.Database.MigrationsDir)
	}
	if cfg.Source.Timeout != defaultSourceTimeout {
		t.Errorf("expected default source timeout %v, got %v", defaultSourceTimeout, cfg.Source.Timeout)
	}
	if cfg.Source.Live() {
		t.Error("expected mock mode when no source URLs are set")
	}
	if cfg.AI.Enabled() {
		t.Error("expected AI disabled when AI_PROVIDER is not set")
	}
	if cfg.AI.Timeout != defaultAITimeout {
		t.Errorf("expected default AI timeout %v, got %v", defaultAITimeout, cfg.AI.Timeout)
	}
	if cfg.AI.MaxRetries != defaultAIMaxRetries {
		t.Errorf("expected default AI max retries %d, got %d", defaultAIMaxRetries, cfg.AI.MaxRetries)
	}
	if cfg.Scheduler.RefreshInterval != 0 {
		t.Errorf("expected scheduler disabled by default, got %v", cfg.Scheduler.RefreshInterval)
	}
	if cfg.Preprocess.SeedDataDir != defaultSeedDataDir {
		t.Errorf("expected default seed dir %q, got %q", defaultSeedDataDir, cfg.Preprocess.SeedDataDir)
	}
	if cfg.Preprocess.Mode != defaultPreprocess {
		t.Errorf("expected default preprocess mode %q, got %q", defaultPreprocess, cfg.Preprocess.Mode)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	clearConfigEnv(t)

	overrides := map[string]string{
		"SERVER_PORT":                     "9090",
		"SERVER_READ_TIMEOUT_SECONDS":     "30",
		"SERVER_WRITE_TIMEOUT_SECONDS":    "45",
		"SERVER_SHUTDOWN_TIMEOUT_SECONDS": "15",
		"LOG_LEVEL":                       "debug",
		"LOG_FORMAT":                      "text",
		"MIGRATIONS_DIR":                  "/opt/migrations",
		"SOURCE_TIMEOUT_SECONDS":          "10",
		"REFRESH_INTERVAL_MINUTES":        "60",
		"SEED_DATA_DIR":                   "/opt/seed",
		"PREPROCESS_MODE":                 "ai",
	}
	for key, value := range overrides {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected overridden port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("expected read timeout %v, got %v", 30*time.Second, cfg.Server.ReadTimeout)
	}
	if cfg.Logging.Level != slog.LevelDebug {
		t.Errorf("expected log level %v, got %v", slog.LevelDebug, cfg.Logging.Level)
	}
	if cfg.Database.MigrationsDir != "/opt/migrations" {
		t.Errorf("expected migrations dir /opt/migrations, got %q", cfg.Database.MigrationsDir)
	}
	if cfg.Source.Timeout != 10*time.Second {
		t.Errorf("expected source timeout %v, got %v", 10*time.Second, cfg.Source.Timeout)
	}
	if cfg.Scheduler.RefreshInterval != time.Hour {
		t.Errorf("expected refresh interval %v, got %v", time.Hour, cfg.Scheduler.RefreshInterval)
	}
	if cfg.Preprocess.SeedDataDir != "/opt/seed" {
		t.Errorf("expected seed dir /opt/seed, got %q", cfg.Preprocess.SeedDataDir)
	}
	if cfg.Preprocess.Mode != "ai" {
		t.Errorf("expected preprocess mode ai, got %q", cfg.Preprocess.Mode)
	}
}

func TestCloudRunPortTakesPrecedence(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "8888")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != "8888" {
		t.Errorf("expected PORT to win over SERVER_PORT, got %q", cfg.Server.Port)
	}
}

func TestSourceModeSelection(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PRODUCT_SERVICE_URL", "http://products.internal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Source.Live() {
		t.Error("expected mock mode with only the product URL set")
	}

	t.Setenv("USER_SERVICE_URL", "http://users.internal")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if !cfg.Source.Live() {
		t.Error("expected live mode with both source URLs set")
	}
}

func TestAIProviderSelection(t *testing.T) {
	tests := []struct {
		provider      string
		keyVar        string
		expectedModel string
	}{
		{"openai", "OPENAI_API_KEY", defaultOpenAIModel},
		{"anthropic", "ANTHROPIC_API_KEY", defaultAnthropicModel},
		{"gemini", "GEMINI_API_KEY", defaultGeminiModel},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("AI_PROVIDER", tt.provider)
			t.Setenv(tt.keyVar, "test-key")

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned error: %v", err)
			}
			if !cfg.AI.Enabled() {
				t.Fatal("expected AI enabled")
			}
			if cfg.AI.APIKey != "test-key" {
				t.Errorf("expected API key test-key, got %q", cfg.AI.APIKey)
			}
			if cfg.AI.Model != tt.expectedModel {
				t.Errorf("expected default model %q, got %q", tt.expectedModel, cfg.AI.Model)
			}
		})
	}
}

func TestAIProviderModelOverride(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.AI.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", cfg.AI.Model)
	}
}

func TestAIProviderWithoutKeyFails(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("AI_PROVIDER", "anthropic")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when provider is set without an API key")
	}
}

func TestLoadWithInvalidValues(t *testing.T) {
	tests := map[string]string{
		"SERVER_READ_TIMEOUT_SECONDS":     "-1",
		"SERVER_WRITE_TIMEOUT_SECONDS":    "abc",
		"SERVER_SHUTDOWN_TIMEOUT_SECONDS": "3.5",
		"LOG_LEVEL":                       "verbose",
		"LOG_FORMAT":                      "xml",
		"SOURCE_TIMEOUT_SECONDS":          "-5",
		"AI_PROVIDER":                     "bedrock",
		"AI_MAX_RETRIES":                  "-1",
		"REFRESH_INTERVAL_MINUTES":        "sometimes",
		"PREPROCESS_MODE":                 "magic",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(key, value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error when %s=%q", key, value)
			}
		})
	}
}

func TestConfigFileOverlay(t *testing.T) {
	clearConfigEnv(t)

	content := `
[server]
port = "7070"

[source]
product_service_url = "http://file-products"
user_service_url = "http://file-users"
timeout_seconds = 5

[scheduler]
refresh_interval_minutes = 30

[preprocess]
mode = "ai"
`
	path := filepath.Join(t.TempDir(), "yofin.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("expected file port 7070, got %q", cfg.Server.Port)
	}
	if !cfg.Source.Live() {
		t.Error("expected live mode from file URLs")
	}
	if cfg.Source.Timeout != 5*time.Second {
		t.Errorf("expected file source timeout %v, got %v", 5*time.Second, cfg.Source.Timeout)
	}
	if cfg.Scheduler.RefreshInterval != 30*time.Minute {
		t.Errorf("expected file refresh interval %v, got %v", 30*time.Minute, cfg.Scheduler.RefreshInterval)
	}
	if cfg.Preprocess.Mode != "ai" {
		t.Errorf("expected file preprocess mode ai, got %q", cfg.Preprocess.Mode)
	}
}

func TestEnvWinsOverConfigFile(t *testing.T) {
	clearConfigEnv(t)

	content := `
[server]
port = "7070"
`
	path := filepath.Join(t.TempDir(), "yofin.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "9191")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != "9191" {
		t.Errorf("expected env port 9191 to win over file, got %q", cfg.Server.Port)
	}
}

func TestConfigFileMissing(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing CONFIG_FILE")
	}
}

func TestParseLogLevelAliases(t *testing.T) {
	tests := map[string]slog.Level{
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
	}

	for input, expected := range tests {
		level, err := parseLogLevel(input)
		if err != nil {
			t.Fatalf("parseLogLevel(%q) returned error: %v", input, err)
		}

		if level != expected {
			t.Errorf("parseLogLevel(%q) = %v, want %v", input, level, expected)
		}
	}
}

func TestParseSecondsRejectsInvalidInput(t *testing.T) {
	cases := []string{"-1", "abc"}

	for _, input := range cases {
		if _, err := parseSeconds(input); err == nil {
			t.Fatalf("expected error for input %q", input)
		}
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT",
		"SERVER_PORT",
		"SERVER_READ_TIMEOUT_SECONDS",
		"SERVER_WRITE_TIMEOUT_SECONDS",
		"SERVER_SHUTDOWN_TIMEOUT_SECONDS",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"CONFIG_FILE",
		"MIGRATIONS_DIR",
		"PRODUCT_SERVICE_URL",
		"USER_SERVICE_URL",
		"SOURCE_TIMEOUT_SECONDS",
		"AI_PROVIDER",
		"OPENAI_API_KEY",
		"OPENAI_MODEL",
		"ANTHROPIC_API_KEY",
		"ANTHROPIC_MODEL",
		"GEMINI_API_KEY",
		"GEMINI_MODEL",
		"AI_TIMEOUT_SECONDS",
		"AI_MAX_RETRIES",
		"REFRESH_INTERVAL_MINUTES",
		"SEED_DATA_DIR",
		"PREPROCESS_MODE",
	}

	for _, key := range keys {
		t.Setenv(key, "")
	}
}
