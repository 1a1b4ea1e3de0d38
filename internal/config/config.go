package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"simcheck/internal/external"
)

const (
	SettingsFile = "settings.toml"
	envPrefix    = "SIMCHECK_"
)

type External struct {
	Mode          string  `toml:"mode" validate:"oneof=disabled mock web"`
	Endpoint      string  `toml:"endpoint" validate:"required_if=Mode web"`
	APIKey        string  `toml:"api_key"`
	MaxQueries    int     `toml:"max_queries" validate:"min=1,max=20"`
	MatchRatio    float64 `toml:"match_ratio" validate:"gt=0,lte=100"`
	TimeoutMs     int     `toml:"timeout_ms" validate:"min=100"`
	RatePerSecond float64 `toml:"rate_per_second" validate:"gte=0"`
	Retries       int     `toml:"retries" validate:"min=0,max=10"`
}

type Config struct {
	Threshold         int      `toml:"threshold" validate:"min=0"`
	Workers           int      `toml:"workers" validate:"min=0"`
	MaxDocuments      int      `toml:"max_documents" validate:"min=2,max=100"`
	SegmentDisplayMin float64  `toml:"segment_display_min" validate:"gte=0,lte=100"`
	LogLevel          string   `toml:"log_level" validate:"oneof=trace debug info warn error"`
	Color             bool     `toml:"color"`
	Database          string   `toml:"database"`
	External          External `toml:"external"`
}

func Default() Config {
	return Config{
		Threshold:         20,
		Workers:           0,
		MaxDocuments:      10,
		SegmentDisplayMin: 30,
		LogLevel:          "info",
		Color:             true,
		Database:          "simcheck.db",
		External: External{
			Mode:          external.ModeDisabled,
			MaxQueries:    3,
			MatchRatio:    60,
			TimeoutMs:     10000,
			RatePerSecond: 1,
			Retries:       2,
		},
	}
}

// Load layers configuration: defaults, then <workspaceRoot>/configs/settings.toml
// when present, then a .env file in the working directory, then SIMCHECK_*
// environment variables. The result is validated.
func Load(workspaceRoot string) (Config, error) {
	cfg := Default()
	if workspaceRoot != "" {
		path := filepath.Join(workspaceRoot, "configs", SettingsFile)
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse settings %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Threshold = getenvInt("THRESHOLD", cfg.Threshold)
	cfg.Workers = getenvInt("WORKERS", cfg.Workers)
	cfg.MaxDocuments = getenvInt("MAX_DOCUMENTS", cfg.MaxDocuments)
	cfg.SegmentDisplayMin = getenvFloat("SEGMENT_DISPLAY_MIN", cfg.SegmentDisplayMin)
	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL", cfg.LogLevel))
	cfg.Color = getenvBool("COLOR", cfg.Color)
	cfg.Database = getenv("DATABASE", cfg.Database)

	cfg.External.Mode = strings.ToLower(getenv("EXTERNAL_MODE", cfg.External.Mode))
	cfg.External.Endpoint = getenv("EXTERNAL_ENDPOINT", cfg.External.Endpoint)
	cfg.External.APIKey = getenv("EXTERNAL_API_KEY", cfg.External.APIKey)
	cfg.External.MaxQueries = getenvInt("EXTERNAL_MAX_QUERIES", cfg.External.MaxQueries)
	cfg.External.MatchRatio = getenvFloat("EXTERNAL_MATCH_RATIO", cfg.External.MatchRatio)
	cfg.External.TimeoutMs = getenvInt("EXTERNAL_TIMEOUT_MS", cfg.External.TimeoutMs)
	cfg.External.RatePerSecond = getenvFloat("EXTERNAL_RATE_PER_SECOND", cfg.External.RatePerSecond)
	cfg.External.Retries = getenvInt("EXTERNAL_RETRIES", cfg.External.Retries)
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) WebSearch() external.WebSearchConfig {
	return external.WebSearchConfig{
		Endpoint:      c.External.Endpoint,
		APIKey:        c.External.APIKey,
		MaxQueries:    c.External.MaxQueries,
		MinQueryChars: 30,
		MaxQueryWords: 32,
		MatchRatio:    c.External.MatchRatio,
		Timeout:       time.Duration(c.External.TimeoutMs) * time.Millisecond,
		RatePerSecond: c.External.RatePerSecond,
		Retries:       c.External.Retries,
	}
}

// WriteDefault writes the default settings to path unless it already exists.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	raw, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func getenv(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(envPrefix + name)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(envPrefix + name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getenvFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(envPrefix + name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getenvBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(envPrefix + name)))
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
