// Package config loads flashcardsd settings from a TOML file, a .env file
// and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the service configuration.
type Config struct {
	App      AppConfig      `toml:"app"`
	Data     DataConfig     `toml:"data"`
	Review   ReviewConfig   `toml:"review"`
	Wanikani WanikaniConfig `toml:"wanikani"`
	Auth     AuthConfig     `toml:"auth"`
}

// AppConfig contains process settings.
type AppConfig struct {
	Port      int    `toml:"port"`
	LogLevel  string `toml:"log_level"`  // debug, info, warn or error
	LogFormat string `toml:"log_format"` // json or text
}

// DataConfig contains database settings.
type DataConfig struct {
	Path        string `toml:"path"`         // SQLite file
	AutoMigrate bool   `toml:"auto_migrate"` // apply migrations on start
}

// ReviewConfig contains session tuning.
type ReviewConfig struct {
	ClumpSize      int    `toml:"clump_size"`
	LessonBatch    int    `toml:"lesson_batch"`
	ForecastWindow string `toml:"forecast_window"` // e.g. "168h"
}

// WanikaniConfig contains provider client settings.
type WanikaniConfig struct {
	BaseURL           string `toml:"base_url"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// AuthConfig selects how requests are authenticated.
type AuthConfig struct {
	Mock   bool   `toml:"mock"`   // accept the mock token as the mock user
	Header string `toml:"header"` // user id header set by the auth proxy
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Port:      8080,
			LogLevel:  "info",
			LogFormat: "json",
		},
		Data: DataConfig{
			Path:        "data/flashcards.db",
			AutoMigrate: true,
		},
		Review: ReviewConfig{
			ClumpSize:      10,
			LessonBatch:    5,
			ForecastWindow: "168h",
		},
		Wanikani: WanikaniConfig{
			BaseURL:           "https://api.wanikani.com/v2",
			RequestsPerMinute: 60,
		},
		Auth: AuthConfig{
			Header: "X-User-ID",
		},
	}
}

// Load reads the configuration. A missing TOML file leaves the defaults in
// place; a missing .env file is ignored. Environment variables override both.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.App.Port = envInt("FLASHCARDS_PORT", c.App.Port)
	c.App.LogLevel = envStr("FLASHCARDS_LOG_LEVEL", c.App.LogLevel)
	c.App.LogFormat = envStr("FLASHCARDS_LOG_FORMAT", c.App.LogFormat)
	c.Data.Path = envStr("FLASHCARDS_DB_PATH", c.Data.Path)
	c.Wanikani.BaseURL = envStr("FLASHCARDS_WANIKANI_URL", c.Wanikani.BaseURL)
	c.Auth.Mock = envBool("FLASHCARDS_AUTH_MOCK", c.Auth.Mock)
	c.Auth.Header = envStr("FLASHCARDS_AUTH_HEADER", c.Auth.Header)
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.App.Port < 1 || c.App.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.App.Port)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if f := c.App.LogFormat; f != "json" && f != "text" {
		return fmt.Errorf("log format must be json or text, got %q", f)
	}
	if c.Data.Path == "" {
		return errors.New("data path must not be empty")
	}
	if c.Review.ClumpSize < 1 {
		return fmt.Errorf("clump size must be positive, got %d", c.Review.ClumpSize)
	}
	if c.Review.LessonBatch < 1 {
		return fmt.Errorf("lesson batch must be positive, got %d", c.Review.LessonBatch)
	}
	if d, err := time.ParseDuration(c.Review.ForecastWindow); err != nil {
		return fmt.Errorf("invalid forecast window %q: %w", c.Review.ForecastWindow, err)
	} else if d <= 0 {
		return fmt.Errorf("forecast window must be positive, got %s", d)
	}
	if c.Wanikani.RequestsPerMinute < 1 {
		return fmt.Errorf("wanikani requests per minute must be positive, got %d", c.Wanikani.RequestsPerMinute)
	}
	return nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.App.LogLevel, err)
	}
	return level, nil
}

// ForecastWindow returns the forecast window as a duration.
func (c *Config) ForecastWindow() time.Duration {
	d, _ := time.ParseDuration(c.Review.ForecastWindow)
	return d
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}
