// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Cache backends.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is the complete server configuration.
type Config struct {
	Port       int
	StaticPath string

	LogLevel  string
	LogFormat string

	CacheBackend string
	DBPath       string
	RedisURL     string
	CacheTTL     time.Duration

	Gemini  GeminiConfig
	Suggest SuggestConfig
	Export  ExportConfig
}

// GeminiConfig configures the text-suggestion backend.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Enabled reports whether a suggestion backend is configured.
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

// SuggestConfig configures the suggestion helpers.
type SuggestConfig struct {
	Timeout      time.Duration
	PromptsPath  string
	DefaultGuess string
}

// ExportConfig configures image export and the optional upload bucket.
type ExportConfig struct {
	PixelRatio  int
	Currency    string
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
}

// UploadEnabled reports whether exported images are uploaded.
func (e ExportConfig) UploadEnabled() bool {
	return e.S3Bucket != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Load reads a .env file (outside production) and the environment.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to load .env file", "error", err)
		}
	}

	cfg := &Config{
		StaticPath:   getEnv("STATIC_PATH", "../frontend/static"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		CacheBackend: getEnv("CACHE_BACKEND", CacheSQLite),
		DBPath:       getEnv("DB_PATH", "./data/suggestions.db"),
		RedisURL:     getEnv("REDIS_URL", ""),
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", ""),
		},
		Suggest: SuggestConfig{
			PromptsPath:  getEnv("SUGGEST_PROMPTS_PATH", ""),
			DefaultGuess: getEnv("SUGGEST_DEFAULT_GUESS", "French Fries"),
		},
		Export: ExportConfig{
			Currency:    getEnv("EXPORT_CURRENCY", ""),
			S3Endpoint:  getEnv("S3_ENDPOINT", ""),
			S3Region:    getEnv("S3_REGION", "auto"),
			S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("S3_SECRET_KEY", ""),
			S3Bucket:    getEnv("S3_BUCKET", ""),
			S3PublicURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		},
	}

	var err error
	if cfg.Port, err = intEnv("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Export.PixelRatio, err = intEnv("EXPORT_PIXEL_RATIO", 2); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Suggest.Timeout, err = durationEnv("SUGGEST_TIMEOUT", 8*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CacheBackend {
	case CacheSQLite, CacheNone:
	case CacheRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=%s", CacheRedis)
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.Export.PixelRatio < 1 {
		return fmt.Errorf("invalid EXPORT_PIXEL_RATIO %d", c.Export.PixelRatio)
	}
	return nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
