package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Ingest   IngestConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// IngestConfig tunes the bulk ingestion pipeline.
type IngestConfig struct {
	MaxFileBytes     int64         // whole-file size ceiling for CSV/JSON uploads
	MaxRows          int           // row limit per batch
	PublishBatchSize int           // records created concurrently per publish batch
	AutosaveDelay    time.Duration // debounce window for draft snapshots
	DraftTTL         time.Duration // how long a draft snapshot survives in redis
	RatioTimeout     time.Duration // per-image fetch timeout for ratio detection
	CategoryCacheTTL time.Duration // validity window for the cached category list
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Promptstore API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "promptstore"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Ingest: IngestConfig{
			MaxFileBytes:     int64(getEnvInt("INGEST_MAX_FILE_BYTES", 5*1024*1024)),
			MaxRows:          getEnvInt("INGEST_MAX_ROWS", 1000),
			PublishBatchSize: getEnvInt("PUBLISH_BATCH_SIZE", 5),
			AutosaveDelay:    getEnvDuration("AUTOSAVE_DELAY", time.Second),
			DraftTTL:         getEnvDuration("DRAFT_TTL", 7*24*time.Hour),
			RatioTimeout:     getEnvDuration("RATIO_TIMEOUT", 10*time.Second),
			CategoryCacheTTL: getEnvDuration("CATEGORY_CACHE_TTL", 5*time.Minute),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.App.Environment == "production" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD must be set in production")
	}

	if c.Ingest.PublishBatchSize <= 0 {
		return fmt.Errorf("PUBLISH_BATCH_SIZE must be positive")
	}
	if c.Ingest.MaxFileBytes <= 0 {
		return fmt.Errorf("INGEST_MAX_FILE_BYTES must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
