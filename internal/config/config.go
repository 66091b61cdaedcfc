package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"task_tracker/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	GinMode string

	// Storage
	StorageDriver string // postgres, sqlite or memory
	DatabaseURL   string
	SQLitePath    string

	// Rate limiting
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	APIRateLimit  int
	APIRateWindow time.Duration

	LogLevel  string
	LogJSON   bool
	StaticDir string
}

// Load reads .env (if present) and the environment; invalid settings are fatal
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds the config from the process environment
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppPort:       getEnv("APP_PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "release"),
		StorageDriver: getEnv("STORAGE_DRIVER", "postgres"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    getEnv("SQLITE_PATH", "tasks.db"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		APIRateLimit:  getEnvAsInt("API_RATE_LIMIT", 120),
		APIRateWindow: time.Duration(getEnvAsInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogJSON:       os.Getenv("LOG_FORMAT") == "json",
		StaticDir:     os.Getenv("STATIC_DIR"),
	}

	switch cfg.StorageDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case "sqlite", "memory":
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

// StorageDSN is the connection string for the selected driver
func (c *Config) StorageDSN() string {
	if c.StorageDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.DatabaseURL
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt falls back to defaultValue on unset, unparsable or negative values
func getEnvAsInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return defaultValue
}
