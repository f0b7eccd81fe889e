package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Common errors
var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")
	ErrInvalidRateLimit   = errors.New("IMPORT_RATE_PER_MIN and IMPORT_BURST must be positive")
)

const (
	DefaultPort             = "5050"
	DefaultImportRatePerMin = 30
	DefaultImportBurst      = 5
)

// DefaultCORSOrigins is used when CORS_ORIGINS is not set.
var DefaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
}

// Config holds process configuration for the API server and tools.
type Config struct {
	Port        string
	DatabaseURL string

	// DBLogLevel is one of silent, error, warn, info.
	DBLogLevel string

	CORSOrigins []string

	// Import endpoints are limited per farm.
	ImportRatePerMin int
	ImportBurst      int
}

// LoadFromEnv loads configuration from environment variables.
//
// Environment variables:
//   - PORT: listen port (default: 5050)
//   - DATABASE_URL: Postgres DSN (required)
//   - DB_LOG_LEVEL: gorm log level (default: warn)
//   - CORS_ORIGINS: comma separated allow-list (default: local Vite dev servers)
//   - IMPORT_RATE_PER_MIN: import requests per farm per minute (default: 30)
//   - IMPORT_BURST: burst size for imports (default: 5)
func LoadFromEnv() Config {
	cfg := Config{
		Port:             strings.TrimSpace(os.Getenv("PORT")),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBLogLevel:       strings.ToLower(strings.TrimSpace(os.Getenv("DB_LOG_LEVEL"))),
		ImportRatePerMin: intFromEnv("IMPORT_RATE_PER_MIN", DefaultImportRatePerMin),
		ImportBurst:      intFromEnv("IMPORT_BURST", DefaultImportBurst),
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.DBLogLevel == "" {
		cfg.DBLogLevel = "warn"
	}

	for _, o := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = DefaultCORSOrigins
	}
	return cfg
}

// Validate checks that the configuration can start the server.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.ImportRatePerMin <= 0 || c.ImportBurst <= 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
