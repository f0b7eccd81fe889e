package config_test

import (
	"testing"

	"github.com/C2Farms/C2-Backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/c2")
	t.Setenv("DB_LOG_LEVEL", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("IMPORT_RATE_PER_MIN", "")
	t.Setenv("IMPORT_BURST", "")

	cfg := config.LoadFromEnv()
	assert.Equal(t, config.DefaultPort, cfg.Port)
	assert.Equal(t, "warn", cfg.DBLogLevel)
	assert.Equal(t, config.DefaultCORSOrigins, cfg.CORSOrigins)
	assert.Equal(t, config.DefaultImportRatePerMin, cfg.ImportRatePerMin)
	assert.Equal(t, config.DefaultImportBurst, cfg.ImportBurst)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://localhost/c2")
	t.Setenv("DB_LOG_LEVEL", "INFO")
	t.Setenv("CORS_ORIGINS", "https://app.c2farms.ca, https://dev.c2farms.ca ,")
	t.Setenv("IMPORT_RATE_PER_MIN", "10")
	t.Setenv("IMPORT_BURST", "2")

	cfg := config.LoadFromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.DBLogLevel)
	assert.Equal(t, []string{"https://app.c2farms.ca", "https://dev.c2farms.ca"}, cfg.CORSOrigins)
	assert.Equal(t, 10, cfg.ImportRatePerMin)
	assert.Equal(t, 2, cfg.ImportBurst)
}

func TestValidate(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("IMPORT_RATE_PER_MIN", "")
	t.Setenv("IMPORT_BURST", "")
	assert.ErrorIs(t, config.LoadFromEnv().Validate(), config.ErrMissingDatabaseURL)

	t.Setenv("DATABASE_URL", "postgres://localhost/c2")
	t.Setenv("IMPORT_BURST", "lots")
	assert.ErrorIs(t, config.LoadFromEnv().Validate(), config.ErrInvalidRateLimit)
}
