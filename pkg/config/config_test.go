package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(52_428_800), cfg.Pipeline.MaxFileSize)
	assert.Equal(t, 60*time.Second, cfg.Pipeline.BatchTimeout)
	assert.Equal(t, 4.0, cfg.Pipeline.RowTolerance)
	assert.Equal(t, 5, cfg.Pipeline.MinAccountDigits)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "tesseract", cfg.OCR.Binary)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("PIPELINE_BATCH_TIMEOUT", "5s")
	t.Setenv("PIPELINE_ROW_TOLERANCE", "2.5")
	t.Setenv("PIPELINE_TIMEZONE", "Asia/Kolkata")
	t.Setenv("SERVER_CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DATABASE_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Pipeline.BatchTimeout)
	assert.Equal(t, 2.5, cfg.Pipeline.RowTolerance)
	assert.Equal(t, "Asia/Kolkata", cfg.Pipeline.TimezoneOverride)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Database.Enabled)
	assert.Contains(t, cfg.Database.DSN(), "dbname=ribapurify")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"port", "SERVER_PORT", "70000", "SERVER_PORT"},
		{"tolerance", "PIPELINE_ROW_TOLERANCE", "-1", "PIPELINE_ROW_TOLERANCE"},
		{"digits", "PIPELINE_MIN_ACCOUNT_DIGITS", "1", "PIPELINE_MIN_ACCOUNT_DIGITS"},
		{"timezone", "PIPELINE_TIMEZONE", "Mars/Olympus", "PIPELINE_TIMEZONE"},
		{"workers", "JOBS_WORKERS", "0", "JOBS_WORKERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("X_INT", "nope")
	t.Setenv("X_DUR", "ten minutes")
	assert.Equal(t, 3, getEnvAsInt("X_INT", 3))
	assert.Equal(t, time.Minute, getEnvAsDuration("X_DUR", time.Minute))
	assert.Equal(t, []string{"a"}, getEnvAsList("X_UNSET_LIST", []string{"a"}))
}
