package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Pipeline      PipelineConfig
	OCR           OCRConfig
	Jobs          JobsConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	CORSOrigins        []string
	MaxUploadBytes     int64
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// PipelineConfig tunes the scanning pipeline.
type PipelineConfig struct {
	MaxFileSize      int64
	MaxFilesPerBatch int
	BatchTimeout     time.Duration
	RowTolerance     float64
	MinAccountDigits int
	TimezoneOverride string
	HistoryRetention time.Duration
}

type OCRConfig struct {
	Enabled  bool
	Binary   string
	Language string
}

type JobsConfig struct {
	QueueSize     int
	Workers       int
	Retention     time.Duration
	PruneSchedule string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 20),
			CORSOrigins:        getEnvAsList("SERVER_CORS_ORIGINS", []string{"http://localhost:3000"}),
			MaxUploadBytes:     getEnvAsInt64("SERVER_MAX_UPLOAD_BYTES", 256<<20),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DATABASE_ENABLED", false),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "ribapurify"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Pipeline: PipelineConfig{
			MaxFileSize:      getEnvAsInt64("PIPELINE_MAX_FILE_SIZE", 52_428_800),
			MaxFilesPerBatch: getEnvAsInt("PIPELINE_MAX_FILES", 20),
			BatchTimeout:     getEnvAsDuration("PIPELINE_BATCH_TIMEOUT", 60*time.Second),
			RowTolerance:     getEnvAsFloat("PIPELINE_ROW_TOLERANCE", 4.0),
			MinAccountDigits: getEnvAsInt("PIPELINE_MIN_ACCOUNT_DIGITS", 5),
			TimezoneOverride: getEnv("PIPELINE_TIMEZONE", ""),
			HistoryRetention: getEnvAsDuration("PIPELINE_HISTORY_RETENTION", 90*24*time.Hour),
		},
		OCR: OCRConfig{
			Enabled:  getEnvAsBool("OCR_ENABLED", true),
			Binary:   getEnv("OCR_TESSERACT_BIN", "tesseract"),
			Language: getEnv("OCR_LANG", "eng"),
		},
		Jobs: JobsConfig{
			QueueSize:     getEnvAsInt("JOBS_QUEUE_SIZE", 64),
			Workers:       getEnvAsInt("JOBS_WORKERS", 2),
			Retention:     getEnvAsDuration("JOBS_RETENTION", time.Hour),
			PruneSchedule: getEnv("JOBS_PRUNE_SCHEDULE", "*/10 * * * *"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port))
	}
	if c.Pipeline.MaxFileSize <= 0 {
		errs = append(errs, errors.New("PIPELINE_MAX_FILE_SIZE must be positive"))
	}
	if c.Pipeline.BatchTimeout < 0 {
		errs = append(errs, errors.New("PIPELINE_BATCH_TIMEOUT must not be negative"))
	}
	if c.Pipeline.RowTolerance <= 0 {
		errs = append(errs, errors.New("PIPELINE_ROW_TOLERANCE must be positive"))
	}
	if c.Pipeline.MinAccountDigits < 2 {
		errs = append(errs, errors.New("PIPELINE_MIN_ACCOUNT_DIGITS must be at least 2"))
	}
	if c.Pipeline.TimezoneOverride != "" {
		if _, err := time.LoadLocation(c.Pipeline.TimezoneOverride); err != nil {
			errs = append(errs, fmt.Errorf("PIPELINE_TIMEZONE: %w", err))
		}
	}
	if c.Jobs.Workers <= 0 {
		errs = append(errs, errors.New("JOBS_WORKERS must be positive"))
	}
	return errors.Join(errs...)
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
