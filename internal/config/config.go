package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/careersync/internal/validation"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" validate:"required,numeric"`

	// Auth
	APIKey string `env:"CAREERSYNC_API_KEY"`

	// Worker pool
	WorkerCount  int `env:"WORKER_COUNT" validate:"gte=1"`
	MaxQueueSize int `env:"MAX_QUEUE_SIZE" validate:"gte=1"`

	// Upload limits
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" validate:"gt=0"`

	// Job state
	JobTTL time.Duration `env:"JOB_TTL" validate:"gt=0"`

	// Documents
	DocumentPath string `env:"DOCUMENT_PATH"`
	OutputDir    string `env:"OUTPUT_DIR"`
	CodePolicy   string `env:"CODE_POLICY" validate:"oneof=last first"`

	// Watcher
	WatchDir      string        `env:"WATCH_DIR"`
	WatchDebounce time.Duration `env:"WATCH_DEBOUNCE" validate:"gte=0"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat string `env:"LOG_FORMAT" validate:"oneof=json text"`
}

// Load reads configuration from the environment. Variables in a .env file in
// the working directory are loaded first without overriding ones already set.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("CAREERSYNC_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		DocumentPath: os.Getenv("DOCUMENT_PATH"),
		OutputDir:    os.Getenv("OUTPUT_DIR"),
		CodePolicy:   envOr("CODE_POLICY", "last"),

		WatchDir:      os.Getenv("WATCH_DIR"),
		WatchDebounce: envDuration("WATCH_DEBOUNCE", 2*time.Second),

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "json"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.WatchDebounce < 0 {
		cfg.WatchDebounce = 2 * time.Second
	}

	return cfg
}

// Validate checks the settings every mode depends on.
func (c Config) Validate() error {
	return validation.New().Validate(c)
}

// ValidateServer checks the settings the HTTP service needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("CAREERSYNC_API_KEY is required")
	}
	if c.WatchDir != "" && c.DocumentPath == "" {
		return fmt.Errorf("DOCUMENT_PATH is required when WATCH_DIR is set")
	}
	return nil
}

// ValidateWatch checks the settings the directory watcher needs.
func (c Config) ValidateWatch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.WatchDir == "" {
		return fmt.Errorf("WATCH_DIR is required")
	}
	if c.DocumentPath == "" {
		return fmt.Errorf("DOCUMENT_PATH is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
