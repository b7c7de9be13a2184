package config

import (
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/careersync/internal/validation"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "WORKER_COUNT", "JOB_TTL", "CODE_POLICY", "WATCH_DEBOUNCE", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h job TTL, got %v", cfg.JobTTL)
	}
	if cfg.CodePolicy != "last" {
		t.Errorf("expected code policy last, got %q", cfg.CodePolicy)
	}
	if cfg.WatchDebounce != 2*time.Second {
		t.Errorf("expected 2s debounce, got %v", cfg.WatchDebounce)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("MAX_QUEUE_SIZE", "not-a-number")
	t.Setenv("JOB_TTL", "15m")
	t.Setenv("CODE_POLICY", "first")
	t.Setenv("WATCH_DIR", "/srv/inbox")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected non-positive worker count to fall back to 2, got %d", cfg.WorkerCount)
	}
	if cfg.MaxQueueSize != 100 {
		t.Errorf("expected unparsable queue size to fall back to 100, got %d", cfg.MaxQueueSize)
	}
	if cfg.JobTTL != 15*time.Minute {
		t.Errorf("expected 15m, got %v", cfg.JobTTL)
	}
	if cfg.CodePolicy != "first" {
		t.Errorf("expected first, got %q", cfg.CodePolicy)
	}
	if cfg.WatchDir != "/srv/inbox" {
		t.Errorf("expected watch dir, got %q", cfg.WatchDir)
	}
}

func validConfig() Config {
	return Config{
		Port:           "8090",
		WorkerCount:    1,
		MaxQueueSize:   10,
		MaxUploadBytes: 1024,
		JobTTL:         time.Minute,
		CodePolicy:     "last",
		LogFormat:      "json",
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	cfg := validConfig()
	cfg.CodePolicy = "newest"
	cfg.Port = "http"

	err := cfg.Validate()
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields["CODE_POLICY"] != "must be one of: last first" {
		t.Errorf("unexpected CODE_POLICY message: %q", verr.Fields["CODE_POLICY"])
	}
	if verr.Fields["PORT"] != "must be numeric" {
		t.Errorf("unexpected PORT message: %q", verr.Fields["PORT"])
	}
}

func TestValidateServer(t *testing.T) {
	cfg := validConfig()
	if err := cfg.ValidateServer(); err == nil || err.Error() != "CAREERSYNC_API_KEY is required" {
		t.Errorf("expected missing API key error, got %v", err)
	}

	cfg.APIKey = "secret"
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.WatchDir = "/srv/inbox"
	if err := cfg.ValidateServer(); err == nil {
		t.Error("expected error when watching without a document")
	}
}

func TestValidateWatch(t *testing.T) {
	cfg := validConfig()
	if err := cfg.ValidateWatch(); err == nil || err.Error() != "WATCH_DIR is required" {
		t.Errorf("expected missing WATCH_DIR error, got %v", err)
	}
	cfg.WatchDir = "/srv/inbox"
	if err := cfg.ValidateWatch(); err == nil || err.Error() != "DOCUMENT_PATH is required" {
		t.Errorf("expected missing DOCUMENT_PATH error, got %v", err)
	}
	cfg.DocumentPath = "/srv/careers.json"
	if err := cfg.ValidateWatch(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
