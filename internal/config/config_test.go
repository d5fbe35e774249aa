package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ExtractQueue != "tasks.extract" || cfg.AuditQueue != "tasks.audit" {
		t.Fatalf("unexpected queue defaults: %+v", cfg)
	}
	if cfg.MaxClaims != 15 || cfg.MaxGenericMetrics != 50 {
		t.Fatalf("unexpected payload caps: %d %d", cfg.MaxClaims, cfg.MaxGenericMetrics)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Fatalf("unexpected model default: %q", cfg.GeminiModel)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("QUEUE_EXTRACT", "custom.extract")
	t.Setenv("MAX_CLAIMS", "7")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ExtractQueue != "custom.extract" {
		t.Fatalf("env override ignored: %q", cfg.ExtractQueue)
	}
	if cfg.MaxClaims != 7 {
		t.Fatalf("env override ignored: %d", cfg.MaxClaims)
	}
	if cfg.GeminiAPIKey != "secret" {
		t.Fatalf("env override ignored")
	}
}

func TestLoadFileWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "log_level: debug\nmax_claims: 10\nqueue_audit: file.audit\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MAX_CLAIMS", "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("file value ignored: %q", cfg.LogLevel)
	}
	if cfg.AuditQueue != "file.audit" {
		t.Fatalf("file value ignored: %q", cfg.AuditQueue)
	}
	if cfg.MaxClaims != 9 {
		t.Fatalf("environment must win over file, got %d", cfg.MaxClaims)
	}
}

func TestLoadBadFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{log_level: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}
