package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Database.Driver != "postgres" {
		t.Errorf("Expected postgres driver, got %s", cfg.Database.Driver)
	}
	if cfg.Apify.PollInterval != 5*time.Second {
		t.Errorf("Expected 5s poll interval, got %s", cfg.Apify.PollInterval)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Port)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leadboard.yaml")
	content := `
port: "9090"
database:
  driver: sqlite
  sqlite_path: /tmp/file.db
apify:
  actor_id: from-file
  poll_interval: 2s
webhooks:
  concurrency: 8
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APIFY_ACTOR_ID", "from-env")
	t.Setenv("RATE_LIMIT_BURST", "11")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port from file, got %s", cfg.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.SQLitePath != "/tmp/file.db" {
		t.Errorf("Expected sqlite settings from file, got %+v", cfg.Database)
	}
	if cfg.Apify.ActorID != "from-env" {
		t.Errorf("Expected env to override file, got %s", cfg.Apify.ActorID)
	}
	if cfg.Apify.PollInterval != 2*time.Second {
		t.Errorf("Expected 2s poll interval, got %s", cfg.Apify.PollInterval)
	}
	if cfg.Webhooks.Concurrency != 8 {
		t.Errorf("Expected concurrency 8, got %d", cfg.Webhooks.Concurrency)
	}
	if cfg.RateLimit.Burst != 11 {
		t.Errorf("Expected burst 11, got %d", cfg.RateLimit.Burst)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	t.Setenv("DB_DRIVER", "mysql")
	if _, err := Load(); err == nil {
		t.Error("Expected error for unsupported driver")
	}

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("APIFY_POLL_INTERVAL", "soon")
	if _, err := Load(); err == nil {
		t.Error("Expected error for bad duration")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "5432", Name: "leads"}
	want := "postgres://u:p@h:5432/leads?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
