package config

import (
	"os"
	"testing"
)

func TestFromEnv_Defaults(t *testing.T) {
	os.Clearenv()

	cfg := FromEnv()
	if cfg.PGHost != "localhost" {
		t.Errorf("Expected PG_HOST default 'localhost', got '%s'", cfg.PGHost)
	}
	if cfg.PGPort != "5432" {
		t.Errorf("Expected PG_PORT default '5432', got '%s'", cfg.PGPort)
	}
	if cfg.Table != "region" {
		t.Errorf("Expected REGION_TABLE default 'region', got '%s'", cfg.Table)
	}
	if cfg.ExportDir != "data/export" {
		t.Errorf("Expected EXPORT_DIR default 'data/export', got '%s'", cfg.ExportDir)
	}
	if cfg.BackupDir != "data/backup" {
		t.Errorf("Expected BACKUP_DIR default 'data/backup', got '%s'", cfg.BackupDir)
	}
	if cfg.Parallelism != 16 {
		t.Errorf("Expected DUMP_WORKERS default 16, got %d", cfg.Parallelism)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	os.Setenv("PG_HOST", "db.internal")
	os.Setenv("PG_PASSWORD", "secret")
	os.Setenv("DUMP_WORKERS", "4")
	os.Setenv("EXPORT_DIR", "/tmp/exp")
	defer func() {
		os.Unsetenv("PG_HOST")
		os.Unsetenv("PG_PASSWORD")
		os.Unsetenv("DUMP_WORKERS")
		os.Unsetenv("EXPORT_DIR")
	}()

	cfg := FromEnv()
	if cfg.PGHost != "db.internal" {
		t.Errorf("Expected PG_HOST 'db.internal', got '%s'", cfg.PGHost)
	}
	if cfg.Parallelism != 4 {
		t.Errorf("Expected DUMP_WORKERS 4, got %d", cfg.Parallelism)
	}
	if cfg.ExportDir != "/tmp/exp" {
		t.Errorf("Expected EXPORT_DIR '/tmp/exp', got '%s'", cfg.ExportDir)
	}
}

func TestFromEnv_BadWorkerCount(t *testing.T) {
	os.Setenv("DUMP_WORKERS", "-3")
	defer os.Unsetenv("DUMP_WORKERS")

	cfg := FromEnv()
	if cfg.Parallelism != 16 {
		t.Errorf("Expected fallback to 16 on non-positive DUMP_WORKERS, got %d", cfg.Parallelism)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{PGHost: "h", PGPort: "5432", PGUser: "u", PGDatabase: "d", PGSSLMode: "disable"}
	if got := cfg.PostgresDSN(); got != "postgres://u@h:5432/d?sslmode=disable" {
		t.Errorf("Unexpected DSN without password: %s", got)
	}
	cfg.PGPassword = "p"
	if got := cfg.PostgresDSN(); got != "postgres://u:p@h:5432/d?sslmode=disable" {
		t.Errorf("Unexpected DSN with password: %s", got)
	}
}
