package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var managedKeys = []string{
	"HRDESK_CONFIG",
	"HRDESK_HTTP_ADDR",
	"HRDESK_STORAGE",
	"HRDESK_SQLITE_PATH",
	"HRDESK_LOG_LEVEL",
	"HRDESK_API_KEY_HASH",
	"HRDESK_OVERDUE_SWEEP",
	"HRDESK_DEPARTMENT_CACHE_TTL",
	"HRDESK_SHUTDOWN_TIMEOUT",
}

// clearEnv unsets every managed variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.Storage != StorageSQLite || cfg.SQLitePath != "data/hrdesk.db" {
		t.Fatalf("unexpected storage defaults: %q %q", cfg.Storage, cfg.SQLitePath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", cfg.LogLevel)
	}
	if cfg.AuthEnabled() {
		t.Fatalf("expected auth to be disabled by default")
	}
	if !cfg.SweepEnabled() || cfg.OverdueSweep != "@every 5m" {
		t.Fatalf("expected default sweep, got %q", cfg.OverdueSweep)
	}
	if cfg.DepartmentCacheTTL != time.Minute || cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected durations: %v %v", cfg.DepartmentCacheTTL, cfg.ShutdownTimeout)
	}
}

func TestLoader_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HRDESK_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("HRDESK_STORAGE", "MEMORY")
	t.Setenv("HRDESK_LOG_LEVEL", "debug")
	t.Setenv("HRDESK_API_KEY_HASH", "$2a$12$abcdefghijklmnopqrstuv")
	t.Setenv("HRDESK_OVERDUE_SWEEP", "")
	t.Setenv("HRDESK_DEPARTMENT_CACHE_TTL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.Storage != StorageMemory {
		t.Fatalf("expected memory storage, got %q", cfg.Storage)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.LogLevel)
	}
	if !cfg.AuthEnabled() {
		t.Fatalf("expected auth to be enabled")
	}
	if cfg.SweepEnabled() {
		t.Fatalf("expected empty sweep to disable the sweeper")
	}
	if cfg.DepartmentCacheTTL != 30*time.Second {
		t.Fatalf("unexpected cache ttl %v", cfg.DepartmentCacheTTL)
	}
}

func TestLoader_ConfigFileUnderEnvironment(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "hrdesk.yaml")
	body := "http_addr: \":7000\"\nstorage: memory\nshutdown_timeout: 3s\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HRDESK_CONFIG", path)
	t.Setenv("HRDESK_HTTP_ADDR", ":7100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTPAddr != ":7100" {
		t.Fatalf("expected env to win over file, got %q", cfg.HTTPAddr)
	}
	if cfg.Storage != StorageMemory {
		t.Fatalf("expected file storage setting, got %q", cfg.Storage)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("expected file shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoader_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HRDESK_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoader_ReportsAllInvalidKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("HRDESK_STORAGE", "postgres")
	t.Setenv("HRDESK_LOG_LEVEL", "loud")
	t.Setenv("HRDESK_API_KEY_HASH", "plaintext")
	t.Setenv("HRDESK_OVERDUE_SWEEP", "every now and then")
	t.Setenv("HRDESK_DEPARTMENT_CACHE_TTL", "-1s")
	t.Setenv("HRDESK_SHUTDOWN_TIMEOUT", "soon")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, key := range []string{"storage", "log_level", "api_key_hash", "overdue_sweep", "department_cache_ttl", "shutdown_timeout"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in error %q", key, err.Error())
		}
	}
}
