package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "HRDESK"

// ConfigFileEnv names an optional YAML file layered under the environment.
const ConfigFileEnv = EnvPrefix + "_CONFIG"

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config captures the runtime settings of the service and the operator CLI.
type Config struct {
	HTTPAddr           string
	Storage            string
	SQLitePath         string
	LogLevel           slog.Level
	APIKeyHash         string
	OverdueSweep       string
	DepartmentCacheTTL time.Duration
	ShutdownTimeout    time.Duration
}

// AuthEnabled reports whether requests must carry an API key.
func (c Config) AuthEnabled() bool {
	return c.APIKeyHash != ""
}

// SweepEnabled reports whether the overdue sweeper should run.
func (c Config) SweepEnabled() bool {
	return c.OverdueSweep != ""
}

var defaults = map[string]any{
	"http_addr":            ":8080",
	"storage":              StorageSQLite,
	"sqlite_path":          "data/hrdesk.db",
	"log_level":            "info",
	"api_key_hash":         "",
	"overdue_sweep":        "@every 5m",
	"department_cache_ttl": "1m",
	"shutdown_timeout":     "10s",
}

// Load reads defaults, then the optional file named by HRDESK_CONFIG, then
// HRDESK_* environment variables. Every invalid key is reported in one error.
func Load() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("config")); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPAddr:     strings.TrimSpace(v.GetString("http_addr")),
		Storage:      strings.ToLower(strings.TrimSpace(v.GetString("storage"))),
		SQLitePath:   strings.TrimSpace(v.GetString("sqlite_path")),
		APIKeyHash:   strings.TrimSpace(v.GetString("api_key_hash")),
		OverdueSweep: strings.TrimSpace(v.GetString("overdue_sweep")),
	}

	invalid := make([]string, 0, 2)

	if cfg.HTTPAddr == "" {
		invalid = append(invalid, "http_addr")
	}

	switch cfg.Storage {
	case StorageSQLite:
		if cfg.SQLitePath == "" {
			invalid = append(invalid, "sqlite_path")
		}
	case StorageMemory:
	default:
		invalid = append(invalid, "storage")
	}

	level, err := parseLevel(v.GetString("log_level"))
	if err != nil {
		invalid = append(invalid, "log_level")
	}
	cfg.LogLevel = level

	if cfg.APIKeyHash != "" && !strings.HasPrefix(cfg.APIKeyHash, "$2") {
		invalid = append(invalid, "api_key_hash")
	}

	if cfg.OverdueSweep != "" {
		if _, err := cron.ParseStandard(cfg.OverdueSweep); err != nil {
			invalid = append(invalid, "overdue_sweep")
		}
	}

	if ttl, err := parsePositiveDuration(v.GetString("department_cache_ttl")); err != nil {
		invalid = append(invalid, "department_cache_ttl")
	} else {
		cfg.DepartmentCacheTTL = ttl
	}

	if timeout, err := parsePositiveDuration(v.GetString("shutdown_timeout")); err != nil {
		invalid = append(invalid, "shutdown_timeout")
	} else {
		cfg.ShutdownTimeout = timeout
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.TrimSpace(value)))
	return level, err
}

var errNonPositive = errors.New("duration must be positive")

func parsePositiveDuration(value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errNonPositive
	}
	return d, nil
}
