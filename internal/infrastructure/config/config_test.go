package config

import (
	"os"
	"testing"
	"time"
)

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	_ = os.Unsetenv(key)
}

func TestLoadDashboard_Defaults(t *testing.T) {
	for _, key := range []string{
		"RUNBOARD_DATABASE_URL", "RUNBOARD_PAGE_SIZE", "RUNBOARD_VIEW_TTL",
		"RUNBOARD_USE_FILTERS", "RUNBOARD_LOG_LEVEL",
	} {
		unsetenv(t, key)
	}

	cfg, err := LoadDashboard()
	if err != nil {
		t.Fatalf("LoadDashboard() error = %v", err)
	}
	if cfg.PageSize != 20 {
		t.Errorf("PageSize = %d, want 20", cfg.PageSize)
	}
	if cfg.ViewTTL != 30*time.Minute {
		t.Errorf("ViewTTL = %v, want 30m", cfg.ViewTTL)
	}
	if !cfg.UseFilters {
		t.Error("UseFilters = false, want true")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadDashboard_FromEnv(t *testing.T) {
	t.Setenv("RUNBOARD_DATABASE_URL", "libsql://runs.turso.io")
	t.Setenv("RUNBOARD_AUTH_TOKEN", "secret")
	t.Setenv("RUNBOARD_PAGE_SIZE", "50")
	t.Setenv("RUNBOARD_VIEW_TTL", "5m")
	t.Setenv("RUNBOARD_CURRENT_USER", "alice")
	t.Setenv("RUNBOARD_OTEL_ENABLED", "true")
	t.Setenv("RUNBOARD_OTEL_ENDPOINT", "localhost:4317")

	cfg, err := LoadDashboard()
	if err != nil {
		t.Fatalf("LoadDashboard() error = %v", err)
	}
	if cfg.Database.URL != "libsql://runs.turso.io" || cfg.Database.AuthToken != "secret" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.PageSize != 50 || cfg.ViewTTL != 5*time.Minute || cfg.CurrentUser != "alice" {
		t.Errorf("Dashboard = %+v", cfg)
	}
	if !cfg.Otel.Enabled || cfg.Otel.Endpoint != "localhost:4317" {
		t.Errorf("Otel = %+v", cfg.Otel)
	}
}

func TestLoadDashboard_BadValue(t *testing.T) {
	t.Setenv("RUNBOARD_PAGE_SIZE", "lots")
	if _, err := LoadDashboard(); err == nil {
		t.Fatal("LoadDashboard() accepted a non-numeric page size")
	}
}
