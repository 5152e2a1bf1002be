package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Database holds libSQL/Turso connection settings. An empty URL selects a
// local database file under the XDG data directory.
type Database struct {
	URL       string `envconfig:"RUNBOARD_DATABASE_URL"`
	AuthToken string `envconfig:"RUNBOARD_AUTH_TOKEN"`
}

// Otel holds the OTLP metrics exporter settings.
type Otel struct {
	Endpoint string `envconfig:"RUNBOARD_OTEL_ENDPOINT"`
	Enabled  bool   `envconfig:"RUNBOARD_OTEL_ENABLED"`
	Insecure bool   `envconfig:"RUNBOARD_OTEL_INSECURE"`
}

// Log holds logger settings.
type Log struct {
	Level       string `envconfig:"RUNBOARD_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"RUNBOARD_LOG_DEVELOPMENT"`
}

// Dashboard holds configuration for the web dashboard and the TUI.
type Dashboard struct {
	Database Database `ignored:"true"`
	Otel     Otel     `ignored:"true"`
	Log      Log      `ignored:"true"`

	PageSize    int64         `envconfig:"RUNBOARD_PAGE_SIZE" default:"20"`
	ViewTTL     time.Duration `envconfig:"RUNBOARD_VIEW_TTL" default:"30m"`
	UseFilters  bool          `envconfig:"RUNBOARD_USE_FILTERS" default:"true"`
	CurrentUser string        `envconfig:"RUNBOARD_CURRENT_USER"`
}

// LoadDatabase loads only the database settings, for commands that need
// nothing else.
func LoadDatabase() (*Database, error) {
	var cfg Database
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadLog loads logger settings from environment variables.
func LoadLog() (*Log, error) {
	var cfg Log
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDashboard loads dashboard configuration from environment variables.
func LoadDashboard() (*Dashboard, error) {
	var cfg Dashboard
	if err := envconfig.Process("", &cfg.Database); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg.Otel); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg.Log); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	return &cfg, nil
}
