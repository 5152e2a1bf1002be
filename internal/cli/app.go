package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/runboard/internal/adapters/otel"
	"github.com/emiliopalmerini/runboard/internal/adapters/turso"
	"github.com/emiliopalmerini/runboard/internal/experiments"
	"github.com/emiliopalmerini/runboard/internal/infrastructure/config"
	"github.com/emiliopalmerini/runboard/internal/ports"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config  *config.Dashboard
	DB      *turso.DB
	Repos   *turso.Repositories
	Metrics ports.MetricsExporter
	Service *experiments.Service
	Log     *zap.SugaredLogger
}

// NewAppContext loads the configuration and opens the database. The OTLP
// exporter is only started when enabled, a no-op exporter is used otherwise.
func NewAppContext(ctx context.Context, log *zap.SugaredLogger) (*AppContext, error) {
	cfg, err := config.LoadDashboard()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := turso.NewDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var metrics ports.MetricsExporter = otel.NewNoOpExporter()
	if cfg.Otel.Enabled {
		exporter, err := otel.NewExporter(ctx, cfg.Otel)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to start metrics exporter: %w", err)
		}
		metrics = exporter
		log.Infow("metrics exporter enabled", "endpoint", cfg.Otel.Endpoint)
	}

	repos := turso.NewRepositories(db.DB)
	return &AppContext{
		Config:  cfg,
		DB:      db,
		Repos:   repos,
		Metrics: metrics,
		Service: experiments.NewService(repos.Experiments, metrics, log),
		Log:     log,
	}, nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close(ctx context.Context) error {
	if err := a.Metrics.Close(ctx); err != nil {
		a.Log.Warnw("failed to flush metrics", "error", err)
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
