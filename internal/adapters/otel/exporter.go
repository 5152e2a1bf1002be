package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/runboard/internal/infrastructure/config"
)

const (
	serviceName    = "runboard"
	serviceVersion = "1.0.0"
)

// Exporter exports dashboard activity to an OTEL Collector.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	actionsTotal  metric.Int64Counter
	columnsTotal  metric.Int64Counter
	fetchDuration metric.Float64Histogram
	fetchRows     metric.Int64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg config.Otel) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	e, err := newExporter(provider)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	return e, nil
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	actionsTotal, err := meter.Int64Counter(
		"runboard_experiment_actions_total",
		metric.WithDescription("Experiment actions performed from the dashboard"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating actions counter: %w", err)
	}

	columnsTotal, err := meter.Int64Counter(
		"runboard_column_changes_total",
		metric.WithDescription("Columns added to or removed from experiment views"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating column counter: %w", err)
	}

	fetchDuration, err := meter.Float64Histogram(
		"runboard_fetch_duration_seconds",
		metric.WithDescription("Latency of experiment page fetches"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fetch histogram: %w", err)
	}

	fetchRows, err := meter.Int64Histogram(
		"runboard_fetch_rows",
		metric.WithDescription("Rows returned per experiment page fetch"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rows histogram: %w", err)
	}

	return &Exporter{
		provider:      provider,
		actionsTotal:  actionsTotal,
		columnsTotal:  columnsTotal,
		fetchDuration: fetchDuration,
		fetchRows:     fetchRows,
	}, nil
}

// RecordAction counts one experiment action.
func (e *Exporter) RecordAction(ctx context.Context, action string) {
	e.actionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

// RecordColumnChange counts one column added to or removed from a view.
func (e *Exporter) RecordColumnChange(ctx context.Context, kind, op string) {
	e.columnsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("op", op),
	))
}

// RecordFetch records latency and size of a page fetch.
func (e *Exporter) RecordFetch(ctx context.Context, elapsed time.Duration, rows int) {
	e.fetchDuration.Record(ctx, elapsed.Seconds())
	e.fetchRows.Record(ctx, int64(rows))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
