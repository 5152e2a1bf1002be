package otel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/emiliopalmerini/runboard/internal/infrastructure/config"
)

func TestNewExporter_Disabled(t *testing.T) {
	_, err := NewExporter(context.Background(), config.Otel{Enabled: false, Endpoint: "localhost:4317"})
	assert.Error(t, err)

	_, err = NewExporter(context.Background(), config.Otel{Enabled: true})
	assert.Error(t, err)
}

func TestExporter_Records(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	e, err := newExporter(provider)
	require.NoError(t, err)

	e.RecordAction(ctx, "stop")
	e.RecordAction(ctx, "stop")
	e.RecordColumnChange(ctx, "metric", "add")
	e.RecordFetch(ctx, 120*time.Millisecond, 20)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	actions, ok := byName["runboard_experiment_actions_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, actions.DataPoints, 1)
	assert.Equal(t, int64(2), actions.DataPoints[0].Value)

	columns, ok := byName["runboard_column_changes_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), columns.DataPoints[0].Value)

	fetch, ok := byName["runboard_fetch_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Equal(t, uint64(1), fetch.DataPoints[0].Count)

	require.NoError(t, e.Close(ctx))
}

func TestNoOpExporter(t *testing.T) {
	e := NewNoOpExporter()
	ctx := context.Background()
	e.RecordAction(ctx, "create")
	e.RecordColumnChange(ctx, "param", "remove")
	e.RecordFetch(ctx, time.Second, 3)
	assert.NoError(t, e.Close(ctx))
}
