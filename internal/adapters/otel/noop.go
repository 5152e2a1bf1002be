package otel

import (
	"context"
	"time"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordAction(ctx context.Context, action string) {}

func (e *NoOpExporter) RecordColumnChange(ctx context.Context, kind, op string) {}

func (e *NoOpExporter) RecordFetch(ctx context.Context, elapsed time.Duration, rows int) {}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
