package ports

import (
	"context"
	"time"
)

// MetricsExporter records dashboard activity in an external observability system.
type MetricsExporter interface {
	// RecordAction counts an experiment action such as "create" or "stop".
	RecordAction(ctx context.Context, action string)
	// RecordColumnChange counts a column added to or removed from a view.
	RecordColumnChange(ctx context.Context, kind, op string)
	// RecordFetch records the latency and size of one table page fetch.
	RecordFetch(ctx context.Context, elapsed time.Duration, rows int)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
