package ports_test

import (
	"testing"

	"github.com/emiliopalmerini/runboard/internal/adapters/otel"
	"github.com/emiliopalmerini/runboard/internal/adapters/turso"
	"github.com/emiliopalmerini/runboard/internal/ports"
)

// Compile-time interface conformance checks.

func TestExperimentRepositoryConformance(t *testing.T) {
	var _ ports.ExperimentRepository = (*turso.ExperimentRepository)(nil)
}

func TestMetricsExporterConformance(t *testing.T) {
	var _ ports.MetricsExporter = (*otel.Exporter)(nil)
	var _ ports.MetricsExporter = (*otel.NoOpExporter)(nil)
}
