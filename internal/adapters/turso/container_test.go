package turso_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/emiliopalmerini/runboard/internal/adapters/turso"
	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/migrate"
	"github.com/emiliopalmerini/runboard/internal/ports"
)

// testTursoDB starts a libsql-server container for full integration testing.
// It is slower than testDB and needs Docker, so it only runs when
// RUNBOARD_TEST_CONTAINERS is set.
func testTursoDB(t *testing.T) *sql.DB {
	t.Helper()
	if os.Getenv("RUNBOARD_TEST_CONTAINERS") == "" {
		t.Skip("set RUNBOARD_TEST_CONTAINERS to run against libsql-server")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "ghcr.io/tursodatabase/libsql-server:latest",
		ExposedPorts: []string{"8080/tcp"},
		WaitingFor:   wait.ForHTTP("/health").WithPort("8080/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Turso container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	port, err := container.MappedPort(ctx, "8080")
	if err != nil {
		t.Fatalf("Failed to get mapped port: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	db, err := sql.Open("libsql", fmt.Sprintf("http://%s:%s", host, port.Port()))
	if err != nil {
		t.Fatalf("Failed to connect to Turso: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrate.RunAll(ctx, db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestExperimentRepository_Remote(t *testing.T) {
	repo := turso.NewExperimentRepository(testTursoDB(t))
	ctx := context.Background()

	exp := &domain.Experiment{
		User:       "ada",
		Project:    "mnist",
		Name:       "remote",
		Status:     domain.StatusRunning,
		LastMetric: map[string]float64{"loss": 0.5},
		CreatedAt:  time.Now().UTC(),
	}
	seed(t, repo, exp)

	got, err := repo.GetByUniqueName(ctx, "ada.mnist.1")
	if err != nil || got == nil {
		t.Fatalf("GetByUniqueName() = %v, %v", got, err)
	}
	if got.LastMetric["loss"] != 0.5 {
		t.Errorf("expected loss 0.5, got %v", got.LastMetric)
	}

	count, err := repo.Count(ctx, ports.ListOptions{Query: mustQuery(t, "metric.loss:<1")})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 matching experiment, got %d", count)
	}
}
