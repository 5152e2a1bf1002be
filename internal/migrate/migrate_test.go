package migrate

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/tursodatabase/go-libsql"
	"go.uber.org/zap/zaptest"
)

func testMigrator(t *testing.T) (*Migrator, *sql.DB) {
	t.Helper()

	db, err := sql.Open("libsql", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return New(db, zaptest.NewLogger(t).Sugar()), db
}

func TestMigrator_Load(t *testing.T) {
	m, _ := testMigrator(t)

	all, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(all) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(all))
	}
	for i, mig := range all {
		if mig.Version != i+1 {
			t.Errorf("migration %d has version %d", i, mig.Version)
		}
		if mig.UpSQL == "" || mig.DownSQL == "" {
			t.Errorf("migration %d_%s is missing SQL", mig.Version, mig.Name)
		}
	}
}

func TestMigrator_UpAndDown(t *testing.T) {
	m, db := testMigrator(t)
	ctx := context.Background()

	applied, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("Up() error = %v", err)
	}
	if applied < 2 {
		t.Fatalf("Up() applied %d migrations, want at least 2", applied)
	}

	version, dirty, err := m.Version(ctx)
	if err != nil || dirty || version != applied {
		t.Fatalf("Version() = %d, %v, %v; want %d, false, nil", version, dirty, err, applied)
	}

	if _, err := db.ExecContext(ctx, `SELECT is_bookmarked FROM experiments`); err != nil {
		t.Fatalf("experiments table not migrated: %v", err)
	}

	again, err := m.Up(ctx)
	if err != nil || again != 0 {
		t.Fatalf("second Up() = %d, %v; want 0, nil", again, err)
	}

	if _, err := m.To(ctx, 0); err != nil {
		t.Fatalf("To(0) error = %v", err)
	}
	version, _, _ = m.Version(ctx)
	if version != 0 {
		t.Errorf("version after rollback = %d, want 0", version)
	}
	if _, err := db.ExecContext(ctx, `SELECT 1 FROM experiments`); err == nil {
		t.Error("experiments table still exists after rollback")
	}
}

func TestMigrator_DirtyRefuses(t *testing.T) {
	m, _ := testMigrator(t)
	ctx := context.Background()

	if err := m.ensureTable(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.setVersion(ctx, 1, true); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Up(ctx); err == nil {
		t.Fatal("Up() on dirty database succeeded")
	}
}
