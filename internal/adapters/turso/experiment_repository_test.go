package turso_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emiliopalmerini/runboard/internal/adapters/turso"
	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/ports"
	"github.com/emiliopalmerini/runboard/internal/query"
)

func seed(t *testing.T, repo *turso.ExperimentRepository, exps ...*domain.Experiment) {
	t.Helper()
	for _, e := range exps {
		if err := repo.Create(context.Background(), e); err != nil {
			t.Fatalf("Create(%s) failed: %v", e.Name, err)
		}
	}
}

func mustQuery(t *testing.T, s string) query.Query {
	t.Helper()
	q, err := query.Parse(s)
	if err != nil {
		t.Fatalf("query.Parse(%q) failed: %v", s, err)
	}
	return q
}

func names(exps []*domain.Experiment) []string {
	out := make([]string, len(exps))
	for i, e := range exps {
		out[i] = e.Name
	}
	return out
}

func TestExperimentRepository_CreateAssignsSequence(t *testing.T) {
	repo := turso.NewExperimentRepository(testDB(t))
	ctx := context.Background()

	a := &domain.Experiment{User: "adam", Project: "mnist", Name: "baseline"}
	b := &domain.Experiment{User: "adam", Project: "mnist"}
	c := &domain.Experiment{User: "adam", Project: "cifar", Name: "other"}
	seed(t, repo, a, b, c)

	if a.UniqueName != "adam.mnist.1" {
		t.Errorf("expected adam.mnist.1, got %s", a.UniqueName)
	}
	if b.UniqueName != "adam.mnist.2" {
		t.Errorf("expected adam.mnist.2, got %s", b.UniqueName)
	}
	if b.Name != "adam.mnist.2" {
		t.Errorf("expected unnamed experiment to default to its unique name, got %s", b.Name)
	}
	if c.UniqueName != "adam.cifar.1" {
		t.Errorf("expected sequence per project, got %s", c.UniqueName)
	}
	if a.ID == "" || a.Status != domain.StatusCreated || a.CreatedAt.IsZero() {
		t.Errorf("expected defaults to be filled, got %+v", a)
	}

	got, err := repo.GetByUniqueName(ctx, "adam.mnist.1")
	if err != nil {
		t.Fatalf("GetByUniqueName failed: %v", err)
	}
	if got == nil || got.Name != "baseline" || got.ID != a.ID {
		t.Fatalf("expected baseline, got %+v", got)
	}
}

func TestExperimentRepository_RoundTripsMaps(t *testing.T) {
	repo := turso.NewExperimentRepository(testDB(t))
	ctx := context.Background()

	desc := "lr sweep"
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := &domain.Experiment{
		User:         "adam",
		Project:      "mnist",
		Description:  &desc,
		Status:       domain.StatusRunning,
		LastMetric:   map[string]float64{"loss": 0.25, "acc": 0.91},
		Declarations: map[string]any{"lr": 0.001, "optimizer": "adam", "augment": true},
		StartedAt:    &started,
	}
	seed(t, repo, e)

	got, err := repo.GetByUniqueName(ctx, e.UniqueName)
	if err != nil {
		t.Fatalf("GetByUniqueName failed: %v", err)
	}
	if got.Description == nil || *got.Description != desc {
		t.Errorf("expected description %q, got %v", desc, got.Description)
	}
	if got.LastMetric["loss"] != 0.25 || got.LastMetric["acc"] != 0.91 {
		t.Errorf("unexpected metrics %v", got.LastMetric)
	}
	if got.Declarations["optimizer"] != "adam" || got.Declarations["augment"] != true || got.Declarations["lr"] != 0.001 {
		t.Errorf("unexpected declarations %v", got.Declarations)
	}
	if got.StartedAt == nil || !got.StartedAt.Equal(started) {
		t.Errorf("expected started_at %v, got %v", started, got.StartedAt)
	}
	if got.FinishedAt != nil {
		t.Errorf("expected nil finished_at, got %v", got.FinishedAt)
	}
}

func TestExperimentRepository_GetMissing(t *testing.T) {
	repo := turso.NewExperimentRepository(testDB(t))

	got, err := repo.GetByUniqueName(context.Background(), "nobody.none.1")
	if err != nil {
		t.Fatalf("GetByUniqueName failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestExperimentRepository_ListFilterSortPage(t *testing.T) {
	repo := turso.NewExperimentRepository(testDB(t))
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed(t, repo,
		&domain.Experiment{User: "adam", Project: "mnist", Name: "a", Status: domain.StatusSucceeded,
			LastMetric: map[string]float64{"loss": 0.1}, Declarations: map[string]any{"optimizer": "sgd"},
			CreatedAt: base},
		&domain.Experiment{User: "adam", Project: "mnist", Name: "b", Status: domain.StatusFailed,
			LastMetric: map[string]float64{"loss": 0.5}, Declarations: map[string]any{"optimizer": "adam"},
			CreatedAt: base.Add(time.Hour)},
		&domain.Experiment{User: "eve", Project: "mnist", Name: "c", Status: domain.StatusRunning,
			LastMetric: map[string]float64{"loss": 0.3},
			CreatedAt:  base.Add(2 * time.Hour)},
	)

	tests := []struct {
		name  string
		opts  ports.ListOptions
		want  []string
		count int64
	}{
		{"default sort newest first", ports.ListOptions{}, []string{"c", "b", "a"}, 3},
		{"ascending name", ports.ListOptions{Sort: query.Sort{Field: "name"}}, []string{"a", "b", "c"}, 3},
		{"status alternatives", ports.ListOptions{Query: mustQuery(t, "status:succeeded|failed")}, []string{"b", "a"}, 2},
		{"negated status", ports.ListOptions{Query: mustQuery(t, "status:~running")}, []string{"b", "a"}, 2},
		{"metric comparison", ports.ListOptions{Query: mustQuery(t, "metric.loss:<0.4")}, []string{"c", "a"}, 2},
		{"param equality", ports.ListOptions{Query: mustQuery(t, "param.optimizer:adam")}, []string{"b"}, 1},
		{"user and metric", ports.ListOptions{Query: mustQuery(t, "user:adam, metric.loss:>=0.2")}, []string{"b"}, 1},
		{"date range", ports.ListOptions{Query: mustQuery(t, "created_at:2024-01-01T00:30:00Z..2024-01-01T03:00:00Z")}, []string{"c", "b"}, 2},
		{"first page", ports.ListOptions{Limit: 2}, []string{"c", "b"}, 3},
		{"second page", ports.ListOptions{Limit: 2, Offset: 2}, []string{"a"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.opts)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if gotNames := names(got); !equal(gotNames, tt.want) {
				t.Errorf("List() = %v, want %v", gotNames, tt.want)
			}

			n, err := repo.Count(ctx, tt.opts)
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if n != tt.count {
				t.Errorf("Count() = %d, want %d", n, tt.count)
			}
		})
	}
}

func TestExperimentRepository_ListDateBoundsCoverWholeDay(t *testing.T) {
	repo := turso.NewExperimentRepository(testDB(t))
	ctx := context.Background()

	seed(t, repo,
		&domain.Experiment{User: "adam", Project: "mnist", Name: "before",
			CreatedAt: time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)},
		&domain.Experiment{User: "adam", Project: "mnist", Name: "midnight",
			CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		&domain.Experiment{User: "adam", Project: "mnist", Name: "afternoon",
			CreatedAt: time.Date(2024, 2, 1, 15, 30, 0, 0, time.UTC)},
		&domain.Experiment{User: "adam", Project: "mnist", Name: "next day",
			CreatedAt: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)},
	)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"range ending on a date", "created_at:2024-01-01..2024-02-01", []string{"afternoon", "midnight", "before"}},
		{"single day range", "created_at:2024-02-01..2024-02-01", []string{"afternoon", "midnight"}},
		{"at most a date", "created_at:<=2024-02-01", []string{"afternoon", "midnight", "before"}},
		{"after a date", "created_at:>2024-02-01", []string{"next day"}},
		{"timestamp bound is exact", "created_at:2024-02-01..2024-02-01T12:00:00Z", []string{"midnight"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, ports.ListOptions{Query: mustQuery(t, tt.query)})
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if gotNames := names(got); !equal(gotNames, tt.want) {
				t.Errorf("List(%q) = %v, want %v", tt.query, gotNames, tt.want)
			}
		})
	}
}

func TestExperimentRepository_Bookmarks(t *testing.T) {
	repo := turso.NewExperimentRepository(testDB(t))
	ctx := context.Background()

	a := &domain.Experiment{User: "adam", Project: "mnist", Name: "a"}
	b := &domain.Experiment{User: "adam", Project: "mnist", Name: "b"}
	seed(t, repo, a, b)

	if err := repo.SetBookmarked(ctx, b.UniqueName, true); err != nil {
		t.Fatalf("SetBookmarked failed: %v", err)
	}

	got, err := repo.List(ctx, ports.ListOptions{BookmarkedOnly: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "b" || !got[0].IsBookmarked {
		t.Fatalf("expected only bookmarked b, got %v", names(got))
	}

	if err := repo.SetBookmarked(ctx, b.UniqueName, false); err != nil {
		t.Fatalf("SetBookmarked(false) failed: %v", err)
	}
	n, err := repo.Count(ctx, ports.ListOptions{BookmarkedOnly: true})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 bookmarked, got %d", n)
	}

	err = repo.SetBookmarked(ctx, "adam.mnist.99", true)
	if !errors.Is(err, domain.ErrExperimentNotFound) {
		t.Errorf("expected ErrExperimentNotFound, got %v", err)
	}
}

func TestExperimentRepository_UpdateAndDelete(t *testing.T) {
	repo := turso.NewExperimentRepository(testDB(t))
	ctx := context.Background()

	e := &domain.Experiment{User: "adam", Project: "mnist", Name: "a", Status: domain.StatusRunning}
	seed(t, repo, e)

	now := time.Now().UTC().Truncate(time.Second)
	if err := e.Stop(now); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	e.UpdatedAt = now
	e.LastMetric = map[string]float64{"loss": 0.2}
	if err := repo.Update(ctx, e); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByUniqueName(ctx, e.UniqueName)
	if err != nil {
		t.Fatalf("GetByUniqueName failed: %v", err)
	}
	if got.Status != domain.StatusStopped {
		t.Errorf("expected stopped, got %s", got.Status)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(now) {
		t.Errorf("expected finished_at %v, got %v", now, got.FinishedAt)
	}
	if got.LastMetric["loss"] != 0.2 {
		t.Errorf("expected loss 0.2, got %v", got.LastMetric)
	}

	if err := repo.Delete(ctx, e.UniqueName); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete(ctx, e.UniqueName); !errors.Is(err, domain.ErrExperimentNotFound) {
		t.Errorf("expected ErrExperimentNotFound on second delete, got %v", err)
	}

	missing := &domain.Experiment{UniqueName: "adam.mnist.42", Name: "x", Status: domain.StatusCreated}
	if err := repo.Update(ctx, missing); !errors.Is(err, domain.ErrExperimentNotFound) {
		t.Errorf("expected ErrExperimentNotFound on update, got %v", err)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
