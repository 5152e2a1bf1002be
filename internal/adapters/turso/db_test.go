package turso

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/emiliopalmerini/runboard/internal/infrastructure/config"
)

func TestIsStreamError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"stream", errors.New("hrana: stream not found"), true},
		{"other", errors.New("syntax error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStreamError(tt.err); got != tt.want {
				t.Errorf("IsStreamError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	got, err := WithRetry(ctx, 2, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("stream not found")
		}
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Fatalf("WithRetry() = %d, %v, want 42, nil", got, err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}

	calls = 0
	_, err = WithRetry(ctx, 2, func() (int, error) {
		calls++
		return 0, errors.New("constraint failed")
	})
	if err == nil || calls != 1 {
		t.Errorf("expected one call and an error for non stream errors, got %d calls, err %v", calls, err)
	}

	calls = 0
	_, err = WithRetry(ctx, 1, func() (int, error) {
		calls++
		return 0, errors.New("stream not found")
	})
	if !IsStreamError(err) || calls != 2 {
		t.Errorf("expected retries to give up after 2 calls, got %d calls, err %v", calls, err)
	}
}

func TestDataSourceName(t *testing.T) {
	dsn, err := dataSourceName(config.Database{URL: "libsql://db.turso.io", AuthToken: "tok"})
	if err != nil {
		t.Fatal(err)
	}
	if dsn != "libsql://db.turso.io?authToken=tok" {
		t.Errorf("unexpected dsn %q", dsn)
	}

	dsn, _ = dataSourceName(config.Database{URL: "file:/tmp/x.db"})
	if dsn != "file:/tmp/x.db" {
		t.Errorf("unexpected dsn %q", dsn)
	}

	t.Setenv("XDG_DATA_HOME", t.TempDir())
	dsn, err = dataSourceName(config.Database{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dsn, "file:") || !strings.HasSuffix(dsn, "runboard.db") {
		t.Errorf("expected local database file, got %q", dsn)
	}
}
