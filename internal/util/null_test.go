package util

import (
	"database/sql"
	"testing"
	"time"
)

func TestNullStringRoundTrip(t *testing.T) {
	if got := NullStringPtr(nil); got.Valid {
		t.Errorf("NullStringPtr(nil) = %+v, want invalid", got)
	}
	if got := NullStringToPtr(sql.NullString{}); got != nil {
		t.Errorf("NullStringToPtr(invalid) = %q, want nil", *got)
	}

	s := "lr sweep"
	ns := NullStringPtr(&s)
	if !ns.Valid || ns.String != s {
		t.Fatalf("NullStringPtr(%q) = %+v", s, ns)
	}
	if got := NullStringToPtr(ns); got == nil || *got != s {
		t.Errorf("NullStringToPtr(%+v) = %v, want %q", ns, got, s)
	}
}

func TestNullTimeRoundTrip(t *testing.T) {
	if got := NullTime(nil); got.Valid {
		t.Errorf("NullTime(nil) = %+v, want invalid", got)
	}
	if got := NullTimeToPtr(sql.NullString{String: "", Valid: true}); got != nil {
		t.Errorf("NullTimeToPtr(empty) = %v, want nil", got)
	}

	ts := time.Date(2024, 2, 1, 15, 30, 0, 0, time.UTC)
	ns := NullTime(&ts)
	if ns.String != "2024-02-01T15:30:00Z" {
		t.Fatalf("NullTime = %q", ns.String)
	}
	if got := NullTimeToPtr(ns); got == nil || !got.Equal(ts) {
		t.Errorf("NullTimeToPtr(%q) = %v, want %v", ns.String, got, ts)
	}
}

func TestBoolToInt64(t *testing.T) {
	if BoolToInt64(true) != 1 || BoolToInt64(false) != 0 {
		t.Error("BoolToInt64 should map true to 1 and false to 0")
	}
}
