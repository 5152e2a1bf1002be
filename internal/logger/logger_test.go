package logger

import "testing"

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		l, err := New(level, false)
		if err != nil {
			t.Fatalf("New(%q) error = %v", level, err)
		}
		_ = l.Sync()
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("loud", false); err == nil {
		t.Fatal("New(loud) succeeded")
	}
}
