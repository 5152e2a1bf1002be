package cli

import (
	"bytes"
	"path/filepath"
	"testing"
)

// testEnv points the CLI at a fresh database file and migrates it.
func testEnv(t *testing.T) {
	t.Helper()

	t.Setenv("RUNBOARD_DATABASE_URL", "file:"+filepath.Join(t.TempDir(), "test.db"))
	t.Setenv("RUNBOARD_AUTH_TOKEN", "")
	t.Setenv("RUNBOARD_OTEL_ENABLED", "false")
	t.Setenv("RUNBOARD_LOG_LEVEL", "error")

	if _, err := runCLI(t, "migrate"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
}

// runCLI executes the command tree with args and returns its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
