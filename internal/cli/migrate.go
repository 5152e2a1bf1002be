package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/runboard/internal/adapters/turso"
	"github.com/emiliopalmerini/runboard/internal/infrastructure/config"
	"github.com/emiliopalmerini/runboard/internal/migrate"
)

func newMigrateCmd(log func() *zap.SugaredLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [version]",
		Short: "Run database migrations",
		Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  runboard migrate      # Run all pending migrations
  runboard migrate 2    # Migrate to version 2
  runboard migrate 0    # Rollback all migrations`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.LoadDatabase()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			db, err := turso.NewDB(*cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			m := migrate.New(db.DB, log())
			current, _, err := m.Version(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\n", current)

			var ran int
			if len(args) == 0 {
				ran, err = m.Up(ctx)
			} else {
				target, convErr := strconv.Atoi(args[0])
				if convErr != nil || target < 0 {
					return fmt.Errorf("invalid version number: %s", args[0])
				}
				ran, err = m.To(ctx, target)
			}
			if err != nil {
				return fmt.Errorf("migration failed after %d step(s): %w", ran, err)
			}

			version, _, err := m.Version(ctx)
			if err != nil {
				return err
			}
			if ran == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Already at target version")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s), now at version %d\n", ran, version)
			return nil
		},
	}
}
