// Package cli implements the runboard command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/runboard/internal/infrastructure/config"
	"github.com/emiliopalmerini/runboard/internal/logger"
)

// NewRootCmd builds the runboard command tree.
func NewRootCmd() *cobra.Command {
	var log *zap.SugaredLogger

	cmd := &cobra.Command{
		Use:   "runboard",
		Short: "Track experiment runs and browse them from the web or a terminal",
		Long: `runboard is a small experiment tracking dashboard.

Record runs with their parameters and latest metric values, then browse,
filter and compare them in the web dashboard or the terminal UI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadLog()
			if err != nil {
				return fmt.Errorf("failed to load log config: %w", err)
			}
			l, err := logger.New(cfg.Level, cfg.Development)
			if err != nil {
				return err
			}
			log = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}

	logFn := func() *zap.SugaredLogger {
		if log == nil {
			return logger.Nop()
		}
		return log
	}

	cmd.AddCommand(
		newServeCmd(logFn),
		newMigrateCmd(logFn),
		newExperimentCmd(logFn),
		newTUICmd(),
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
