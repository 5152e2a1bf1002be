package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/runboard/internal/logger"
	"github.com/emiliopalmerini/runboard/internal/tui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse experiments in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Log lines would corrupt the alternate screen.
			app, err := NewAppContext(cmd.Context(), logger.Nop())
			if err != nil {
				return err
			}
			defer app.Close(context.Background())

			p := tea.NewProgram(tui.NewApp(app.Service, app.Config.PageSize), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("tui failed: %w", err)
			}
			return nil
		},
	}
}
