package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/runboard/internal/view"
	"github.com/emiliopalmerini/runboard/internal/web"
)

func newServeCmd(log func() *zap.SugaredLogger) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard",
		Long: `Start the web dashboard server.

Examples:
  runboard serve              # Start on default port 8080
  runboard serve --port 3000  # Start on port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, log(), port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	return cmd
}

func runServe(ctx context.Context, log *zap.SugaredLogger, port int) error {
	app, err := NewAppContext(ctx, log)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	views := view.NewStore(app.Config.ViewTTL)
	server := web.NewServer(app.Service, views, log, web.Options{
		Port:        port,
		PageSize:    app.Config.PageSize,
		UseFilters:  app.Config.UseFilters,
		CurrentUser: app.Config.CurrentUser,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx)
	})
	g.Go(func() error {
		return views.Run(ctx, sweepInterval(app.Config.ViewTTL))
	})
	return g.Wait()
}

// sweepInterval checks for idle views a few times per TTL.
func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Second)
}
