package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/experiments"
	"github.com/emiliopalmerini/runboard/internal/query"
	"github.com/emiliopalmerini/runboard/internal/util"
	"github.com/emiliopalmerini/runboard/internal/view"
)

// withApp opens an AppContext for the duration of fn.
func withApp(cmd *cobra.Command, log func() *zap.SugaredLogger, fn func(ctx context.Context, app *AppContext) error) error {
	ctx := cmd.Context()
	app, err := NewAppContext(ctx, log())
	if err != nil {
		return err
	}
	defer app.Close(context.Background())
	return fn(ctx, app)
}

func newExperimentCmd(log func() *zap.SugaredLogger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Manage experiments",
		Long:  `Create, list, update, stop, bookmark and delete experiment runs.`,
	}
	cmd.AddCommand(
		newExperimentCreateCmd(log),
		newExperimentListCmd(log),
		newExperimentUpdateCmd(log),
		newExperimentDeleteCmd(log),
		newExperimentStopCmd(log),
		newExperimentBookmarkCmd(log),
	)
	return cmd
}

func newExperimentCreateCmd(log func() *zap.SugaredLogger) *cobra.Command {
	var (
		user, project, description, status string
		metrics, params                    []string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new experiment",
		Long: `Create a new experiment run. Its unique name is <user>.<project>.<n>.

Examples:
  runboard experiment create baseline --user ada --project mnist --param lr=0.01
  runboard experiment create wide --user ada --project mnist --status running --metric loss=0.4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lastMetric, err := parseMetrics(metrics)
			if err != nil {
				return err
			}
			declarations, err := parseParams(params)
			if err != nil {
				return err
			}
			p := experiments.CreateParams{
				User:         user,
				Project:      project,
				Name:         args[0],
				Status:       domain.Status(status),
				LastMetric:   lastMetric,
				Declarations: declarations,
			}
			if cmd.Flags().Changed("description") {
				p.Description = &description
			}

			return withApp(cmd, log, func(ctx context.Context, app *AppContext) error {
				exp, err := app.Service.Create(ctx, p)
				if err != nil {
					return fmt.Errorf("failed to create experiment: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created experiment: %s\n", exp.UniqueName)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "Owner of the experiment")
	cmd.Flags().StringVarP(&project, "project", "P", "", "Project the experiment belongs to")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the experiment")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Initial status (default created)")
	cmd.Flags().StringArrayVarP(&metrics, "metric", "m", nil, "Metric value as key=value, repeatable")
	cmd.Flags().StringArrayVar(&params, "param", nil, "Parameter as key=value, repeatable")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newExperimentListCmd(log func() *zap.SugaredLogger) *cobra.Command {
	var (
		filter, sort, columns, user string
		offset, limit               int64
		bookmarks                   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List experiments",
		Long: `List one page of experiments.

Examples:
  runboard experiment list --query "status:running|failed, metric.loss:<0.3"
  runboard experiment list --sort name --columns metric:loss,param:lr`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, log, func(ctx context.Context, app *AppContext) error {
				if limit <= 0 {
					limit = app.Config.PageSize
				}
				page, err := app.Service.Fetch(ctx, experiments.FetchParams{
					Offset:    offset,
					Limit:     limit,
					Query:     filter,
					Sort:      sort,
					Bookmarks: bookmarks,
					User:      user,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if page.Count == 0 {
					if bookmarks {
						fmt.Fprintln(out, "No bookmarked experiments.")
					} else {
						fmt.Fprintln(out, "No experiments found. Create one with: runboard experiment create --help")
					}
					return nil
				}

				t := view.BuildTable(page.Experiments, parseColumns(columns), nil)
				if err := printTable(out, t, time.Now()); err != nil {
					return err
				}
				fmt.Fprintf(out, "\nShowing %d-%d of %s\n",
					page.Offset+1, page.Offset+int64(len(page.Experiments)), util.FormatCount(page.Count))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter, "query", "q", "", "Filter, e.g. status:running,metric.loss:<0.3")
	cmd.Flags().StringVarP(&sort, "sort", "s", query.DefaultSort, "Sort order")
	cmd.Flags().StringVarP(&columns, "columns", "c", "", "Extra columns, e.g. metric:loss,param:lr")
	cmd.Flags().StringVarP(&user, "user", "u", "", "Only list this user's experiments")
	cmd.Flags().Int64Var(&offset, "offset", 0, "Rows to skip")
	cmd.Flags().Int64VarP(&limit, "limit", "n", 0, "Page size (default RUNBOARD_PAGE_SIZE)")
	cmd.Flags().BoolVarP(&bookmarks, "bookmarks", "b", false, "Only bookmarked experiments")
	return cmd
}

func newExperimentUpdateCmd(log func() *zap.SugaredLogger) *cobra.Command {
	var (
		name, description, status string
		metrics, params           []string
	)

	cmd := &cobra.Command{
		Use:   "update <unique-name>",
		Short: "Update an experiment",
		Long: `Update an experiment. Metric and parameter values are merged into the
stored ones.

Examples:
  runboard experiment update ada.mnist.1 --status running --metric loss=0.21`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lastMetric, err := parseMetrics(metrics)
			if err != nil {
				return err
			}
			declarations, err := parseParams(params)
			if err != nil {
				return err
			}
			p := experiments.UpdateParams{LastMetric: lastMetric, Declarations: declarations}
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("description") {
				p.Description = &description
			}
			if cmd.Flags().Changed("status") {
				s := domain.Status(status)
				p.Status = &s
			}

			return withApp(cmd, log, func(ctx context.Context, app *AppContext) error {
				exp, err := app.Service.Update(ctx, args[0], p)
				if err != nil {
					return fmt.Errorf("failed to update experiment: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated experiment: %s (%s)\n", exp.UniqueName, exp.Status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status")
	cmd.Flags().StringArrayVarP(&metrics, "metric", "m", nil, "Metric value as key=value, repeatable")
	cmd.Flags().StringArrayVar(&params, "param", nil, "Parameter as key=value, repeatable")
	return cmd
}

func newExperimentDeleteCmd(log func() *zap.SugaredLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <unique-name>",
		Short: "Delete an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, log, func(ctx context.Context, app *AppContext) error {
				if err := app.Service.Delete(ctx, args[0]); err != nil {
					return fmt.Errorf("failed to delete experiment: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted experiment: %s\n", args[0])
				return nil
			})
		},
	}
}

func newExperimentStopCmd(log func() *zap.SugaredLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <unique-name>",
		Short: "Stop a running experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, log, func(ctx context.Context, app *AppContext) error {
				if _, err := app.Service.Stop(ctx, args[0]); err != nil {
					return fmt.Errorf("failed to stop experiment: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stopped experiment: %s\n", args[0])
				return nil
			})
		},
	}
}

func newExperimentBookmarkCmd(log func() *zap.SugaredLogger) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "bookmark <unique-name>",
		Short: "Bookmark an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, log, func(ctx context.Context, app *AppContext) error {
				if err := app.Service.Bookmark(ctx, args[0], !remove); err != nil {
					return fmt.Errorf("failed to bookmark experiment: %w", err)
				}
				if remove {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed bookmark: %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Bookmarked experiment: %s\n", args[0])
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the bookmark instead")
	return cmd
}
