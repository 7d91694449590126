package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/coach/internal/cli/formatter"
	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/service"
	"github.com/spf13/cobra"
)

func newGoalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Track saved goals",
	}
	cmd.AddCommand(
		newGoalListCmd(app),
		newGoalShowCmd(app),
		newGoalDoneCmd(app),
		newGoalRemoveCmd(app),
	)
	return cmd
}

// loadBoard fetches the signed-in user's active goals.
func (a *App) loadBoard(ctx context.Context) (*service.GoalBoard, error) {
	me, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	board := a.newBoard(me.ID)
	if err := board.Load(ctx); err != nil {
		return nil, failure(err, "Failed to load goals")
	}
	return board, nil
}

func newGoalListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active goals with progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := app.loadBoard(cmd.Context())
			if err != nil {
				return err
			}
			writeln(cmd, formatter.FormatGoalList(board.Goals(), app.now()))
			return nil
		},
	}
}

func newGoalShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <goal-id>",
		Short: "Show a goal's phases and routes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := app.loadBoard(cmd.Context())
			if err != nil {
				return err
			}
			g, ok := board.Goal(domain.ID(args[0]))
			if !ok {
				return fmt.Errorf("goal %s: %w", args[0], service.ErrGoalNotFound)
			}
			writeln(cmd, formatter.FormatGoalDetail(g, app.now()))
			return nil
		},
	}
}

func newGoalDoneCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "done <goal-id> <phase> <route>",
		Short: "Mark a route as completed (cannot be undone)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			phase, route, err := routePosition(args[1], args[2])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			board, err := app.loadBoard(ctx)
			if err != nil {
				return err
			}

			goalID := domain.ID(args[0])
			var confirmErr error
			outcome, err := board.ToggleDone(ctx, goalID, phase, route, func(r domain.Route) bool {
				if yes {
					return true
				}
				ok, err := app.confirm("Complete "+formatter.FormatRoute(r)+"?", "Completed routes cannot be reopened.")
				confirmErr = err
				return ok
			})
			if confirmErr != nil {
				return confirmErr
			}
			if err != nil {
				if errors.Is(err, service.ErrGoalNotFound) || errors.Is(err, domain.ErrRouteNotFound) {
					return err
				}
				return failure(err, "Update failed")
			}

			switch outcome {
			case service.ToggleAlreadyDone:
				writeln(cmd, "Route is already completed.")
			case service.ToggleDeclined:
				writeln(cmd, "Cancelled.")
			case service.ToggleApplied:
				g, _ := board.Goal(goalID)
				writeln(cmd, formatter.Success("Route completed."))
				writeln(cmd, formatter.RenderProgress(g.Progress(), 24))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newGoalRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <goal-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a goal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			board, err := app.loadBoard(ctx)
			if err != nil {
				return err
			}
			goalID := domain.ID(args[0])
			g, ok := board.Goal(goalID)
			if !ok {
				return fmt.Errorf("goal %s: %w", goalID, service.ErrGoalNotFound)
			}
			if !yes {
				ok, err := app.confirm(fmt.Sprintf("Delete goal %q?", domain.CoalesceStr(g.Summary(), goalID.String())), "Its progress is lost.")
				if err != nil {
					return err
				}
				if !ok {
					writeln(cmd, "Cancelled.")
					return nil
				}
			}
			if err := board.Delete(ctx, goalID); err != nil {
				return failure(err, "Delete failed")
			}
			writeln(cmd, formatter.Success("Goal deleted."))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show what you have completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			me, err := app.currentUser(ctx)
			if err != nil {
				return err
			}
			goals, err := app.History.List(ctx, me.ID)
			if err != nil {
				return failure(err, "Failed to load history")
			}
			writeln(cmd, formatter.FormatHistory(goals, app.now()))
			return nil
		},
	}
}

func newFeedbackCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "feedback",
		Short: "Ask the AI coach to review your progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := app.startSpinner(cmd, "Asking your coach")
			fb, err := app.Coach.Feedback(cmd.Context())
			stop()
			if err != nil {
				return failure(err, "Failed to load feedback")
			}
			writeln(cmd, formatter.FormatFeedback(fb))
			return nil
		},
	}
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Overview of goals, completed routes and feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := app.startSpinner(cmd, "Loading dashboard")
			d, err := app.Coach.Dashboard(cmd.Context())
			stop()
			if err != nil {
				return failure(err, "Failed to load dashboard")
			}
			writeln(cmd, formatter.FormatDashboard(formatter.DashboardData{
				User:      d.User,
				Active:    d.Active,
				History:   d.History,
				Feedback:  d.Feedback,
				Completed: d.Completed,
			}, app.now()))
			return nil
		},
	}
}
