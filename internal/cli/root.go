package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services and terminal hooks used by CLI commands.
type App struct {
	Account *service.Account
	Coach   *service.Coach
	Drafts  *service.PlanDrafts
	History *service.History
	Goals   service.GoalAPI

	// Observers are handed to per-command services such as the goal board.
	Observers []service.UseCaseObserver

	// Progress relays plan workflow transitions to the running command.
	Progress *PlanProgress
	// PlanMaxAttempts is shown next to the spinner while a plan is generated.
	PlanMaxAttempts int

	// IsInteractive reports whether prompts and the board may take over the terminal.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Nil uses a huh confirm form.
	Confirm func(title, description string) (bool, error)
	// Now is the clock used for relative dates. Nil means time.Now.
	Now func() time.Time
}

// NewRootCmd creates the top-level "coach" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "coach",
		Short:         "Plan, track and review learning goals with an AI coach",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newRegisterCmd(app),
		newWhoamiCmd(app),
		newProfileCmd(app),
		newPasswordCmd(app),
		newCVCmd(app),
		newPlanCmd(app),
		newGoalCmd(app),
		newHistoryCmd(app),
		newFeedbackCmd(app),
		newDashboardCmd(app),
		newBoardCmd(app),
	)

	return root
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) newBoard(userID domain.ID) *service.GoalBoard {
	return service.NewGoalBoard(a.Goals, userID, a.Observers...)
}

// currentUser resolves the signed-in user or explains how to sign in.
func (a *App) currentUser(ctx context.Context) (*domain.User, error) {
	me, err := a.Account.Current(ctx)
	if err != nil {
		return nil, failure(err, "Failed to load your account")
	}
	return me, nil
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func writeln(cmd *cobra.Command, text string) {
	fmt.Fprintln(cmd.OutOrStdout(), text)
}

func stderr(cmd *cobra.Command) io.Writer {
	return cmd.ErrOrStderr()
}
