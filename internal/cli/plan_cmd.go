package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/coach/internal/cli/formatter"
	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/planner"
	"github.com/alexanderramin/coach/internal/repository"
	"github.com/alexanderramin/coach/internal/service"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	var draft string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate, edit and save learning plans",
		Long: "Generated plans are kept as local drafts until saved. --draft selects a\n" +
			"draft by ID or unique ID prefix; without it the most recently edited one is used.",
	}
	cmd.PersistentFlags().StringVarP(&draft, "draft", "d", "", "Draft ID or prefix (default: most recent)")

	cmd.AddCommand(
		newPlanGenerateCmd(app),
		newPlanListCmd(app),
		newPlanShowCmd(app, &draft),
		newPlanExportCmd(app, &draft),
		newPlanImportCmd(app, &draft),
		newPlanPhaseCmd(app, &draft),
		newPlanRouteCmd(app, &draft),
		newPlanSaveCmd(app, &draft),
		newPlanDiscardCmd(app, &draft),
	)
	return cmd
}

func newPlanGenerateCmd(app *App) *cobra.Command {
	var (
		target   string
		deadline time.Time
		cvPath   string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Ask the AI coach for a plan and keep it as a draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (strings.TrimSpace(target) == "" || deadline.IsZero()) && app.interactive() {
				raw := ""
				if !deadline.IsZero() {
					raw = deadline.Format("2006-01-02")
				}
				if err := planForm(&target, &raw).Run(); err != nil {
					return err
				}
				d, err := parseDeadline(raw, app.now())
				if err != nil {
					return err
				}
				deadline = d
			}

			cv, err := app.cvOverride(cmd, cvPath)
			if err != nil {
				return err
			}

			stop := app.watchGeneration(cmd)
			d, err := app.Drafts.Generate(cmd.Context(), service.GenerateInput{
				Target:     target,
				Deadline:   deadline,
				CVAnalysis: cv,
			})
			stop()
			if err != nil {
				return failure(err, "Failed to generate plan")
			}

			writeln(cmd, formatter.FormatPlanDraft(d))
			writeln(cmd, formatter.Dim("Adjust with `coach plan route set`, then `coach plan save`."))
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "What you want to become, in your own words")
	cmd.Flags().Var(newDeadlineValue(&deadline, app.now), "deadline", "When you want to get there (YYYY-MM-DD, +90d, ...)")
	cmd.Flags().StringVar(&cvPath, "cv", "", "Analyze this CV file first instead of using the latest analysis")
	return cmd
}

// watchGeneration shows a spinner with the current attempt while the planner runs.
func (a *App) watchGeneration(cmd *cobra.Command) (stop func()) {
	if !a.interactive() || a.Progress == nil {
		return func() {}
	}
	s := formatter.NewSpinner(stderr(cmd), "Generating plan")
	s.Start()
	unwatch := a.Progress.Watch(func(t planner.Transition) {
		switch t.To {
		case planner.Submitting:
			if t.Attempt > 1 {
				s.SetMessage(fmt.Sprintf("Generating plan (attempt %d/%d)", t.Attempt, a.PlanMaxAttempts))
			}
		case planner.Retrying:
			s.SetMessage(fmt.Sprintf("Plan not ready yet, retrying (%d/%d)", t.Attempt, a.PlanMaxAttempts))
		}
	})
	return func() {
		unwatch()
		s.Stop()
	}
}

func newPlanListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List plan drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := app.Drafts.List(cmd.Context())
			if err != nil {
				return failure(err, "Failed to load drafts")
			}
			writeln(cmd, formatter.FormatDraftList(drafts, app.now()))
			return nil
		},
	}
}

func newPlanShowCmd(app *App, draft *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show a plan draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.Drafts.Get(cmd.Context(), *draft)
			if err != nil {
				return draftFailure(err)
			}
			writeln(cmd, formatter.FormatPlanDraft(d))
			return nil
		},
	}
}

func newPlanExportCmd(app *App, draft *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a draft as YAML for editing",
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := app.Drafts.Export(cmd.Context(), *draft, w); err != nil {
				return draftFailure(err)
			}
			if output != "" && output != "-" {
				writeln(cmd, formatter.Success("Exported to "+output))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write (default: stdout)")
	return cmd
}

func newPlanImportCmd(app *App, draft *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace a draft's phases with edited YAML (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}
			d, err := app.Drafts.Import(cmd.Context(), *draft, r)
			if err != nil {
				return draftFailure(err)
			}
			writeln(cmd, formatter.FormatPlanDraft(d))
			return nil
		},
	}
}

func newPlanPhaseCmd(app *App, draft *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Add, remove or rename phases",
	}

	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Append a phase with one empty route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.editDraft(cmd, *draft, func(e *domain.PlanEditor) error {
				e.AddPhase(args[0])
				return nil
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <phase>",
		Short: "Remove a phase (the last one stays)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phase, err := position("phase", args[0])
			if err != nil {
				return err
			}
			return app.editDraft(cmd, *draft, func(e *domain.PlanEditor) error {
				return e.RemovePhase(phase)
			})
		},
	}

	title := &cobra.Command{
		Use:   "title <phase> <title>",
		Short: "Rename a phase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			phase, err := position("phase", args[0])
			if err != nil {
				return err
			}
			return app.editDraft(cmd, *draft, func(e *domain.PlanEditor) error {
				return e.SetPhaseTitle(phase, args[1])
			})
		},
	}

	cmd.AddCommand(add, rm, title)
	return cmd
}

func newPlanRouteCmd(app *App, draft *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Add, remove or edit routes",
	}

	var fields struct{ title, percentage, description, deadline string }
	add := &cobra.Command{
		Use:   "add <phase>",
		Short: "Append a route to a phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phase, err := position("phase", args[0])
			if err != nil {
				return err
			}
			return app.editDraft(cmd, *draft, func(e *domain.PlanEditor) error {
				route, err := e.AddRoute(phase)
				if err != nil {
					return err
				}
				for field, value := range map[string]string{
					"small_title": fields.title,
					"percentage":  fields.percentage,
					"description": fields.description,
					"deadline":    fields.deadline,
				} {
					if value == "" {
						continue
					}
					if err := e.SetRouteField(phase, route, field, value); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	add.Flags().StringVar(&fields.title, "title", "", "Route title")
	add.Flags().StringVar(&fields.percentage, "percentage", "", "Share of the goal, in percent")
	add.Flags().StringVar(&fields.description, "description", "", "What to do")
	add.Flags().StringVar(&fields.deadline, "deadline", "", "Route deadline (YYYY-MM-DD)")

	rm := &cobra.Command{
		Use:   "rm <phase> <route>",
		Short: "Remove a route (the last one in a phase stays)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			phase, route, err := routePosition(args[0], args[1])
			if err != nil {
				return err
			}
			return app.editDraft(cmd, *draft, func(e *domain.PlanEditor) error {
				return e.RemoveRoute(phase, route)
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <phase> <route> <field> <value>",
		Short: "Set small_title, percentage, description or deadline of a route",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			phase, route, err := routePosition(args[0], args[1])
			if err != nil {
				return err
			}
			field := strings.ReplaceAll(strings.ToLower(args[2]), "-", "_")
			if field == "title" {
				field = "small_title"
			}
			return app.editDraft(cmd, *draft, func(e *domain.PlanEditor) error {
				return e.SetRouteField(phase, route, field, args[3])
			})
		},
	}

	cmd.AddCommand(add, rm, set)
	return cmd
}

func newPlanSaveCmd(app *App, draft *string) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save a draft as a goal (routes must add up to 100%)",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := app.Drafts.Save(cmd.Context(), *draft)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) || errors.Is(err, service.ErrAmbiguousDraft) {
					return draftFailure(err)
				}
				return failure(err, "Save failed")
			}
			writeln(cmd, formatter.Success(fmt.Sprintf("Saved goal %q.", domain.CoalesceStr(payload.Goal, "(untitled)"))))
			writeln(cmd, formatter.Dim("Track it with: coach goal list"))
			return nil
		},
	}
}

func newPlanDiscardCmd(app *App, draft *string) *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Delete a draft without saving it",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.Drafts.Discard(cmd.Context(), *draft)
			if err != nil {
				return draftFailure(err)
			}
			writeln(cmd, fmt.Sprintf("Discarded draft %s (%s).", formatter.TruncID(d.ID), d.Target))
			return nil
		},
	}
}

// editDraft applies fn to the selected draft and prints the result.
func (a *App) editDraft(cmd *cobra.Command, ref string, fn func(e *domain.PlanEditor) error) error {
	d, err := a.Drafts.Edit(cmd.Context(), ref, fn)
	if err != nil {
		return draftFailure(err)
	}
	writeln(cmd, formatter.FormatPlanDraft(d))
	return nil
}

func draftFailure(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &userError{msg: err.Error() + "; see `coach plan list`", err: err}
	}
	return failure(err, "Plan draft update failed")
}

// position parses a 1-based index as shown in listings.
func position(what, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: expected a number from 1", what, arg)
	}
	return n - 1, nil
}

func routePosition(phaseArg, routeArg string) (phase, route int, err error) {
	if phase, err = position("phase", phaseArg); err != nil {
		return 0, 0, err
	}
	if route, err = position("route", routeArg); err != nil {
		return 0, 0, err
	}
	return phase, route, nil
}
