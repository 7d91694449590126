package cli

import (
	"fmt"

	"github.com/alexanderramin/coach/internal/cli/formatter"
	"github.com/alexanderramin/coach/internal/domain"
	"github.com/spf13/cobra"
)

func newCVCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cv",
		Short: "Analyze your CV with the AI coach",
	}
	cmd.AddCommand(newCVAnalyzeCmd(app), newCVShowCmd(app))
	return cmd
}

func newCVAnalyzeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>",
		Short: "Upload a CV (PDF or DOCX) for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := app.startSpinner(cmd, "Analyzing CV")
			rec, err := app.Coach.AnalyzeCV(cmd.Context(), args[0])
			stop()
			if err != nil {
				return failure(err, "Failed to analyze CV")
			}
			writeln(cmd, formatter.FormatCV(rec.Analysis.Summary()))
			writeln(cmd, formatter.Dim("Next: coach plan generate --target \"...\" --deadline YYYY-MM-DD"))
			return nil
		},
	}
}

func newCVShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the latest CV analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := app.Coach.LatestCV(cmd.Context())
			if err != nil {
				return failure(err, "Failed to load CV analysis")
			}
			writeln(cmd, formatter.FormatCV(rec.Analysis.Summary()))
			if rec.Filename != "" {
				writeln(cmd, formatter.Dim(fmt.Sprintf("From %s, analyzed %s", rec.Filename, formatter.HumanDate(rec.AnalyzedAt, app.now()))))
			}
			return nil
		},
	}
}

// startSpinner animates msg on stderr in a terminal. Outside one it does nothing.
func (a *App) startSpinner(cmd *cobra.Command, msg string) (stop func()) {
	if !a.interactive() {
		return func() {}
	}
	s := formatter.NewSpinner(stderr(cmd), msg)
	s.Start()
	return s.Stop
}

// cvOverride analyzes path first when given, so a plan can be generated from a new CV in one step.
func (a *App) cvOverride(cmd *cobra.Command, path string) (domain.CVAnalysis, error) {
	if path == "" {
		return nil, nil
	}
	stop := a.startSpinner(cmd, "Analyzing CV")
	rec, err := a.Coach.AnalyzeCV(cmd.Context(), path)
	stop()
	if err != nil {
		return nil, failure(err, "Failed to analyze CV")
	}
	return rec.Analysis, nil
}
