package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/coach/internal/api"
	"github.com/alexanderramin/coach/internal/cli"
	"github.com/alexanderramin/coach/internal/config"
	"github.com/alexanderramin/coach/internal/db"
	"github.com/alexanderramin/coach/internal/httpclient"
	"github.com/alexanderramin/coach/internal/planner"
	"github.com/alexanderramin/coach/internal/repository"
	"github.com/alexanderramin/coach/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	database, err := db.OpenDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// The session token lives next to the drafts so it survives between runs.
	store := repository.NewSQLiteTokenStore(database)

	clientOpts := []httpclient.Option{
		httpclient.WithTimeout(time.Duration(cfg.API.TimeoutMs) * time.Millisecond),
		httpclient.WithLogger(logger),
	}
	if cfg.API.LogCalls {
		clientOpts = append(clientOpts, httpclient.WithObserver(httpclient.NewLogObserver(logger)))
	}
	client := httpclient.New(cfg.API.URL, store, clientOpts...)

	goals := api.NewGoals(client)
	gemini := api.NewGemini(client)
	cvs := repository.NewSQLiteCVRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)
	observer := service.NewLogUseCaseObserver(logger)

	progress := cli.NewPlanProgress()
	workflow := planner.New(gemini,
		planner.WithMaxAttempts(cfg.Planner.MaxAttempts),
		planner.WithBackoff(time.Duration(cfg.Planner.BackoffMs)*time.Millisecond),
		planner.WithLogger(logger),
		planner.WithObserver(planner.MultiObserver{planner.NewLogObserver(logger), progress}),
	)

	account := service.NewAccount(api.NewAuth(client, logger), api.NewUsers(client), store, logger, observer)
	app := &cli.App{
		Account:         account,
		Coach:           service.NewCoach(account, gemini, goals, cvs, observer),
		Drafts:          service.NewPlanDrafts(account, workflow, goals, repository.NewSQLitePlanDraftRepo(database), cvs, uow, observer),
		History:         service.NewHistory(goals, observer),
		Goals:           goals,
		Observers:       []service.UseCaseObserver{observer},
		Progress:        progress,
		PlanMaxAttempts: workflow.MaxAttempts(),
	}

	// Prompts, spinners and the board need a terminal on both ends.
	app.IsInteractive = func() bool {
		in, out := os.Stdin.Fd(), os.Stdout.Fd()
		return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
			(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
