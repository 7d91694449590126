package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Coach groups the AI-backed reads: CV analysis, feedback and the dashboard.
type Coach struct {
	account  *Account
	gemini   GeminiAPI
	goals    GoalAPI
	cvs      repository.CVRepo
	observer UseCaseObserver
	now      func() time.Time
}

func NewCoach(account *Account, gemini GeminiAPI, goals GoalAPI, cvs repository.CVRepo, observers ...UseCaseObserver) *Coach {
	return &Coach{
		account:  account,
		gemini:   gemini,
		goals:    goals,
		cvs:      cvs,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

// AnalyzeCV uploads the file at path and caches the analysis locally.
func (c *Coach) AnalyzeCV(ctx context.Context, path string) (rec *domain.CVRecord, err error) {
	defer observe(ctx, c.observer, "coach.analyze_cv", time.Now(), &err, map[string]any{"file": filepath.Base(path)})
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CV: %w", err)
	}
	defer f.Close()
	return c.AnalyzeCVReader(ctx, filepath.Base(path), f)
}

// AnalyzeCVReader is AnalyzeCV for an already open file.
func (c *Coach) AnalyzeCVReader(ctx context.Context, filename string, r io.Reader) (*domain.CVRecord, error) {
	me, err := c.account.Current(ctx)
	if err != nil {
		return nil, err
	}
	analysis, err := c.gemini.AnalyzeCV(ctx, me.ID, filename, r)
	if err != nil {
		return nil, err
	}
	rec := &domain.CVRecord{
		UserID:     me.ID.String(),
		Filename:   filename,
		Analysis:   analysis,
		AnalyzedAt: c.now().UTC(),
	}
	if err := c.cvs.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("caching CV analysis: %w", err)
	}
	return rec, nil
}

// LatestCV returns the cached analysis, falling back to the copy the backend
// keeps on the user record.
func (c *Coach) LatestCV(ctx context.Context) (*domain.CVRecord, error) {
	me, err := c.account.Current(ctx)
	if err != nil {
		return nil, err
	}
	return latestCV(ctx, c.cvs, me)
}

func latestCV(ctx context.Context, cvs repository.CVRepo, me *domain.User) (*domain.CVRecord, error) {
	rec, err := cvs.Get(ctx, me.ID.String())
	if err == nil && !rec.Analysis.Empty() {
		return rec, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("reading cached CV analysis: %w", err)
	}
	if me.Metadata.Empty() {
		return nil, ErrNoCVAnalysis
	}
	return &domain.CVRecord{UserID: me.ID.String(), Analysis: me.Metadata}, nil
}

// Feedback asks the AI coach to review the current user's progress.
func (c *Coach) Feedback(ctx context.Context) (fb domain.Feedback, err error) {
	defer observe(ctx, c.observer, "coach.feedback", time.Now(), &err, nil)
	me, err := c.account.Current(ctx)
	if err != nil {
		return domain.Feedback{}, err
	}
	return c.gemini.Feedback(ctx, me.ID)
}

// Dashboard is a one-screen overview of a user's goals.
type Dashboard struct {
	User      *domain.User
	Active    []domain.Goal
	History   []domain.Goal
	Feedback  domain.Feedback
	Completed int // done routes across active and history
}

// Dashboard fetches active goals, history and feedback concurrently. The
// first failure cancels the other reads.
func (c *Coach) Dashboard(ctx context.Context) (d *Dashboard, err error) {
	defer observe(ctx, c.observer, "coach.dashboard", time.Now(), &err, nil)
	me, err := c.account.Current(ctx)
	if err != nil {
		return nil, err
	}

	d = &Dashboard{User: me}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		goals, err := c.goals.List(gctx, me.ID)
		if err != nil {
			return fmt.Errorf("loading goals: %w", err)
		}
		d.Active = domain.NormalizeGoals(goals)
		return nil
	})
	g.Go(func() error {
		goals, err := c.goals.History(gctx, me.ID)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
		d.History = domain.NormalizeGoals(goals)
		domain.SortByRecency(d.History)
		return nil
	})
	g.Go(func() error {
		fb, err := c.gemini.Feedback(gctx, me.ID)
		if err != nil {
			return fmt.Errorf("loading feedback: %w", err)
		}
		d.Feedback = fb
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	d.Completed = domain.CompletedRouteCount(d.Active) + domain.CompletedRouteCount(d.History)
	return d, nil
}
