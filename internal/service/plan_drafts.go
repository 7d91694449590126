package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/coach/internal/db"
	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/planner"
	"github.com/alexanderramin/coach/internal/repository"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrAmbiguousDraft is returned when a draft ID prefix matches several drafts.
var ErrAmbiguousDraft = errors.New("draft reference is ambiguous")

// GenerateInput is what the user supplies to generate a plan.
type GenerateInput struct {
	Target   string
	Deadline time.Time
	// CVAnalysis overrides the cached analysis when set.
	CVAnalysis domain.CVAnalysis
}

// PlanDrafts manages generated plans between generation and saving. Drafts
// are local; nothing reaches the backend until Save.
type PlanDrafts struct {
	account  *Account
	runner   PlanRunner
	goals    GoalAPI
	drafts   repository.PlanDraftRepo
	cvs      repository.CVRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

func NewPlanDrafts(
	account *Account,
	runner PlanRunner,
	goals GoalAPI,
	drafts repository.PlanDraftRepo,
	cvs repository.CVRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) *PlanDrafts {
	return &PlanDrafts{
		account:  account,
		runner:   runner,
		goals:    goals,
		drafts:   drafts,
		cvs:      cvs,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

// Generate runs the plan workflow and stores the result as a new draft. The
// draft and the CV analysis it was generated from are written together.
func (s *PlanDrafts) Generate(ctx context.Context, in GenerateInput) (d *domain.PlanDraft, err error) {
	defer observe(ctx, s.observer, "plan_drafts.generate", time.Now(), &err, map[string]any{"target": in.Target})

	target := strings.TrimSpace(in.Target)
	if target == "" {
		return nil, ErrTargetRequired
	}
	me, err := s.account.Current(ctx)
	if err != nil {
		return nil, err
	}

	cv := &domain.CVRecord{UserID: me.ID.String(), Analysis: in.CVAnalysis}
	if cv.Analysis.Empty() {
		if cv, err = latestCV(ctx, s.cvs, me); err != nil {
			return nil, err
		}
	}

	res, err := s.runner.Run(ctx, planner.Request{
		UserID:     me.ID,
		Target:     target,
		Deadline:   in.Deadline,
		CVAnalysis: cv.Analysis,
	})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	d = &domain.PlanDraft{
		ID:         uuid.NewString(),
		UserID:     me.ID.String(),
		Target:     target,
		Deadline:   in.Deadline.UTC(),
		CVAnalysis: cv.Analysis,
		Plan:       res.Plan,
		Attempts:   res.Attempts,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if cv.AnalyzedAt.IsZero() {
		cv.AnalyzedAt = now
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLitePlanDraftRepo(tx).Create(ctx, d); err != nil {
			return err
		}
		return repository.NewSQLiteCVRepo(tx).Upsert(ctx, cv)
	})
	if err != nil {
		return nil, fmt.Errorf("storing plan draft: %w", err)
	}
	return d, nil
}

// List returns the current user's drafts, most recently edited first.
func (s *PlanDrafts) List(ctx context.Context) ([]*domain.PlanDraft, error) {
	me, err := s.account.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.drafts.ListByUser(ctx, me.ID.String())
}

// Get resolves ref to one of the current user's drafts. ref may be a full
// ID, a unique ID prefix, or empty for the most recent draft.
func (s *PlanDrafts) Get(ctx context.Context, ref string) (*domain.PlanDraft, error) {
	drafts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return resolveDraft(drafts, ref)
}

func resolveDraft(drafts []*domain.PlanDraft, ref string) (*domain.PlanDraft, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		if len(drafts) == 0 {
			return nil, fmt.Errorf("no plan drafts: %w", repository.ErrNotFound)
		}
		return drafts[0], nil
	}
	var match *domain.PlanDraft
	for _, d := range drafts {
		if d.ID == ref {
			return d, nil
		}
		if strings.HasPrefix(d.ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("%q: %w", ref, ErrAmbiguousDraft)
			}
			match = d
		}
	}
	if match == nil {
		return nil, fmt.Errorf("plan draft %q: %w", ref, repository.ErrNotFound)
	}
	return match, nil
}

// Edit applies fn to the draft's editor and stores the result. Nothing is
// stored when fn fails.
func (s *PlanDrafts) Edit(ctx context.Context, ref string, fn func(e *domain.PlanEditor) error) (*domain.PlanDraft, error) {
	d, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	e := d.Editor()
	if err := fn(e); err != nil {
		return nil, err
	}
	return s.store(ctx, d, e)
}

func (s *PlanDrafts) store(ctx context.Context, d *domain.PlanDraft, e *domain.PlanEditor) (*domain.PlanDraft, error) {
	d.Plan = e.ToPlan()
	if err := s.drafts.UpdatePlan(ctx, d.ID, d.Plan); err != nil {
		return nil, err
	}
	d.UpdatedAt = s.now().UTC()
	return d, nil
}

// Export writes the draft's phases as YAML for editing outside the CLI.
func (s *PlanDrafts) Export(ctx context.Context, ref string, w io.Writer) error {
	d, err := s.Get(ctx, ref)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d.Editor().ToPlan()); err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	return enc.Close()
}

// Import replaces the draft's phases with YAML previously produced by Export.
func (s *PlanDrafts) Import(ctx context.Context, ref string, r io.Reader) (*domain.PlanDraft, error) {
	var plan []domain.PlanPhase
	if err := yaml.NewDecoder(r).Decode(&plan); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	if len(plan) == 0 {
		return nil, domain.ErrLastPhase
	}
	d, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, d, domain.NewPlanEditor(plan))
}

// Save validates the percentage total and creates the goal. The draft is
// removed once the backend accepts it. A local validation failure makes no
// network call.
func (s *PlanDrafts) Save(ctx context.Context, ref string) (payload domain.GoalPayload, err error) {
	defer observe(ctx, s.observer, "plan_drafts.save", time.Now(), &err, nil)
	d, err := s.Get(ctx, ref)
	if err != nil {
		return domain.GoalPayload{}, err
	}
	payload, err = d.Editor().Payload()
	if err != nil {
		return domain.GoalPayload{}, err
	}
	if err := s.goals.Create(ctx, domain.ID(d.UserID), payload); err != nil {
		return domain.GoalPayload{}, err
	}
	if err := s.drafts.Delete(ctx, d.ID); err != nil {
		return payload, fmt.Errorf("goal saved but draft cleanup failed: %w", err)
	}
	return payload, nil
}

// Discard drops a draft without saving it.
func (s *PlanDrafts) Discard(ctx context.Context, ref string) (*domain.PlanDraft, error) {
	d, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.Delete(ctx, d.ID); err != nil {
		return nil, err
	}
	return d, nil
}
