package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/coach/internal/domain"
)

// ToggleOutcome says what ToggleDone did.
type ToggleOutcome int

const (
	// ToggleNoop means nothing changed. It accompanies every error.
	ToggleNoop ToggleOutcome = iota
	// ToggleApplied means the route was marked done and the server accepted it.
	ToggleApplied
	// ToggleAlreadyDone means nothing happened; the route was done before.
	ToggleAlreadyDone
	// ToggleDeclined means the user did not confirm.
	ToggleDeclined
)

// GoalBoard owns the active goal list of one user. Every mutation is
// optimistic: the list changes first and is reconciled if the server refuses.
type GoalBoard struct {
	api      GoalAPI
	userID   domain.ID
	observer UseCaseObserver

	mu    sync.Mutex
	goals []domain.Goal
	opt   *Optimistic[[]domain.Goal]
}

func NewGoalBoard(api GoalAPI, userID domain.ID, observers ...UseCaseObserver) *GoalBoard {
	b := &GoalBoard{
		api:      api,
		userID:   userID,
		observer: useCaseObserverOrNoop(observers),
		goals:    []domain.Goal{},
	}
	b.opt = &Optimistic[[]domain.Goal]{
		Get:   b.snapshot,
		Set:   b.replace,
		Clone: domain.CloneGoals,
	}
	return b
}

func (b *GoalBoard) snapshot() []domain.Goal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.goals
}

func (b *GoalBoard) replace(goals []domain.Goal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.goals = goals
}

func (b *GoalBoard) fetch(ctx context.Context) ([]domain.Goal, error) {
	goals, err := b.api.List(ctx, b.userID)
	if err != nil {
		return nil, err
	}
	return domain.NormalizeGoals(goals), nil
}

// Load replaces the list with the server's, normalized.
func (b *GoalBoard) Load(ctx context.Context) (err error) {
	defer observe(ctx, b.observer, "goal_board.load", time.Now(), &err, nil)
	goals, err := b.fetch(ctx)
	if err != nil {
		return err
	}
	b.replace(goals)
	return nil
}

// Goals returns a deep copy of the current list.
func (b *GoalBoard) Goals() []domain.Goal {
	return domain.CloneGoals(b.snapshot())
}

// Goal returns a copy of one goal.
func (b *GoalBoard) Goal(id domain.ID) (domain.Goal, bool) {
	for _, g := range b.snapshot() {
		if g.ID == id {
			return g.Clone(), true
		}
	}
	return domain.Goal{}, false
}

// ToggleDone marks one route done. Completion is irreversible, so confirm is
// asked first. Unknown and already-done routes return before confirm and
// before any network call. A failed update restores the previous list.
func (b *GoalBoard) ToggleDone(ctx context.Context, goalID domain.ID, phaseIdx, routeIdx int, confirm func(domain.Route) bool) (outcome ToggleOutcome, err error) {
	defer observe(ctx, b.observer, "goal_board.toggle_done", time.Now(), &err, map[string]any{
		"goal_id": goalID.String(), "phase": phaseIdx, "route": routeIdx,
	})

	goal, ok := b.Goal(goalID)
	if !ok {
		return ToggleNoop, ErrGoalNotFound
	}
	route, err := goal.Route(phaseIdx, routeIdx)
	if err != nil {
		return ToggleNoop, err
	}
	if route.Done {
		return ToggleAlreadyDone, nil
	}
	if confirm != nil && !confirm(*route) {
		return ToggleDeclined, nil
	}

	var updated domain.Goal
	err = b.opt.Do(ctx, Mutation[[]domain.Goal]{
		Apply: func(goals []domain.Goal) ([]domain.Goal, error) {
			for i := range goals {
				if goals[i].ID != goalID {
					continue
				}
				if _, err := goals[i].MarkRouteDone(phaseIdx, routeIdx); err != nil {
					return nil, err
				}
				updated = goals[i].Clone()
				return goals, nil
			}
			return nil, ErrGoalNotFound
		},
		Remote: func(ctx context.Context) error {
			return b.api.Update(ctx, goalID, domain.GoalPayload{Metadata: updated.Metadata})
		},
		Recover: Restore[[]domain.Goal](),
	})
	if err != nil {
		return ToggleNoop, fmt.Errorf("updating goal %s: %w", goalID, err)
	}
	return ToggleApplied, nil
}

// Delete removes a goal locally, then on the server. On failure the list is
// re-fetched rather than guessed back.
func (b *GoalBoard) Delete(ctx context.Context, goalID domain.ID) (err error) {
	defer observe(ctx, b.observer, "goal_board.delete", time.Now(), &err, map[string]any{"goal_id": goalID.String()})

	if _, ok := b.Goal(goalID); !ok {
		return ErrGoalNotFound
	}
	err = b.opt.Do(ctx, Mutation[[]domain.Goal]{
		Apply: func(goals []domain.Goal) ([]domain.Goal, error) {
			kept := goals[:0]
			for _, g := range goals {
				if g.ID != goalID {
					kept = append(kept, g)
				}
			}
			return kept, nil
		},
		Remote: func(ctx context.Context) error {
			return b.api.Delete(ctx, goalID)
		},
		Recover: Refetch(b.fetch),
	})
	if err != nil {
		return fmt.Errorf("deleting goal %s: %w", goalID, err)
	}
	return nil
}

// History lists finished and archived goals, most recently touched first.
type History struct {
	api      GoalAPI
	observer UseCaseObserver
}

func NewHistory(api GoalAPI, observers ...UseCaseObserver) *History {
	return &History{api: api, observer: useCaseObserverOrNoop(observers)}
}

func (h *History) List(ctx context.Context, userID domain.ID) (goals []domain.Goal, err error) {
	defer observe(ctx, h.observer, "history.list", time.Now(), &err, nil)
	raw, err := h.api.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	goals = domain.NormalizeGoals(raw)
	domain.SortByRecency(goals)
	return goals, nil
}
