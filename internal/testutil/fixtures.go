package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/coach/internal/domain"
	"github.com/google/uuid"
)

var testGoalCounter atomic.Int64

// Goal options
type GoalOption func(*domain.Goal)

func WithGoalID(id string) GoalOption {
	return func(g *domain.Goal) {
		g.ID = domain.ID(id)
	}
}

func WithPhase(title string, routes ...domain.Route) GoalOption {
	return func(g *domain.Goal) {
		if routes == nil {
			routes = []domain.Route{}
		}
		g.Metadata = append(g.Metadata, domain.Phase{BigTitle: title, Routes: routes})
	}
}

func WithUpdatedAt(t time.Time) GoalOption {
	return func(g *domain.Goal) {
		g.DateOfUpdate = &domain.Timestamp{Time: t}
	}
}

func WithCreatedAt(t time.Time) GoalOption {
	return func(g *domain.Goal) {
		g.CreatedAt = &domain.Timestamp{Time: t}
	}
}

// NewTestRoute builds a route with the given weight.
func NewTestRoute(title string, pct float64, done bool) domain.Route {
	return domain.Route{
		SmallTitle:  title,
		Percentage:  domain.Percentage(pct),
		Description: title + " notes",
		Deadline:    "2025-09-01",
		Done:        done,
	}
}

// NewTestGoal builds a goal with a sequential numeric ID. Without phase
// options it gets a single phase holding one undone 100% route.
func NewTestGoal(goal string, opts ...GoalOption) domain.Goal {
	n := testGoalCounter.Add(1)
	g := domain.Goal{
		ID:       domain.ID(fmt.Sprintf("%d", n)),
		Goal:     goal,
		Metadata: []domain.Phase{},
	}
	for _, opt := range opts {
		opt(&g)
	}
	if len(g.Metadata) == 0 {
		g.Metadata = []domain.Phase{{BigTitle: "Phase 1", Routes: []domain.Route{NewTestRoute("Route 1", 100, false)}}}
	}
	return g
}

// NewTestPlan returns a two-phase generated plan whose weights total 100.
func NewTestPlan(goal string) []domain.PlanPhase {
	pct := func(v float64) *domain.Percentage {
		p := domain.Percentage(v)
		return &p
	}
	return []domain.PlanPhase{
		{Goal: goal, BigTitle: "Foundations", Routes: []domain.PlanRoute{
			{SmallTitle: "Syntax", Percentage: pct(30), Description: "Tour of the language", Deadline: "2025-07-01"},
			{SmallTitle: "Tooling", Percentage: pct(20), Description: "Modules and testing", Deadline: "2025-07-15"},
		}},
		{BigTitle: "Projects", Routes: []domain.PlanRoute{
			{SmallTitle: "CLI tool", Percentage: pct(50), Description: "Ship something small", Deadline: "2025-08-01"},
		}},
	}
}

// NewTestDraft builds a draft for userID around NewTestPlan.
func NewTestDraft(userID, target string, now time.Time) *domain.PlanDraft {
	return &domain.PlanDraft{
		ID:         uuid.NewString(),
		UserID:     userID,
		Target:     target,
		Deadline:   now.Add(30 * 24 * time.Hour),
		CVAnalysis: domain.CVAnalysis(`{"skill":{"technical skills":["Go"]}}`),
		Plan:       NewTestPlan(target),
		Attempts:   1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
