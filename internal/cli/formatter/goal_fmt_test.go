package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/coach/internal/domain"
	"github.com/stretchr/testify/assert"
)

func sampleGoal() domain.Goal {
	updated := &domain.Timestamp{Time: testNow.Add(-2 * time.Hour)}
	return domain.Goal{
		ID:           "42",
		Goal:         "Become a backend developer",
		DateOfUpdate: updated,
		Metadata: []domain.Phase{
			{BigTitle: "Foundations", Routes: []domain.Route{
				{SmallTitle: "HTTP basics", Percentage: 40, Done: true, Deadline: "2025-07-01"},
				{SmallTitle: "SQL", Percentage: 20},
			}},
			{BigTitle: "Projects", Routes: []domain.Route{
				{SmallTitle: "Build an API", Percentage: 40, Description: "REST service in Go"},
			}},
		},
	}
}

func TestFormatGoalList(t *testing.T) {
	got := stripANSI(FormatGoalList([]domain.Goal{sampleGoal()}, testNow))
	assert.Contains(t, got, "GOALS")
	assert.Contains(t, got, "Become a backend developer")
	assert.Contains(t, got, " 40%")
	assert.Contains(t, got, "1/3")
	assert.Contains(t, got, "Today")
}

func TestFormatGoalList_Empty(t *testing.T) {
	assert.Contains(t, stripANSI(FormatGoalList(nil, testNow)), "No goals yet")
}

func TestFormatGoalDetail(t *testing.T) {
	got := stripANSI(FormatGoalDetail(sampleGoal(), testNow))
	assert.Contains(t, got, "goal 42")
	assert.Contains(t, got, "#1 Foundations")
	assert.Contains(t, got, "✔ #1 HTTP basics")
	assert.Contains(t, got, "○ #2 SQL")
	assert.Contains(t, got, "[ 40% · 2025-07-01 ]")
}

func TestFormatGoalDetail_NextDeadline(t *testing.T) {
	g := sampleGoal()
	assert.NotContains(t, stripANSI(FormatGoalDetail(g, testNow)), "next ", "done routes are skipped")

	g.Metadata[0].Routes[1].Deadline = "2025-06-25"
	g.Metadata[1].Routes[0].Deadline = "2025-08-01"
	got := stripANSI(FormatGoalDetail(g, testNow))
	assert.Contains(t, got, "next SQL  2025-06-25 (In 10d)")
}

func TestFormatHistory_ShowsOnlyCompletedRoutes(t *testing.T) {
	got := stripANSI(FormatHistory([]domain.Goal{sampleGoal()}, testNow))
	assert.Contains(t, got, "1 routes completed")
	assert.Contains(t, got, "HTTP basics")
	assert.NotContains(t, got, "SQL")
	assert.NotContains(t, got, "Projects")
}

func TestFormatHistory_GoalWithoutDoneRoutes(t *testing.T) {
	g := sampleGoal()
	g.Metadata[0].Routes[0].Done = false
	got := stripANSI(FormatHistory([]domain.Goal{g}, testNow))
	assert.Contains(t, got, "no completed routes")
}

func TestFormatPlanDraft_TotalAndDescriptions(t *testing.T) {
	pct := func(v float64) *domain.Percentage { p := domain.Percentage(v); return &p }
	d := &domain.PlanDraft{
		ID:       "0f8fad5b-d9cb-469f-a165-70867728950e",
		Target:   "Backend developer",
		Deadline: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		Plan: []domain.PlanPhase{{
			Goal:     "Ship a Go service",
			BigTitle: "Basics",
			Routes: []domain.PlanRoute{
				{SmallTitle: "HTTP", Percentage: pct(60), Description: "net/http handlers"},
				{SmallTitle: "SQL", Weight: pct(35)},
			},
		}},
	}
	got := stripANSI(FormatPlanDraft(d))
	assert.Contains(t, got, "0f8fad5b")
	assert.Contains(t, got, "Ship a Go service")
	assert.Contains(t, got, "2025-12-31")
	assert.Contains(t, got, "total 95%")
	assert.Contains(t, got, "1.1 net/http handlers")
	assert.Contains(t, got, "[ 35% ]")
}
