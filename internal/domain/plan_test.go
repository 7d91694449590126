package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePlan_RequiresArray(t *testing.T) {
	_, err := DecodePlan([]byte(`{"code": 1008}`))
	assert.Error(t, err)

	plan, err := DecodePlan([]byte(` [{"goal":"G","big_title":"T","route":[]}]`))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "G", plan[0].Goal)
	assert.Equal(t, "T", plan[0].BigTitle)
}

func TestNewPlanEditor_DefaultsAndLegacyWeight(t *testing.T) {
	plan, err := DecodePlan([]byte(`[
		{"goal": "Backend", "big_title": "Foundations", "route": [
			{"small_title": "HTTP", "percentage": 30},
			{"small_title": "SQL", "weight": "20"},
			{"small_title": "Both", "percentage": 10, "weight": 99},
			{}
		]},
		{"big_title": "Projects"}
	]`))
	require.NoError(t, err)

	e := NewPlanEditor(plan)
	phases := e.Phases()
	require.Len(t, phases, 2)

	routes := phases[0].Routes
	require.Len(t, routes, 4)
	assert.Equal(t, Percentage(30), routes[0].Percentage)
	assert.Equal(t, Percentage(20), routes[1].Percentage, "weight is used when percentage is absent")
	assert.Equal(t, Percentage(10), routes[2].Percentage, "percentage preferred over weight")
	assert.Equal(t, Route{}, routes[3])
	assert.NotNil(t, phases[1].Routes)
	assert.Empty(t, phases[1].Routes)

	assert.Equal(t, "Backend", e.Summary())
	assert.Equal(t, float64(60), e.Total())
}

func TestPlanEditor_KeepsAtLeastOnePhaseAndRoute(t *testing.T) {
	e := NewPlanEditor([]PlanPhase{{BigTitle: "only", Routes: []PlanRoute{{SmallTitle: "r"}}}})

	assert.ErrorIs(t, e.RemovePhase(0), ErrLastPhase)
	assert.ErrorIs(t, e.RemoveRoute(0, 0), ErrLastRoute)

	idx, err := e.AddRoute(0)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	require.NoError(t, e.RemoveRoute(0, 0))
	assert.Len(t, e.Phases()[0].Routes, 1)

	p := e.AddPhase("second")
	assert.Equal(t, 1, p)
	assert.Len(t, e.Phases()[1].Routes, 1, "new phases start with one route")
	require.NoError(t, e.RemovePhase(0))
	assert.Equal(t, "second", e.Phases()[0].BigTitle)
}

func TestPlanEditor_IndexErrors(t *testing.T) {
	e := NewPlanEditor([]PlanPhase{{BigTitle: "only", Routes: []PlanRoute{{SmallTitle: "r"}}}})

	assert.ErrorIs(t, e.RemovePhase(4), ErrPhaseNotFound)
	_, err := e.AddRoute(-1)
	assert.ErrorIs(t, err, ErrPhaseNotFound)
	assert.ErrorIs(t, e.RemoveRoute(0, 2), ErrRouteNotFound)
	assert.ErrorIs(t, e.SetRouteField(0, 0, "colour", "red"), ErrUnknownField)
	assert.Error(t, e.SetRouteField(0, 0, "percentage", "lots"))
}

func TestPlanEditor_TotalTracksEdits(t *testing.T) {
	e := NewPlanEditor([]PlanPhase{
		{BigTitle: "a", Routes: []PlanRoute{{SmallTitle: "r1"}}},
		{BigTitle: "b", Routes: []PlanRoute{{SmallTitle: "r2"}}},
	})
	require.NoError(t, e.SetRouteField(0, 0, "percentage", "60"))
	assert.Equal(t, float64(60), e.Total())
	require.NoError(t, e.SetRouteField(1, 0, "percentage", "35"))
	assert.Equal(t, float64(95), e.Total())

	_, err := e.Payload()
	require.ErrorIs(t, err, ErrPercentageSum)

	require.NoError(t, e.SetRouteField(1, 0, "percentage", "40"))
	assert.Equal(t, float64(100), e.Total())
}

func TestPlanEditor_PayloadResetsDoneAndUsesFirstPhaseGoal(t *testing.T) {
	pct := func(v float64) *Percentage { p := Percentage(v); return &p }
	e := NewPlanEditor([]PlanPhase{
		{Goal: "Ship a Go service", BigTitle: "a", Routes: []PlanRoute{{SmallTitle: "r1", Percentage: pct(60), Done: true}}},
		{BigTitle: "b", Routes: []PlanRoute{{SmallTitle: "r2", Percentage: pct(40), Deadline: "2025-07-01"}}},
	})
	require.NoError(t, e.SetRouteField(0, 0, "description", "write handlers"))
	require.NoError(t, e.SetPhaseTitle(1, "Beta"))

	payload, err := e.Payload()
	require.NoError(t, err)
	assert.Equal(t, "Ship a Go service", payload.Goal)
	require.Len(t, payload.Metadata, 2)
	assert.False(t, payload.Metadata[0].Routes[0].Done)
	assert.Equal(t, "write handlers", payload.Metadata[0].Routes[0].Description)
	assert.Equal(t, "Beta", payload.Metadata[1].BigTitle)
	assert.Empty(t, payload.Metadata[1].Goal)
	assert.Equal(t, "2025-07-01", payload.Metadata[1].Routes[0].Deadline)
}

func TestPlanEditor_ToPlanRoundTrip(t *testing.T) {
	pct := Percentage(100)
	e := NewPlanEditor([]PlanPhase{{BigTitle: "a", Routes: []PlanRoute{{SmallTitle: "r", Percentage: &pct}}}})
	again := NewPlanEditor(e.ToPlan())
	assert.Equal(t, e.Phases(), again.Phases())
}
