package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// PercentageTotal is the exact sum every goal's route weights must reach before saving.
const PercentageTotal = 100

var (
	// ErrPercentageSum is returned when route weights do not add up to PercentageTotal.
	ErrPercentageSum = errors.New("Total percentages must add up to 100%")

	// ErrRouteNotFound is returned when a phase/route index pair does not exist.
	ErrRouteNotFound = errors.New("route not found")
)

// Goal is a persisted learning objective. Identity and timestamps are server-assigned.
type Goal struct {
	ID           ID         `json:"id,omitempty"`
	Goal         string     `json:"goal"`
	Metadata     []Phase    `json:"metadata"`
	DateOfUpdate *Timestamp `json:"dateOfUpdate,omitempty"`
	CreatedAt    *Timestamp `json:"createdAt,omitempty"`
}

// Phase is a named stage of a goal. Goal, when set, overrides the goal-level summary.
type Phase struct {
	Goal     string  `json:"goal,omitempty"`
	BigTitle string  `json:"big_title"`
	Routes   []Route `json:"route"`
}

// Route is a single weighted milestone.
type Route struct {
	SmallTitle  string     `json:"small_title"`
	Percentage  Percentage `json:"percentage"`
	Description string     `json:"description"`
	Deadline    string     `json:"deadline"`
	Done        bool       `json:"done"`
}

// GoalPayload is the body sent to create or update a goal.
type GoalPayload struct {
	Goal     string  `json:"goal,omitempty"`
	Metadata []Phase `json:"metadata"`
}

// Summary returns the first non-empty phase goal, falling back to the goal-level text.
func (g *Goal) Summary() string {
	for _, p := range g.Metadata {
		if p.Goal != "" {
			return p.Goal
		}
	}
	return g.Goal
}

// TotalPercentage sums route weights across all phases.
func (g *Goal) TotalPercentage() float64 {
	return sumRoutes(g.Metadata, func(Route) bool { return true })
}

// DonePercentage sums the weights of completed routes.
func (g *Goal) DonePercentage() float64 {
	return sumRoutes(g.Metadata, func(r Route) bool { return r.Done })
}

// Progress returns the completed share of the goal's weight as an integer percentage.
// The denominator is floored at 1 so goals without routes report 0.
func (g *Goal) Progress() int {
	total := math.Max(1, g.TotalPercentage())
	pct := int(math.Round(100 * g.DonePercentage() / total))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// RouteCount returns the number of routes and how many of them are done.
func (g *Goal) RouteCount() (total, done int) {
	for _, p := range g.Metadata {
		for _, r := range p.Routes {
			total++
			if r.Done {
				done++
			}
		}
	}
	return total, done
}

// Route returns a pointer into the goal's tree, or ErrRouteNotFound.
func (g *Goal) Route(phaseIdx, routeIdx int) (*Route, error) {
	if phaseIdx < 0 || phaseIdx >= len(g.Metadata) {
		return nil, fmt.Errorf("phase %d: %w", phaseIdx+1, ErrRouteNotFound)
	}
	routes := g.Metadata[phaseIdx].Routes
	if routeIdx < 0 || routeIdx >= len(routes) {
		return nil, fmt.Errorf("phase %d route %d: %w", phaseIdx+1, routeIdx+1, ErrRouteNotFound)
	}
	return &g.Metadata[phaseIdx].Routes[routeIdx], nil
}

// MarkRouteDone completes a route. Completion is irreversible: a route that is
// already done is left untouched and changed is false.
func (g *Goal) MarkRouteDone(phaseIdx, routeIdx int) (changed bool, err error) {
	r, err := g.Route(phaseIdx, routeIdx)
	if err != nil {
		return false, err
	}
	if r.Done {
		return false, nil
	}
	r.Done = true
	return true, nil
}

// Clone returns a deep copy of the goal.
func (g Goal) Clone() Goal {
	out := g
	if g.DateOfUpdate != nil {
		ts := *g.DateOfUpdate
		out.DateOfUpdate = &ts
	}
	if g.CreatedAt != nil {
		ts := *g.CreatedAt
		out.CreatedAt = &ts
	}
	out.Metadata = clonePhases(g.Metadata)
	return out
}

// CloneGoals deep-copies a goal list.
func CloneGoals(goals []Goal) []Goal {
	if goals == nil {
		return nil
	}
	out := make([]Goal, len(goals))
	for i := range goals {
		out[i] = goals[i].Clone()
	}
	return out
}

// NormalizeGoals guards against partially-shaped server payloads: every goal
// gets a non-nil phase list and every phase a non-nil route list. Route.Done
// already defaults to false when the field is absent. Running it twice yields
// the same structure as running it once.
func NormalizeGoals(goals []Goal) []Goal {
	out := make([]Goal, len(goals))
	for i, g := range goals {
		out[i] = g.Clone()
		if out[i].Metadata == nil {
			out[i].Metadata = []Phase{}
		}
		for j := range out[i].Metadata {
			if out[i].Metadata[j].Routes == nil {
				out[i].Metadata[j].Routes = []Route{}
			}
		}
	}
	return out
}

// ValidatePercentageSum rejects phase trees whose route weights do not total exactly 100.
func ValidatePercentageSum(phases []Phase) error {
	total := sumRoutes(phases, func(Route) bool { return true })
	if total != PercentageTotal {
		return fmt.Errorf("%w (currently %s%%)", ErrPercentageSum, FormatPercentage(total))
	}
	return nil
}

// LastActivity returns the update timestamp, falling back to creation time.
func (g *Goal) LastActivity() time.Time {
	if g.DateOfUpdate != nil && !g.DateOfUpdate.IsZero() {
		return g.DateOfUpdate.Time
	}
	if g.CreatedAt != nil && !g.CreatedAt.IsZero() {
		return g.CreatedAt.Time
	}
	return time.Time{}
}

// SortByRecency orders goals by last activity, most recent first.
func SortByRecency(goals []Goal) {
	sort.SliceStable(goals, func(i, j int) bool {
		return goals[i].LastActivity().After(goals[j].LastActivity())
	})
}

// CompletedView returns a copy of the goal that keeps only done routes.
// Phases without any completed route are dropped.
func CompletedView(g Goal) Goal {
	out := g.Clone()
	out.Metadata = []Phase{}
	for _, p := range g.Metadata {
		var done []Route
		for _, r := range p.Routes {
			if r.Done {
				done = append(done, r)
			}
		}
		if len(done) == 0 {
			continue
		}
		p.Routes = done
		out.Metadata = append(out.Metadata, p)
	}
	return out
}

// CompletedRouteCount counts done routes across a goal list.
func CompletedRouteCount(goals []Goal) int {
	n := 0
	for i := range goals {
		_, done := goals[i].RouteCount()
		n += done
	}
	return n
}

func clonePhases(phases []Phase) []Phase {
	if phases == nil {
		return nil
	}
	out := make([]Phase, len(phases))
	for i, p := range phases {
		out[i] = p
		if p.Routes != nil {
			out[i].Routes = append([]Route(nil), p.Routes...)
			if len(p.Routes) == 0 {
				out[i].Routes = []Route{}
			}
		}
	}
	return out
}

func sumRoutes(phases []Phase, include func(Route) bool) float64 {
	var total float64
	for _, p := range phases {
		for _, r := range p.Routes {
			if include(r) {
				total += float64(r.Percentage)
			}
		}
	}
	return total
}
