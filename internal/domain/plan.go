package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrLastPhase is returned when removing the only phase of a plan.
	ErrLastPhase = errors.New("a goal must keep at least one phase")

	// ErrLastRoute is returned when removing the only route of a phase.
	ErrLastRoute = errors.New("a phase must keep at least one route")

	// ErrPhaseNotFound is returned for an out-of-range phase index.
	ErrPhaseNotFound = errors.New("phase not found")

	// ErrUnknownField is returned by SetRouteField for unsupported field names.
	ErrUnknownField = errors.New("unknown route field")
)

// PlanPhase is a phase as returned by the plan generator. Every field may be
// missing; NewPlanEditor fills defaults.
type PlanPhase struct {
	Goal     string      `json:"goal,omitempty" yaml:"goal,omitempty"`
	BigTitle string      `json:"big_title" yaml:"big_title"`
	Routes   []PlanRoute `json:"route" yaml:"route"`
}

// PlanRoute is a generated milestone. Older generator versions send the weight
// as "weight" instead of "percentage".
type PlanRoute struct {
	SmallTitle  string      `json:"small_title" yaml:"small_title"`
	Percentage  *Percentage `json:"percentage,omitempty" yaml:"percentage,omitempty"`
	Weight      *Percentage `json:"weight,omitempty" yaml:"weight,omitempty"`
	Description string      `json:"description" yaml:"description"`
	Deadline    string      `json:"deadline" yaml:"deadline"`
	Done        bool        `json:"done,omitempty" yaml:"done,omitempty"`
}

// EffectiveWeight returns the numeric weight, preferring percentage over the legacy field.
// A zero percentage falls through to weight the same way the generator's
// consumers always treated it.
func (r PlanRoute) EffectiveWeight() float64 {
	if r.Percentage != nil && *r.Percentage != 0 {
		return float64(*r.Percentage)
	}
	if r.Weight != nil {
		return float64(*r.Weight)
	}
	return 0
}

// DecodePlan parses a generated plan body. The body must be a JSON array.
func DecodePlan(body []byte) ([]PlanPhase, error) {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("plan body is not an array")
	}
	var phases []PlanPhase
	if err := json.Unmarshal([]byte(trimmed), &phases); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	return phases, nil
}

// PlanEditor holds an editable phase/route tree built from a generated plan.
type PlanEditor struct {
	phases []Phase
}

// NewPlanEditor builds editable phases, tolerating missing fields.
func NewPlanEditor(plan []PlanPhase) *PlanEditor {
	phases := make([]Phase, 0, len(plan))
	for _, p := range plan {
		phase := Phase{Goal: p.Goal, BigTitle: p.BigTitle, Routes: []Route{}}
		for _, r := range p.Routes {
			phase.Routes = append(phase.Routes, Route{
				SmallTitle:  r.SmallTitle,
				Percentage:  Percentage(r.EffectiveWeight()),
				Description: r.Description,
				Deadline:    r.Deadline,
				Done:        r.Done,
			})
		}
		phases = append(phases, phase)
	}
	return &PlanEditor{phases: phases}
}

// Phases returns a copy of the current tree.
func (e *PlanEditor) Phases() []Phase {
	return clonePhases(e.phases)
}

// Summary is the goal-level text a saved plan will carry: the first phase's goal.
func (e *PlanEditor) Summary() string {
	if len(e.phases) == 0 {
		return ""
	}
	return e.phases[0].Goal
}

// Total is the running sum of route weights.
func (e *PlanEditor) Total() float64 {
	return sumRoutes(e.phases, func(Route) bool { return true })
}

// AddPhase appends an untitled phase seeded with one empty route.
func (e *PlanEditor) AddPhase(title string) int {
	e.phases = append(e.phases, Phase{BigTitle: title, Routes: []Route{{}}})
	return len(e.phases) - 1
}

// RemovePhase deletes a phase; the last one cannot be removed.
func (e *PlanEditor) RemovePhase(phaseIdx int) error {
	if err := e.checkPhase(phaseIdx); err != nil {
		return err
	}
	if len(e.phases) == 1 {
		return ErrLastPhase
	}
	e.phases = append(e.phases[:phaseIdx], e.phases[phaseIdx+1:]...)
	return nil
}

// SetPhaseTitle renames a phase.
func (e *PlanEditor) SetPhaseTitle(phaseIdx int, title string) error {
	if err := e.checkPhase(phaseIdx); err != nil {
		return err
	}
	e.phases[phaseIdx].BigTitle = title
	return nil
}

// AddRoute appends an empty route to a phase and returns its index.
func (e *PlanEditor) AddRoute(phaseIdx int) (int, error) {
	if err := e.checkPhase(phaseIdx); err != nil {
		return 0, err
	}
	e.phases[phaseIdx].Routes = append(e.phases[phaseIdx].Routes, Route{})
	return len(e.phases[phaseIdx].Routes) - 1, nil
}

// RemoveRoute deletes a route; each phase keeps at least one.
func (e *PlanEditor) RemoveRoute(phaseIdx, routeIdx int) error {
	if err := e.checkRoute(phaseIdx, routeIdx); err != nil {
		return err
	}
	routes := e.phases[phaseIdx].Routes
	if len(routes) == 1 {
		return ErrLastRoute
	}
	e.phases[phaseIdx].Routes = append(routes[:routeIdx], routes[routeIdx+1:]...)
	return nil
}

// SetRouteField edits one field of a route. Field names follow the wire format.
func (e *PlanEditor) SetRouteField(phaseIdx, routeIdx int, field, value string) error {
	if err := e.checkRoute(phaseIdx, routeIdx); err != nil {
		return err
	}
	r := &e.phases[phaseIdx].Routes[routeIdx]
	switch field {
	case "small_title", "title":
		r.SmallTitle = value
	case "percentage", "weight":
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("percentage %q is not a number", value)
		}
		r.Percentage = Percentage(f)
	case "description":
		r.Description = value
	case "deadline":
		r.Deadline = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Payload validates the tree and builds the create-goal body. Saved routes
// always start not done; phase goals are only sent when present.
func (e *PlanEditor) Payload() (GoalPayload, error) {
	if err := ValidatePercentageSum(e.phases); err != nil {
		return GoalPayload{}, err
	}
	metadata := make([]Phase, len(e.phases))
	for i, p := range e.phases {
		routes := make([]Route, len(p.Routes))
		for j, r := range p.Routes {
			r.Done = false
			routes[j] = r
		}
		metadata[i] = Phase{Goal: p.Goal, BigTitle: p.BigTitle, Routes: routes}
	}
	return GoalPayload{Goal: e.Summary(), Metadata: metadata}, nil
}

// ToPlan converts the editor state back into generator-shaped phases, used
// when a draft is written back to storage.
func (e *PlanEditor) ToPlan() []PlanPhase {
	out := make([]PlanPhase, len(e.phases))
	for i, p := range e.phases {
		pp := PlanPhase{Goal: p.Goal, BigTitle: p.BigTitle, Routes: make([]PlanRoute, len(p.Routes))}
		for j, r := range p.Routes {
			pct := r.Percentage
			pp.Routes[j] = PlanRoute{
				SmallTitle:  r.SmallTitle,
				Percentage:  &pct,
				Description: r.Description,
				Deadline:    r.Deadline,
			}
		}
		out[i] = pp
	}
	return out
}

func (e *PlanEditor) checkPhase(phaseIdx int) error {
	if phaseIdx < 0 || phaseIdx >= len(e.phases) {
		return fmt.Errorf("phase %d: %w", phaseIdx+1, ErrPhaseNotFound)
	}
	return nil
}

func (e *PlanEditor) checkRoute(phaseIdx, routeIdx int) error {
	if err := e.checkPhase(phaseIdx); err != nil {
		return err
	}
	if routeIdx < 0 || routeIdx >= len(e.phases[phaseIdx].Routes) {
		return fmt.Errorf("phase %d route %d: %w", phaseIdx+1, routeIdx+1, ErrRouteNotFound)
	}
	return nil
}
