package cli

import (
	"sync"

	"github.com/alexanderramin/coach/internal/planner"
)

// PlanProgress is a planner.Observer that forwards transitions to whichever
// command is currently watching.
type PlanProgress struct {
	mu sync.Mutex
	fn func(planner.Transition)
}

func NewPlanProgress() *PlanProgress {
	return &PlanProgress{}
}

// Watch routes transitions to fn until the returned stop func is called.
func (p *PlanProgress) Watch(fn func(planner.Transition)) (stop func()) {
	p.mu.Lock()
	p.fn = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		p.fn = nil
		p.mu.Unlock()
	}
}

func (p *PlanProgress) OnTransition(t planner.Transition) {
	p.mu.Lock()
	fn := p.fn
	p.mu.Unlock()
	if fn != nil {
		fn(t)
	}
}
