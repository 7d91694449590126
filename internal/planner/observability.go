package planner

import "log/slog"

// Transition records one state change of a workflow run.
type Transition struct {
	From    State
	To      State
	Attempt int
	Err     error
}

// Observer receives every state transition, in order.
type Observer interface {
	OnTransition(t Transition)
}

// LogObserver writes transitions to a structured logger at debug level.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnTransition(t Transition) {
	attrs := []any{"from", t.From.String(), "to", t.To.String(), "attempt", t.Attempt}
	if t.Err != nil {
		attrs = append(attrs, "error", t.Err)
	}
	o.logger.Debug("plan workflow", attrs...)
}

// NoopObserver discards all transitions.
type NoopObserver struct{}

func (NoopObserver) OnTransition(Transition) {}

// MultiObserver forwards each transition to every observer in order.
type MultiObserver []Observer

func (m MultiObserver) OnTransition(t Transition) {
	for _, o := range m {
		o.OnTransition(t)
	}
}
