// Package planner drives plan generation against a backend that may answer
// "not ready yet" before the plan exists.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/coach/internal/api"
	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/httpclient"
)

// NotReadyCode is the body code the backend uses while a plan is still
// being generated. Its meaning beyond "retry" is not documented.
const NotReadyCode = 1008

// DeadlineLayout is the zone-less UTC form the backend expects.
const DeadlineLayout = "2006-01-02T15:04:05.000"

const (
	DefaultMaxAttempts = 5
	DefaultBackoff     = 1000 * time.Millisecond
)

// State is a workflow state.
type State int

const (
	Idle State = iota
	Submitting
	Retrying
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Retrying:
		return "retrying"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Submitter makes a single plan-generation call.
type Submitter interface {
	SubmitPlan(ctx context.Context, req api.PlanRequest) (*httpclient.Response, error)
}

// Request is the input of one workflow run.
type Request struct {
	UserID     domain.ID
	Target     string
	Deadline   time.Time
	CVAnalysis domain.CVAnalysis
}

// Result is a successfully generated plan.
type Result struct {
	Plan     []domain.PlanPhase
	Attempts int
}

// Workflow runs the submit/retry state machine. A Workflow holds no per-run
// state and may be reused.
type Workflow struct {
	submitter   Submitter
	maxAttempts int
	backoff     time.Duration
	clock       Clock
	sleeper     Sleeper
	observer    Observer
	logger      *slog.Logger
}

type Option func(*Workflow)

// WithMaxAttempts sets the attempt cap. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(w *Workflow) {
		if n >= 1 {
			w.maxAttempts = n
		}
	}
}

func WithBackoff(d time.Duration) Option {
	return func(w *Workflow) { w.backoff = d }
}

func WithClock(c Clock) Option {
	return func(w *Workflow) { w.clock = c }
}

func WithSleeper(s Sleeper) Option {
	return func(w *Workflow) { w.sleeper = s }
}

func WithObserver(o Observer) Option {
	return func(w *Workflow) {
		if o != nil {
			w.observer = o
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) {
		if l != nil {
			w.logger = l
		}
	}
}

func New(submitter Submitter, opts ...Option) *Workflow {
	w := &Workflow{
		submitter:   submitter,
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
		clock:       systemClock{},
		sleeper:     timerSleeper{},
		observer:    NoopObserver{},
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// MaxAttempts is the configured attempt cap.
func (w *Workflow) MaxAttempts() int { return w.maxAttempts }

// ValidateDeadline rejects a missing deadline and one strictly before now.
// A deadline equal to now is accepted.
func (w *Workflow) ValidateDeadline(deadline time.Time) error {
	if deadline.IsZero() {
		return ErrDeadlineRequired
	}
	if deadline.Before(w.clock.Now()) {
		return ErrDeadlineInPast
	}
	return nil
}

// FormatDeadline renders d in UTC with milliseconds and no zone suffix.
func FormatDeadline(d time.Time) string {
	return d.UTC().Format(DeadlineLayout)
}

type outcome int

const (
	outcomePlan outcome = iota
	outcomeNotReady
	outcomeUnexpected
)

// classify checks, in order: array body, not-ready object, anything else.
func classify(resp *httpclient.Response) (outcome, []domain.PlanPhase) {
	if resp.IsArray() {
		plan, err := domain.DecodePlan(resp.Body)
		if err != nil {
			return outcomeUnexpected, nil
		}
		return outcomePlan, plan
	}
	if resp.IsObject() {
		var body struct {
			Code *float64 `json:"code"`
		}
		if err := json.Unmarshal(resp.Body, &body); err == nil && body.Code != nil && *body.Code == NotReadyCode {
			return outcomeNotReady, nil
		}
	}
	return outcomeUnexpected, nil
}

// Run validates the deadline and submits until a plan arrives, the backend
// answers with an unexpected shape, or the attempt cap is reached. Attempts
// are strictly sequential with a fixed backoff between them and no wait after
// the last one.
func (w *Workflow) Run(ctx context.Context, req Request) (*Result, error) {
	if err := w.ValidateDeadline(req.Deadline); err != nil {
		return nil, err
	}

	apiReq := api.PlanRequest{
		UserID:     req.UserID,
		Target:     req.Target,
		Deadline:   FormatDeadline(req.Deadline),
		CVAnalysis: req.CVAnalysis,
	}

	state := Idle
	move := func(to State, attempt int, err error) {
		w.observer.OnTransition(Transition{From: state, To: to, Attempt: attempt, Err: err})
		state = to
	}

	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		move(Submitting, attempt, nil)

		resp, err := w.submitter.SubmitPlan(ctx, apiReq)
		var reason error
		switch {
		case err != nil:
			if ctx.Err() != nil {
				move(Failed, attempt, ctx.Err())
				return nil, ctx.Err()
			}
			reason = err
		default:
			kind, plan := classify(resp)
			switch kind {
			case outcomePlan:
				move(Succeeded, attempt, nil)
				return &Result{Plan: plan, Attempts: attempt}, nil
			case outcomeUnexpected:
				move(Failed, attempt, ErrUnexpectedShape)
				return nil, ErrUnexpectedShape
			}
			reason = errNotReady
		}
		lastErr = reason

		if attempt == w.maxAttempts {
			break
		}
		move(Retrying, attempt, reason)
		w.logger.Warn("retrying plan generation",
			"attempt", attempt,
			"max_attempts", w.maxAttempts,
			"reason", reason.Error(),
		)
		if err := w.sleeper.Sleep(ctx, w.backoff); err != nil {
			move(Failed, attempt, err)
			return nil, err
		}
	}

	err := fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, w.maxAttempts, lastErr)
	move(Failed, w.maxAttempts, err)
	return nil, err
}

var errNotReady = errors.New("plan not ready")
