package domain

import "time"

// PlanDraft is a generated plan under review. It lives only on this machine
// until the user saves it as a goal.
type PlanDraft struct {
	ID         string
	UserID     string
	Target     string
	Deadline   time.Time
	CVAnalysis CVAnalysis
	Plan       []PlanPhase
	Attempts   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Editor returns a PlanEditor over the draft's plan.
func (d *PlanDraft) Editor() *PlanEditor {
	return NewPlanEditor(d.Plan)
}

// CVRecord is the cached result of the last CV upload for a user.
type CVRecord struct {
	UserID     string
	Filename   string
	Analysis   CVAnalysis
	AnalyzedAt time.Time
}
