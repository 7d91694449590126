package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/coach/internal/db"
	"github.com/alexanderramin/coach/internal/domain"
)

// SQLitePlanDraftRepo implements PlanDraftRepo using a SQLite database.
type SQLitePlanDraftRepo struct {
	db db.DBTX
}

func NewSQLitePlanDraftRepo(conn db.DBTX) *SQLitePlanDraftRepo {
	return &SQLitePlanDraftRepo{db: conn}
}

const draftColumns = `id, user_id, target, deadline, cv_analysis, plan, attempts, created_at, updated_at`

func (r *SQLitePlanDraftRepo) Create(ctx context.Context, d *domain.PlanDraft) error {
	plan, err := json.Marshal(d.Plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	query := `INSERT INTO plan_drafts (` + draftColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		d.ID,
		d.UserID,
		d.Target,
		formatTime(d.Deadline),
		string(d.CVAnalysis),
		string(plan),
		d.Attempts,
		formatTime(d.CreatedAt),
		formatTime(d.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting plan draft: %w", err)
	}
	return nil
}

func (r *SQLitePlanDraftRepo) GetByID(ctx context.Context, id string) (*domain.PlanDraft, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+draftColumns+` FROM plan_drafts WHERE id = ?`, id)
	d, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan draft %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return d, nil
}

// ListByUser returns the user's drafts, most recently edited first.
func (r *SQLitePlanDraftRepo) ListByUser(ctx context.Context, userID string) ([]*domain.PlanDraft, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+draftColumns+` FROM plan_drafts WHERE user_id = ? ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing plan drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*domain.PlanDraft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func (r *SQLitePlanDraftRepo) UpdatePlan(ctx context.Context, id string, plan []domain.PlanPhase) error {
	body, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE plan_drafts SET plan = ?, updated_at = ? WHERE id = ?`, string(body), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating plan draft: %w", err)
	}
	return requireAffected(res, "plan draft "+id)
}

func (r *SQLitePlanDraftRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plan_drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting plan draft: %w", err)
	}
	return requireAffected(res, "plan draft "+id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (*domain.PlanDraft, error) {
	var (
		d                              domain.PlanDraft
		deadline, createdAt, updatedAt string
		cv                             sql.NullString
		plan                           string
	)
	if err := row.Scan(&d.ID, &d.UserID, &d.Target, &deadline, &cv, &plan, &d.Attempts, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning plan draft: %w", err)
	}
	d.Deadline = parseTime(deadline)
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
	d.CVAnalysis = domain.CVAnalysis(textBytes(cv))
	if err := json.Unmarshal([]byte(plan), &d.Plan); err != nil {
		return nil, fmt.Errorf("decoding stored plan: %w", err)
	}
	return &d, nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
