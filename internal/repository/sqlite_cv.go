package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/coach/internal/db"
	"github.com/alexanderramin/coach/internal/domain"
)

// SQLiteCVRepo caches the latest CV analysis per user.
type SQLiteCVRepo struct {
	db db.DBTX
}

func NewSQLiteCVRepo(conn db.DBTX) *SQLiteCVRepo {
	return &SQLiteCVRepo{db: conn}
}

func (r *SQLiteCVRepo) Get(ctx context.Context, userID string) (*domain.CVRecord, error) {
	var (
		rec        domain.CVRecord
		analysis   string
		analyzedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, filename, analysis, analyzed_at FROM cv_analyses WHERE user_id = ?`, userID,
	).Scan(&rec.UserID, &rec.Filename, &analysis, &analyzedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cv analysis for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning cv analysis: %w", err)
	}
	rec.Analysis = domain.CVAnalysis(analysis)
	rec.AnalyzedAt = parseTime(analyzedAt)
	return &rec, nil
}

func (r *SQLiteCVRepo) Upsert(ctx context.Context, rec *domain.CVRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cv_analyses (user_id, filename, analysis, analyzed_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			filename = excluded.filename,
			analysis = excluded.analysis,
			analyzed_at = excluded.analyzed_at`,
		rec.UserID, rec.Filename, string(rec.Analysis), formatTime(rec.AnalyzedAt))
	if err != nil {
		return fmt.Errorf("upserting cv analysis: %w", err)
	}
	return nil
}
