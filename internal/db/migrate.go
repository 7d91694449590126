package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// Key/value slots. The session token lives under key 'token'.
	`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	// Last CV analysis per user, so plan generation can run without re-uploading.
	`CREATE TABLE IF NOT EXISTS cv_analyses (
		user_id     TEXT PRIMARY KEY,
		filename    TEXT NOT NULL DEFAULT '',
		analysis    TEXT NOT NULL,
		analyzed_at TEXT NOT NULL
	)`,

	// Generated plans awaiting review. Nothing here is on the server yet.
	`CREATE TABLE IF NOT EXISTS plan_drafts (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		target      TEXT NOT NULL,
		deadline    TEXT NOT NULL,
		cv_analysis TEXT NOT NULL DEFAULT '',
		plan        TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_drafts_user ON plan_drafts(user_id, updated_at)`,

	`ALTER TABLE plan_drafts ADD COLUMN attempts INTEGER NOT NULL DEFAULT 1`,
}
