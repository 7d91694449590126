package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/coach/internal/db"
	"github.com/alexanderramin/coach/internal/session"
)

const tokenKey = "token"

// SQLiteSettings is a small key/value table for client-side state.
type SQLiteSettings struct {
	db db.DBTX
}

func NewSQLiteSettings(conn db.DBTX) *SQLiteSettings {
	return &SQLiteSettings{db: conn}
}

// Get returns the stored value or ErrNotFound.
func (s *SQLiteSettings) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("setting %q: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("reading setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteSettings) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, nowUTC())
	if err != nil {
		return fmt.Errorf("writing setting %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteSettings) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting setting %q: %w", key, err)
	}
	return nil
}

// SQLiteTokenStore persists the session token across runs.
type SQLiteTokenStore struct {
	settings *SQLiteSettings
}

var _ session.Store = (*SQLiteTokenStore)(nil)

func NewSQLiteTokenStore(conn db.DBTX) *SQLiteTokenStore {
	return &SQLiteTokenStore{settings: NewSQLiteSettings(conn)}
}

func (s *SQLiteTokenStore) Token(ctx context.Context) (string, error) {
	tok, err := s.settings.Get(ctx, tokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return tok, err
}

func (s *SQLiteTokenStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	return s.settings.Set(ctx, tokenKey, token)
}

func (s *SQLiteTokenStore) Clear(ctx context.Context) error {
	return s.settings.Delete(ctx, tokenKey)
}
