package db

import (
	"context"
	"database/sql"
)

// DBTX is what the coach repositories need from a connection. Token, draft
// and CV repositories take it so PlanDrafts can write a draft and refresh the
// CV cache in one transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
	_ DBTX = (*sql.Conn)(nil)
)
