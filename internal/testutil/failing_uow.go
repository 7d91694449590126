package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/alexanderramin/coach/internal/db"
)

// FailOnNthExecUoW runs the transaction for real but fails the FailOn'th write
// (counted from 1) with Err. Reads are never counted. FailedQuery reports the
// query that was refused so a test can tell which write broke the transaction, for
// example the CV cache upsert that follows a plan draft insert.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int
	Err    error

	mu     sync.Mutex
	failed string
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(ctx, &failingTx{DBTX: tx, uow: u}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// FailedQuery returns the refused query, or "" if every write went through.
func (u *FailOnNthExecUoW) FailedQuery() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.failed
}

type failingTx struct {
	db.DBTX
	uow    *FailOnNthExecUoW
	writes int
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.writes++
	if f.writes == f.uow.FailOn {
		f.uow.mu.Lock()
		f.uow.failed = query
		f.uow.mu.Unlock()
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
