package db

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// pragmas run on every open. busy_timeout lets `coach board` and a second
// coach command share the file without SQLITE_BUSY on the token slot.
var pragmas = []struct{ stmt, what string }{
	{"PRAGMA journal_mode = WAL", "setting WAL mode"},
	{"PRAGMA foreign_keys = ON", "enabling foreign keys"},
	{"PRAGMA busy_timeout = 5000", "setting busy timeout"},
}

// OpenDB opens the coach database holding the session token, plan drafts and
// the CV analysis cache, then migrates it. A file database is created owner
// read/write only since it stores the bearer token.
func OpenDB(path string) (*sql.DB, error) {
	if path != MemoryPath {
		if err := ensureFile(path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == MemoryPath {
		// every new connection would otherwise see an empty database
		db.SetMaxOpenConns(1)
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p.what, err)
		}
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

func ensureFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating db directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	switch {
	case errors.Is(err, fs.ErrExist):
		return nil
	case err != nil:
		return fmt.Errorf("creating db file: %w", err)
	}
	return f.Close()
}
