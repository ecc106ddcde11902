// Package database opens and prepares the sqlite database backing the
// status store.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MaxOpenConns bounds the pool. Callers block once it's exhausted.
const MaxOpenConns = 5

// Open creates the directory for the database if needed, connects, and
// makes sure the schema exists.
func Open(ctx context.Context, loc Location) (*sqlx.DB, error) {
	if err := loc.EnsureDir(); err != nil {
		return nil, err
	}

	dbx, err := sqlx.Open("sqlite", dsn(loc))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if loc.InMemory {
		// Every connection to :memory: is its own database, so there can only be one.
		dbx.SetMaxOpenConns(1)
		dbx.SetMaxIdleConns(1)
	} else {
		dbx.SetMaxOpenConns(MaxOpenConns)
		dbx.SetMaxIdleConns(MaxOpenConns)
	}

	if err := EnsureSchema(ctx, dbx); err != nil {
		dbx.Close()
		return nil, err
	}
	slog.InfoContext(ctx, "database ready", "path", loc.Path, "in_memory", loc.InMemory)

	return dbx, nil
}

func dsn(loc Location) string {
	params := []string{"_pragma=busy_timeout(5000)", "_txlock=immediate"}
	if !loc.InMemory {
		params = append(params, "_pragma=journal_mode(WAL)")
	}

	sep := "?"
	if strings.Contains(loc.Path, "?") {
		sep = "&"
	}

	return loc.Path + sep + strings.Join(params, "&")
}

// IsBusy reports whether the error is sqlite telling us the database is locked.
func IsBusy(err error) bool {
	return primaryCode(err) == sqlite3.SQLITE_BUSY
}

func primaryCode(err error) int {
	sqliteErr := &sqlite.Error{}
	if !errors.As(err, &sqliteErr) {
		return 0
	}

	return sqliteErr.Code() & 0xff
}
