// Package sqlite is the sqlite backed implementation of the status store.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"

	"github.com/jdholdren/readstatus/internal/readstatus"
)

// Ensure Repo implements the Repository interface
var _ readstatus.Repository = (*Repo)(nil)

var tracer = otel.Tracer("github.com/jdholdren/readstatus/internal/sqlite")

type Repo struct {
	db  *sqlx.DB
	now func() time.Time
}

func New(db *sqlx.DB) Repo {
	return Repo{
		db:  db,
		now: time.Now,
	}
}

func (r Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("error pinging database: %w", err)
	}

	return nil
}

// Timestamps are kept as RFC 3339 text in UTC.
func (r Repo) timestamp() string {
	return r.now().UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing timestamp %q: %w", s, err)
	}

	return t, nil
}

const table = "reading_status"
