package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-retry"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates the reading_status table if it doesn't exist yet.
//
// It's safe to call on every start. Only a locked database is retried, and
// only a handful of times.
func EnsureSchema(ctx context.Context, dbx *sqlx.DB) error {
	backoff := retry.WithMaxRetries(4, retry.NewFibonacci(100*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := dbx.ExecContext(ctx, schema)
		if IsBusy(err) {
			slog.WarnContext(ctx, "database busy while creating schema, retrying")
			return retry.RetryableError(err)
		}

		return err
	}); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}

	return nil
}
