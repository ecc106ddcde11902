package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jdholdren/readstatus/internal/readstatus"
)

var columns = []string{"article_id", "status", "created_at", "updated_at"}

// GetOrCreateDefault returns the stored status for the article. If there isn't
// one, a to_read record is inserted first.
//
// The insert ignores conflicts and the row is always read back afterwards, so
// two first reads racing on the same article both end up with whatever row won.
// The bool is only true for the caller whose insert actually landed.
func (r Repo) GetOrCreateDefault(ctx context.Context, articleID string) (_ readstatus.Status, _ bool, err error) {
	ctx, span := tracer.Start(ctx, "sqlite.GetOrCreateDefault", trace.WithAttributes(attribute.String("article_id", articleID)))
	defer func() { endSpan(span, err) }()

	st, err := r.status(ctx, articleID)
	if err == nil {
		return st, false, nil
	}
	if !errors.Is(err, readstatus.ErrNotFound) {
		return 0, false, err
	}

	now := r.timestamp()
	query, args, err := sq.Insert(table).
		Columns(columns...).
		Values(articleID, readstatus.StatusToRead, now, now).
		Suffix("ON CONFLICT (article_id) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("error constructing sql: %s", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, false, fmt.Errorf("error inserting default status: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("error reading affected rows: %w", err)
	}

	st, err = r.status(ctx, articleID)
	if err != nil {
		return 0, false, err
	}

	return st, inserted == 1, nil
}

// Upsert writes the status in one statement, leaving created_at alone if the
// record already existed.
func (r Repo) Upsert(ctx context.Context, articleID string, status readstatus.Status) (_ readstatus.Status, err error) {
	ctx, span := tracer.Start(ctx, "sqlite.Upsert", trace.WithAttributes(
		attribute.String("article_id", articleID),
		attribute.String("status", status.String()),
	))
	defer func() { endSpan(span, err) }()

	if !status.Valid() {
		return 0, fmt.Errorf("%w: %s", readstatus.ErrInvalidStatus, status)
	}

	now := r.timestamp()
	query, args, err := sq.Insert(table).
		Columns(columns...).
		Values(articleID, status, now, now).
		Suffix("ON CONFLICT (article_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error constructing sql: %s", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("error upserting status: %w", err)
	}

	return status, nil
}

// Record fetches the whole row for an article.
func (r Repo) Record(ctx context.Context, articleID string) (readstatus.Record, error) {
	query, args, err := sq.Select(columns...).From(table).Where(sq.Eq{"article_id": articleID}).ToSql()
	if err != nil {
		return readstatus.Record{}, fmt.Errorf("error constructing sql: %s", err)
	}

	var row recordRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return readstatus.Record{}, readstatus.ErrNotFound
	}
	if err != nil {
		return readstatus.Record{}, fmt.Errorf("error fetching record: %w", err)
	}

	return row.record()
}

func (r Repo) status(ctx context.Context, articleID string) (readstatus.Status, error) {
	query, args, err := sq.Select("status").From(table).Where(sq.Eq{"article_id": articleID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("error constructing sql: %s", err)
	}

	var st readstatus.Status
	err = r.db.GetContext(ctx, &st, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, readstatus.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("error fetching status: %w", err)
	}

	return st, nil
}

type recordRow struct {
	ArticleID string            `db:"article_id"`
	Status    readstatus.Status `db:"status"`
	CreatedAt string            `db:"created_at"`
	UpdatedAt string            `db:"updated_at"`
}

func (row recordRow) record() (readstatus.Record, error) {
	created, err := parseTimestamp(row.CreatedAt)
	if err != nil {
		return readstatus.Record{}, err
	}
	updated, err := parseTimestamp(row.UpdatedAt)
	if err != nil {
		return readstatus.Record{}, err
	}

	return readstatus.Record{
		ArticleID: row.ArticleID,
		Status:    row.Status,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
