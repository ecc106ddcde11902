// Package readstatus holds the domain types for tracking how far along a
// reader is with an article.
package readstatus

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidStatus = errors.New("invalid status")
	// ErrCorruptStatus means a stored status did not map to any known value.
	// It can only happen if the table was written to out-of-band.
	ErrCorruptStatus = errors.New("corrupt stored status")
)

type (
	// Record is a single row of reading status for an article.
	Record struct {
		ArticleID string
		Status    Status
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Repository interface {
		// GetOrCreateDefault returns the status for the article, inserting a
		// [StatusToRead] record if there wasn't one yet.
		GetOrCreateDefault(ctx context.Context, articleID string) (Status, bool, error)
		// Upsert writes the status for the article in a single statement.
		Upsert(ctx context.Context, articleID string, status Status) (Status, error)
		Record(ctx context.Context, articleID string) (Record, error)
		Ping(ctx context.Context) error
	}
)
