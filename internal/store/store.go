// Package store persists accounts, settings, clients and invoices. Queries are
// written with ? placeholders and rebound for the active driver.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/logger"
)

// Clock returns the current time. Stores stamp rows in UTC.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

type base struct {
	db     *sqlx.DB
	logger *logger.Logger
	now    Clock
}

func newBase(db *sqlx.DB, log *logger.Logger) base {
	if log == nil {
		log = logger.NewNop()
	}
	return base{db: db, logger: log, now: utcNow}
}

// withTx runs fn in a transaction and commits when it returns nil.
func (b base) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to start transaction").
			Mark(ierr.ErrInternal)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to commit transaction").
			Mark(ierr.ErrInternal)
	}
	return nil
}

func dbError(err error, hint string) error {
	return ierr.WithError(err).WithHint(hint).Mark(ierr.ErrInternal)
}

func isNoRows(err error) bool {
	return ierr.Is(err, sql.ErrNoRows)
}
