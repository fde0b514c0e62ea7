package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/minidebet/backend/internal/logger"
)

// The increment and the read happen in one statement, so the row lock held
// by the UPDATE serializes concurrent callers for the same account.
const allocateQuery = `
	UPDATE account_settings
	SET next_invoice_number = next_invoice_number + 1
	WHERE account_id = ?
	RETURNING invoice_prefix, next_invoice_number - 1`

// SequenceAllocator hands out invoice numbers. It always runs on the pool
// in autocommit mode, never inside a caller's transaction, so a consumed
// number is never returned by a later rollback.
type SequenceAllocator struct {
	base
}

func NewSequenceAllocator(db *sqlx.DB, log *logger.Logger) *SequenceAllocator {
	return &SequenceAllocator{base: newBase(db, log)}
}

// Allocate returns the next invoice number for the account, formatted as
// "<prefix>-<n>".
func (a *SequenceAllocator) Allocate(ctx context.Context, accountID string) (string, error) {
	var (
		prefix string
		seq    int64
	)
	row := a.db.QueryRowxContext(ctx, a.db.Rebind(allocateQuery), accountID)
	if err := row.Scan(&prefix, &seq); err != nil {
		if isNoRows(err) {
			return "", settingsMissing()
		}
		return "", dbError(err, "Invoice number generation failed")
	}

	a.logger.Debugw("allocated invoice number", "account_id", accountID, "sequence", seq)
	return FormatInvoiceNumber(prefix, seq), nil
}

func FormatInvoiceNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%d", prefix, seq)
}
