package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/minidebet/backend/internal/database"
	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/models"
)

const (
	invoiceColumns = `id, account_id, client_id, invoice_number, issue_date, due_date, currency,
		subtotal, tax_rate, tax_amount, total_amount, status, notes, sent_at, paid_at, created_at, updated_at`
	itemColumns = `id, invoice_id, position, description, quantity, unit_price, line_total, created_at`
)

type InvoiceStore struct {
	base
}

func NewInvoiceStore(db *sqlx.DB, log *logger.Logger) *InvoiceStore {
	return &InvoiceStore{base: newBase(db, log)}
}

// Create persists the invoice header and its items atomically. The invoice
// number must already be allocated.
func (s *InvoiceStore) Create(ctx context.Context, inv *models.Invoice) error {
	now := s.now()
	inv.ID = uuid.NewString()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	for i := range inv.Items {
		inv.Items[i].ID = uuid.NewString()
		inv.Items[i].InvoiceID = inv.ID
		inv.Items[i].Position = i + 1
		inv.Items[i].CreatedAt = now
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO invoices (`+invoiceColumns+`)
			VALUES (:id, :account_id, :client_id, :invoice_number, :issue_date, :due_date, :currency,
				:subtotal, :tax_rate, :tax_amount, :total_amount, :status, :notes, :sent_at, :paid_at, :created_at, :updated_at)`,
			inv)
		if err != nil {
			switch {
			case database.IsUniqueViolation(err):
				return ierr.WithError(err).
					WithHintf("Invoice number %s is already in use", inv.InvoiceNumber).
					Mark(ierr.ErrConflict)
			case database.IsForeignKeyViolation(err):
				return ierr.WithError(err).
					WithHint("Client not found").
					Mark(ierr.ErrNotFound)
			}
			return dbError(err, "Failed to create invoice")
		}

		for i := range inv.Items {
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO invoice_items (`+itemColumns+`)
				VALUES (:id, :invoice_id, :position, :description, :quantity, :unit_price, :line_total, :created_at)`,
				&inv.Items[i])
			if err != nil {
				return dbError(err, "Failed to create invoice item")
			}
		}
		return nil
	})
}

// Get loads an invoice with its items regardless of owner. Callers check
// AccountID.
func (s *InvoiceStore) Get(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.GetContext(ctx, &inv, s.db.Rebind(`SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`), id)
	if err != nil {
		if isNoRows(err) {
			return nil, invoiceMissing()
		}
		return nil, dbError(err, "Failed to load invoice")
	}

	items := []models.InvoiceItem{}
	err = s.db.SelectContext(ctx, &items, s.db.Rebind(`SELECT `+itemColumns+` FROM invoice_items WHERE invoice_id = ? ORDER BY position`), id)
	if err != nil {
		return nil, dbError(err, "Failed to load invoice items")
	}
	inv.Items = items
	return &inv, nil
}

// ListByAccount returns the account's invoices newest first, optionally
// filtered by status, with items attached.
func (s *InvoiceStore) ListByAccount(ctx context.Context, accountID string, status *models.InvoiceStatus) ([]models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE account_id = ?`
	args := []any{accountID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC, invoice_number DESC`

	invoices := []models.Invoice{}
	if err := s.db.SelectContext(ctx, &invoices, s.db.Rebind(query), args...); err != nil {
		return nil, dbError(err, "Failed to list invoices")
	}
	if len(invoices) == 0 {
		return invoices, nil
	}

	ids := lo.Map(invoices, func(inv models.Invoice, _ int) string { return inv.ID })
	itemsQuery, itemArgs, err := sqlx.In(`SELECT `+itemColumns+` FROM invoice_items WHERE invoice_id IN (?) ORDER BY position`, ids)
	if err != nil {
		return nil, dbError(err, "Failed to list invoice items")
	}
	var items []models.InvoiceItem
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(itemsQuery), itemArgs...); err != nil {
		return nil, dbError(err, "Failed to list invoice items")
	}

	byInvoice := lo.GroupBy(items, func(item models.InvoiceItem) string { return item.InvoiceID })
	for i := range invoices {
		invoices[i].Items = byInvoice[invoices[i].ID]
		if invoices[i].Items == nil {
			invoices[i].Items = []models.InvoiceItem{}
		}
	}
	return invoices, nil
}

// UpdateStatus moves an invoice from one status to another. The update only
// applies while the stored status still equals from; otherwise Conflict is
// returned so concurrent transitions cannot both win.
func (s *InvoiceStore) UpdateStatus(ctx context.Context, id string, from, to models.InvoiceStatus, at time.Time) error {
	var sentAt, paidAt *time.Time
	switch to {
	case models.InvoiceStatusSent:
		sentAt = &at
	case models.InvoiceStatusPaid:
		paidAt = &at
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE invoices
		SET status = ?, sent_at = COALESCE(sent_at, ?), paid_at = COALESCE(paid_at, ?), updated_at = ?
		WHERE id = ? AND status = ?`),
		to, sentAt, paidAt, s.now(), id, from)
	if err != nil {
		return dbError(err, "Failed to update invoice status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbError(err, "Failed to update invoice status")
	}
	if n == 0 {
		return ierr.Newf("invoice %s is no longer %s", id, from).
			WithHint("Invoice status was changed concurrently").
			Mark(ierr.ErrConflict)
	}
	return nil
}

func invoiceMissing() error {
	return ierr.NewError("invoice missing").
		WithHint("Invoice not found").
		Mark(ierr.ErrNotFound)
}
