package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/models"
)

const settingsColumns = `account_id, default_tax_rate, currency, invoice_prefix, next_invoice_number, payment_terms_days, payment_iban, payment_bic, updated_at`

type SettingsStore struct {
	base
}

func NewSettingsStore(db *sqlx.DB, log *logger.Logger) *SettingsStore {
	return &SettingsStore{base: newBase(db, log)}
}

func (s *SettingsStore) Get(ctx context.Context, accountID string) (*models.AccountSettings, error) {
	var settings models.AccountSettings
	err := s.db.GetContext(ctx, &settings, s.db.Rebind(`SELECT `+settingsColumns+` FROM account_settings WHERE account_id = ?`), accountID)
	if err != nil {
		if isNoRows(err) {
			return nil, settingsMissing()
		}
		return nil, dbError(err, "Failed to load settings")
	}
	return &settings, nil
}

// Update writes the non-nil fields of u. The invoice sequence is not part of
// the statement.
func (s *SettingsStore) Update(ctx context.Context, accountID string, u models.SettingsUpdate) (*models.AccountSettings, error) {
	var settings models.AccountSettings
	err := s.db.GetContext(ctx, &settings, s.db.Rebind(`
		UPDATE account_settings SET
			default_tax_rate = COALESCE(?, default_tax_rate),
			currency = COALESCE(?, currency),
			invoice_prefix = COALESCE(?, invoice_prefix),
			payment_terms_days = COALESCE(?, payment_terms_days),
			payment_iban = COALESCE(?, payment_iban),
			payment_bic = COALESCE(?, payment_bic),
			updated_at = ?
		WHERE account_id = ?
		RETURNING `+settingsColumns),
		u.DefaultTaxRate, u.Currency, u.InvoicePrefix, u.PaymentTermsDays, u.PaymentIBAN, u.PaymentBIC,
		s.now(), accountID)
	if err != nil {
		if isNoRows(err) {
			return nil, settingsMissing()
		}
		return nil, dbError(err, "Failed to update settings")
	}
	return &settings, nil
}

func settingsMissing() error {
	return ierr.NewError("settings row missing").
		WithHint("Account settings not found").
		Mark(ierr.ErrNotFound)
}
