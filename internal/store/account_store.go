package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/minidebet/backend/internal/database"
	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/models"
)

const accountColumns = `id, email, password_hash, first_name, last_name, company_name, tax_id, created_at, updated_at`

// AccountStore is the credential store.
type AccountStore struct {
	base
}

func NewAccountStore(db *sqlx.DB, log *logger.Logger) *AccountStore {
	return &AccountStore{base: newBase(db, log)}
}

// Create inserts the account and its default settings row in one
// transaction. Emails are compared case-insensitively; a duplicate yields
// a Conflict error.
func (s *AccountStore) Create(ctx context.Context, email, passwordHash string, profile models.Profile, defaults models.SettingsDefaults) (*models.Account, error) {
	now := s.now()
	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Profile:      profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO accounts (id, email, password_hash, first_name, last_name, company_name, tax_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			account.ID, account.Email, account.PasswordHash,
			profile.FirstName, profile.LastName, profile.CompanyName, profile.TaxID,
			now, now)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return ierr.WithError(err).
					WithHint("An account with this email already exists").
					Mark(ierr.ErrConflict)
			}
			return dbError(err, "Failed to create account")
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO account_settings (account_id, default_tax_rate, currency, invoice_prefix, next_invoice_number, payment_terms_days, updated_at)
			VALUES (?, ?, ?, ?, 1, ?, ?)`),
			account.ID, defaults.TaxRate, defaults.Currency, defaults.InvoicePrefix, defaults.PaymentTermsDays, now)
		if err != nil {
			return dbError(err, "Failed to create account settings")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debugw("account created", "account_id", account.ID)
	return account, nil
}

// FindByEmail returns nil without error when no account matches.
func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := s.db.GetContext(ctx, &account, s.db.Rebind(`SELECT `+accountColumns+` FROM accounts WHERE LOWER(email) = ?`),
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, dbError(err, "Failed to look up account")
	}
	return &account, nil
}

func (s *AccountStore) FindByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := s.db.GetContext(ctx, &account, s.db.Rebind(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`), id)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("account missing").
				WithHint("Account not found").
				Mark(ierr.ErrNotFound)
		}
		return nil, dbError(err, "Failed to load account")
	}
	return &account, nil
}

// UpdatePasswordHash replaces the stored digest.
func (s *AccountStore) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`),
		passwordHash, s.now(), id)
	if err != nil {
		return dbError(err, "Failed to update password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ierr.NewError("account missing").
			WithHint("Account not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}
