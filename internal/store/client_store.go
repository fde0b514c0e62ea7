package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/minidebet/backend/internal/database"
	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/models"
)

const clientColumns = `id, account_id, name, email, company, street, city, postal_code, country, vat_number, created_at, updated_at`

type ClientStore struct {
	base
}

func NewClientStore(db *sqlx.DB, log *logger.Logger) *ClientStore {
	return &ClientStore{base: newBase(db, log)}
}

// Create assigns an id and timestamps and inserts the client.
func (s *ClientStore) Create(ctx context.Context, client *models.Client) error {
	now := s.now()
	client.ID = uuid.NewString()
	client.CreatedAt = now
	client.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES (:id, :account_id, :name, :email, :company, :street, :city, :postal_code, :country, :vat_number, :created_at, :updated_at)`,
		client)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ierr.WithError(err).
				WithHint("Account not found").
				Mark(ierr.ErrNotFound)
		}
		return dbError(err, "Failed to create client")
	}
	return nil
}

// Get loads a client by id regardless of owner. Callers check AccountID.
func (s *ClientStore) Get(ctx context.Context, id string) (*models.Client, error) {
	var client models.Client
	err := s.db.GetContext(ctx, &client, s.db.Rebind(`SELECT `+clientColumns+` FROM clients WHERE id = ?`), id)
	if err != nil {
		if isNoRows(err) {
			return nil, clientMissing()
		}
		return nil, dbError(err, "Failed to load client")
	}
	return &client, nil
}

func (s *ClientStore) ListByAccount(ctx context.Context, accountID string) ([]models.Client, error) {
	clients := []models.Client{}
	err := s.db.SelectContext(ctx, &clients, s.db.Rebind(`
		SELECT `+clientColumns+` FROM clients
		WHERE account_id = ?
		ORDER BY name, created_at`), accountID)
	if err != nil {
		return nil, dbError(err, "Failed to list clients")
	}
	return clients, nil
}

// Update overwrites the editable fields of a client owned by
// client.AccountID.
func (s *ClientStore) Update(ctx context.Context, client *models.Client) error {
	client.UpdatedAt = s.now()
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE clients SET
			name = :name, email = :email, company = :company, street = :street, city = :city,
			postal_code = :postal_code, country = :country, vat_number = :vat_number, updated_at = :updated_at
		WHERE id = :id AND account_id = :account_id`, client)
	if err != nil {
		return dbError(err, "Failed to update client")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return clientMissing()
	}
	return nil
}

// Delete removes a client. Clients still referenced by invoices cannot be
// deleted.
func (s *ClientStore) Delete(ctx context.Context, accountID, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM clients WHERE id = ? AND account_id = ?`), id, accountID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ierr.WithError(err).
				WithHint("Client has invoices and cannot be deleted").
				Mark(ierr.ErrConflict)
		}
		return dbError(err, "Failed to delete client")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return clientMissing()
	}
	return nil
}

func clientMissing() error {
	return ierr.NewError("client missing").
		WithHint("Client not found").
		Mark(ierr.ErrNotFound)
}
