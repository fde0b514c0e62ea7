package services

import (
	"context"
	"time"

	"github.com/minidebet/backend/internal/models"
)

// AccountRepository is the credential store.
type AccountRepository interface {
	Create(ctx context.Context, email, passwordHash string, profile models.Profile, defaults models.SettingsDefaults) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

type SettingsRepository interface {
	Get(ctx context.Context, accountID string) (*models.AccountSettings, error)
	Update(ctx context.Context, accountID string, u models.SettingsUpdate) (*models.AccountSettings, error)
}

// SequenceAllocator hands out per-account invoice numbers.
type SequenceAllocator interface {
	Allocate(ctx context.Context, accountID string) (string, error)
}

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	Get(ctx context.Context, id string) (*models.Client, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, accountID, id string) error
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) error
	Get(ctx context.Context, id string) (*models.Invoice, error)
	ListByAccount(ctx context.Context, accountID string, status *models.InvoiceStatus) ([]models.Invoice, error)
	UpdateStatus(ctx context.Context, id string, from, to models.InvoiceStatus, at time.Time) error
}

// PasswordHasher produces and checks salted password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}
