package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/minidebet/backend/internal/audit"
	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/models"
)

var maxTaxRate = decimal.NewFromInt(100)

type SettingsService struct {
	settings SettingsRepository
	audit    *audit.Logger
}

func NewSettingsService(settings SettingsRepository, auditLog *audit.Logger) *SettingsService {
	if auditLog == nil {
		auditLog = audit.NewLogger(nil)
	}
	return &SettingsService{settings: settings, audit: auditLog}
}

func (s *SettingsService) Get(ctx context.Context, accountID string) (*models.AccountSettings, error) {
	return s.settings.Get(ctx, accountID)
}

// Update applies a partial settings change. The invoice sequence cannot be
// changed here.
func (s *SettingsService) Update(ctx context.Context, accountID string, u models.SettingsUpdate) (*models.AccountSettings, error) {
	if u.DefaultTaxRate != nil {
		if err := validateTaxRate(*u.DefaultTaxRate); err != nil {
			return nil, err
		}
	}
	if u.Currency != nil {
		c := strings.ToUpper(*u.Currency)
		u.Currency = &c
	}
	if u.PaymentIBAN != nil {
		iban := normalizeIBAN(*u.PaymentIBAN)
		u.PaymentIBAN = &iban
	}

	settings, err := s.settings.Update(ctx, accountID, u)
	if err != nil {
		return nil, err
	}
	s.audit.LogOperation(accountID, audit.EventSettingsModified)
	return settings, nil
}

func validateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return ierr.NewError("tax rate below zero").
			WithHint("Tax rate must not be negative").
			Mark(ierr.ErrInvalidTaxRate)
	}
	if rate.GreaterThan(maxTaxRate) {
		return ierr.NewError("tax rate above 100").
			WithHint("Tax rate must not exceed 100").
			Mark(ierr.ErrInvalidTaxRate)
	}
	return nil
}

func normalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", ""))
}
