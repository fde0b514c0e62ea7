package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/models"
)

func TestSettingsService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes currency and iban", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		svc := NewSettingsService(repo, nil)

		currency := "eur"
		iban := "de89 3704 0044 0532 0130 00"
		repo.On("Update", ctx, "acc-1", mock.MatchedBy(func(u models.SettingsUpdate) bool {
			return *u.Currency == "EUR" && *u.PaymentIBAN == "DE89370400440532013000"
		})).Return(defaultSettings("acc-1"), nil)

		_, err := svc.Update(ctx, "acc-1", models.SettingsUpdate{Currency: &currency, PaymentIBAN: &iban})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	for _, rate := range []string{"-0.01", "100.5"} {
		t.Run("rejects tax rate "+rate, func(t *testing.T) {
			repo := new(MockSettingsRepository)
			svc := NewSettingsService(repo, nil)
			r := decimal.RequireFromString(rate)

			_, err := svc.Update(ctx, "acc-1", models.SettingsUpdate{DefaultTaxRate: &r})
			require.Error(t, err)
			assert.True(t, ierr.Is(err, ierr.ErrInvalidTaxRate))
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("accepts the bounds", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		svc := NewSettingsService(repo, nil)
		repo.On("Update", ctx, "acc-1", mock.Anything).Return(defaultSettings("acc-1"), nil)

		for _, rate := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(100)} {
			r := rate
			_, err := svc.Update(ctx, "acc-1", models.SettingsUpdate{DefaultTaxRate: &r})
			assert.NoError(t, err)
		}
	})
}
