package services

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/models"
)

func TestEPCPayload(t *testing.T) {
	payload, err := EPCPayload("Muster GmbH", "de89 3704 0044 0532 0130 00", "cobadeffxxx", "EUR",
		decimal.RequireFromString("29.75"), "INV-1")
	require.NoError(t, err)

	lines := strings.Split(payload, "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, []string{"BCD", "002", "1", "SCT"}, lines[:4])
	assert.Equal(t, "COBADEFFXXX", lines[4])
	assert.Equal(t, "Muster GmbH", lines[5])
	assert.Equal(t, "DE89370400440532013000", lines[6])
	assert.Equal(t, "EUR29.75", lines[7])
	assert.Equal(t, "INV-1", lines[10])

	t.Run("only euro", func(t *testing.T) {
		_, err := EPCPayload("x", "DE89370400440532013000", "", "USD", decimal.NewFromInt(1), "INV-1")
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := EPCPayload("x", "DE89370400440532013000", "", "EUR", decimal.Zero, "INV-1")
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("long names are cut", func(t *testing.T) {
		payload, err := EPCPayload(strings.Repeat("n", 100), "DE89370400440532013000", "", "EUR", decimal.NewFromInt(1), "INV-1")
		require.NoError(t, err)
		assert.Len(t, strings.Split(payload, "\n")[5], 70)
	})
}

func TestQRService_PaymentQR(t *testing.T) {
	ctx := context.Background()
	d := newInvoiceDeps()
	accounts := new(MockAccountRepository)
	svc := NewQRService(d.svc, accounts, d.settings)

	company := "Muster GmbH"
	accounts.On("FindByID", ctx, "acc-1").Return(&models.Account{ID: "acc-1", Email: "a@x.com", Profile: models.Profile{CompanyName: &company}}, nil)
	d.invoices.On("Get", ctx, "inv-1").Return(&models.Invoice{
		ID: "inv-1", AccountID: "acc-1", InvoiceNumber: "INV-1", Currency: "EUR",
		TotalAmount: decimal.RequireFromString("29.75"),
	}, nil)

	t.Run("requires an iban", func(t *testing.T) {
		d.settings.On("Get", ctx, "acc-1").Return(defaultSettings("acc-1"), nil).Once()

		_, err := svc.PaymentQR(ctx, "acc-1", "inv-1")
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("renders a png", func(t *testing.T) {
		settings := defaultSettings("acc-1")
		iban := "DE89370400440532013000"
		settings.PaymentIBAN = &iban
		d.settings.On("Get", ctx, "acc-1").Return(settings, nil)

		image, err := svc.PaymentQR(ctx, "acc-1", "inv-1")
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(image))
		require.NoError(t, err)
		assert.Equal(t, 256, img.Bounds().Dx())

		again, err := svc.PaymentQR(ctx, "acc-1", "inv-1")
		require.NoError(t, err)
		assert.Equal(t, image, again)
	})
}
