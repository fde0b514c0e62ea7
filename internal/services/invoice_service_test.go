package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/metrics"
	"github.com/minidebet/backend/internal/models"
)

type invoiceDeps struct {
	invoices  *MockInvoiceRepository
	clients   *MockClientRepository
	settings  *MockSettingsRepository
	allocator *MockSequenceAllocator
	svc       *InvoiceService
}

func newInvoiceDeps() *invoiceDeps {
	d := &invoiceDeps{
		invoices:  new(MockInvoiceRepository),
		clients:   new(MockClientRepository),
		settings:  new(MockSettingsRepository),
		allocator: new(MockSequenceAllocator),
	}
	d.svc = NewInvoiceService(d.invoices, d.clients, d.settings, d.allocator, nil, metrics.New(), nil)
	d.svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return d
}

func defaultSettings(accountID string) *models.AccountSettings {
	return &models.AccountSettings{
		AccountID:         accountID,
		DefaultTaxRate:    decimal.NewFromInt(19),
		Currency:          "EUR",
		InvoicePrefix:     "INV",
		NextInvoiceNumber: 1,
		PaymentTermsDays:  14,
	}
}

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func basicInput(t *testing.T) CreateInvoiceInput {
	return CreateInvoiceInput{
		ClientID:  "cl-1",
		IssueDate: mustDate(t, "2024-03-01"),
		Items: []InvoiceItemInput{
			{Description: "Consulting", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
			{Description: "Travel", Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
		},
	}
}

func TestInvoiceService_CreateInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("prices, numbers and stores a draft", func(t *testing.T) {
		d := newInvoiceDeps()
		d.settings.On("Get", ctx, "acc-1").Return(defaultSettings("acc-1"), nil)
		d.clients.On("Get", ctx, "cl-1").Return(&models.Client{ID: "cl-1", AccountID: "acc-1"}, nil)
		d.allocator.On("Allocate", ctx, "acc-1").Return("INV-1", nil).Once()
		d.invoices.On("Create", ctx, mock.AnythingOfType("*models.Invoice")).Return(nil)

		inv, err := d.svc.CreateInvoice(ctx, "acc-1", basicInput(t))
		require.NoError(t, err)

		assert.Equal(t, "INV-1", inv.InvoiceNumber)
		assert.Equal(t, models.InvoiceStatusDraft, inv.Status)
		assert.Equal(t, "25.00", inv.Subtotal.StringFixed(2))
		assert.Equal(t, "4.75", inv.TaxAmount.StringFixed(2))
		assert.Equal(t, "29.75", inv.TotalAmount.StringFixed(2))
		assert.Equal(t, "EUR", inv.Currency)
		assert.Equal(t, "2024-03-15", inv.DueDate.String(), "due date defaults to the payment terms")
		require.Len(t, inv.Items, 2)
		assert.Equal(t, "20.00", inv.Items[0].LineTotal.StringFixed(2))

		d.allocator.AssertExpectations(t)
		d.invoices.AssertExpectations(t)
	})

	t.Run("explicit tax rate, currency and due date", func(t *testing.T) {
		d := newInvoiceDeps()
		d.settings.On("Get", ctx, "acc-1").Return(defaultSettings("acc-1"), nil)
		d.clients.On("Get", ctx, "cl-1").Return(&models.Client{ID: "cl-1", AccountID: "acc-1"}, nil)
		d.allocator.On("Allocate", ctx, "acc-1").Return("INV-9", nil)
		d.invoices.On("Create", ctx, mock.Anything).Return(nil)

		in := basicInput(t)
		rate := decimal.NewFromInt(7)
		usd := "usd"
		due := mustDate(t, "2024-03-01")
		in.TaxRate, in.Currency, in.DueDate = &rate, &usd, &due

		inv, err := d.svc.CreateInvoice(ctx, "acc-1", in)
		require.NoError(t, err)
		assert.Equal(t, "1.75", inv.TaxAmount.StringFixed(2))
		assert.Equal(t, "USD", inv.Currency)
		assert.Equal(t, "2024-03-01", inv.DueDate.String())
	})

	rejections := []struct {
		name   string
		mutate func(in *CreateInvoiceInput)
		client *models.Client
		kind   error
	}{
		{
			name:   "zero quantity",
			mutate: func(in *CreateInvoiceInput) { in.Items[1].Quantity = 0 },
			kind:   ierr.ErrInvalidLineItem,
		},
		{
			name:   "negative unit price",
			mutate: func(in *CreateInvoiceInput) { in.Items[0].UnitPrice = decimal.RequireFromString("-1") },
			kind:   ierr.ErrInvalidLineItem,
		},
		{
			name:   "no items",
			mutate: func(in *CreateInvoiceInput) { in.Items = nil },
			kind:   ierr.ErrValidation,
		},
		{
			name: "negative tax rate",
			mutate: func(in *CreateInvoiceInput) {
				r := decimal.NewFromInt(-5)
				in.TaxRate = &r
			},
			kind: ierr.ErrInvalidTaxRate,
		},
		{
			name: "due before issue",
			mutate: func(in *CreateInvoiceInput) {
				due := in.IssueDate.AddDays(-1)
				in.DueDate = &due
			},
			kind: ierr.ErrValidation,
		},
		{
			name:   "client of another account",
			mutate: func(in *CreateInvoiceInput) {},
			client: &models.Client{ID: "cl-1", AccountID: "acc-2"},
			kind:   ierr.ErrValidation,
		},
	}

	for _, tt := range rejections {
		t.Run("rejected before allocation: "+tt.name, func(t *testing.T) {
			d := newInvoiceDeps()
			client := tt.client
			if client == nil {
				client = &models.Client{ID: "cl-1", AccountID: "acc-1"}
			}
			d.settings.On("Get", ctx, "acc-1").Return(defaultSettings("acc-1"), nil)
			d.clients.On("Get", ctx, "cl-1").Return(client, nil)

			in := basicInput(t)
			tt.mutate(&in)

			_, err := d.svc.CreateInvoice(ctx, "acc-1", in)
			require.Error(t, err)
			assert.True(t, ierr.Is(err, tt.kind), "got %v", err)
			assert.True(t, ierr.IsValidation(err))

			d.allocator.AssertNotCalled(t, "Allocate", mock.Anything, mock.Anything)
			d.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("missing client is not found", func(t *testing.T) {
		d := newInvoiceDeps()
		d.settings.On("Get", ctx, "acc-1").Return(defaultSettings("acc-1"), nil)
		d.clients.On("Get", ctx, "cl-1").Return(nil, ierr.NewError("client missing").Mark(ierr.ErrNotFound))

		_, err := d.svc.CreateInvoice(ctx, "acc-1", basicInput(t))
		require.Error(t, err)
		assert.True(t, ierr.IsNotFound(err))
		d.allocator.AssertNotCalled(t, "Allocate", mock.Anything, mock.Anything)
	})

	t.Run("store failure leaves a gap", func(t *testing.T) {
		d := newInvoiceDeps()
		d.settings.On("Get", ctx, "acc-1").Return(defaultSettings("acc-1"), nil)
		d.clients.On("Get", ctx, "cl-1").Return(&models.Client{ID: "cl-1", AccountID: "acc-1"}, nil)
		d.allocator.On("Allocate", ctx, "acc-1").Return("INV-3", nil).Once()
		d.allocator.On("Allocate", ctx, "acc-1").Return("INV-4", nil).Once()
		d.invoices.On("Create", ctx, mock.Anything).
			Return(ierr.WithError(errors.New("disk full")).Mark(ierr.ErrInternal)).Once()
		d.invoices.On("Create", ctx, mock.Anything).Return(nil).Once()

		_, err := d.svc.CreateInvoice(ctx, "acc-1", basicInput(t))
		require.Error(t, err)
		assert.True(t, ierr.IsInternal(err))

		inv, err := d.svc.CreateInvoice(ctx, "acc-1", basicInput(t))
		require.NoError(t, err)
		assert.Equal(t, "INV-4", inv.InvoiceNumber, "the failed number is not reused")
		d.allocator.AssertNumberOfCalls(t, "Allocate", 2)
	})

	t.Run("allocation failure stores nothing", func(t *testing.T) {
		d := newInvoiceDeps()
		d.settings.On("Get", ctx, "acc-1").Return(defaultSettings("acc-1"), nil)
		d.clients.On("Get", ctx, "cl-1").Return(&models.Client{ID: "cl-1", AccountID: "acc-1"}, nil)
		d.allocator.On("Allocate", ctx, "acc-1").Return("", ierr.WithError(errors.New("timeout")).Mark(ierr.ErrInternal))

		_, err := d.svc.CreateInvoice(ctx, "acc-1", basicInput(t))
		require.Error(t, err)
		d.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestInvoiceService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	invoice := func(status models.InvoiceStatus) *models.Invoice {
		return &models.Invoice{ID: "inv-1", AccountID: "acc-1", Status: status}
	}

	t.Run("forward move", func(t *testing.T) {
		d := newInvoiceDeps()
		d.invoices.On("Get", ctx, "inv-1").Return(invoice(models.InvoiceStatusDraft), nil).Once()
		d.invoices.On("UpdateStatus", ctx, "inv-1", models.InvoiceStatusDraft, models.InvoiceStatusSent, now).Return(nil)
		d.invoices.On("Get", ctx, "inv-1").Return(invoice(models.InvoiceStatusSent), nil).Once()

		inv, err := d.svc.UpdateStatus(ctx, "acc-1", "inv-1", models.InvoiceStatusSent)
		require.NoError(t, err)
		assert.Equal(t, models.InvoiceStatusSent, inv.Status)
		d.invoices.AssertExpectations(t)
	})

	t.Run("backwards is invalid", func(t *testing.T) {
		d := newInvoiceDeps()
		d.invoices.On("Get", ctx, "inv-1").Return(invoice(models.InvoiceStatusPaid), nil)

		_, err := d.svc.UpdateStatus(ctx, "acc-1", "inv-1", models.InvoiceStatusSent)
		require.Error(t, err)
		assert.True(t, ierr.Is(err, ierr.ErrInvalidTransition))
		assert.True(t, ierr.IsValidation(err))
		d.invoices.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown status", func(t *testing.T) {
		d := newInvoiceDeps()
		_, err := d.svc.UpdateStatus(ctx, "acc-1", "inv-1", models.InvoiceStatus("void"))
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("lost race is a conflict", func(t *testing.T) {
		d := newInvoiceDeps()
		d.invoices.On("Get", ctx, "inv-1").Return(invoice(models.InvoiceStatusDraft), nil)
		d.invoices.On("UpdateStatus", ctx, "inv-1", models.InvoiceStatusDraft, models.InvoiceStatusPaid, now).
			Return(ierr.NewError("stale").Mark(ierr.ErrConflict))

		_, err := d.svc.UpdateStatus(ctx, "acc-1", "inv-1", models.InvoiceStatusPaid)
		assert.True(t, ierr.IsConflict(err))
	})

	t.Run("other account's invoice is not found", func(t *testing.T) {
		d := newInvoiceDeps()
		d.invoices.On("Get", ctx, "inv-1").Return(&models.Invoice{ID: "inv-1", AccountID: "acc-2", Status: models.InvoiceStatusDraft}, nil)

		_, err := d.svc.UpdateStatus(ctx, "acc-1", "inv-1", models.InvoiceStatusSent)
		assert.True(t, ierr.IsNotFound(err))
	})
}

func TestInvoiceService_ListInvoices(t *testing.T) {
	ctx := context.Background()
	d := newInvoiceDeps()

	sent := models.InvoiceStatusSent
	d.invoices.On("ListByAccount", ctx, "acc-1", &sent).Return([]models.Invoice{{ID: "inv-2"}}, nil)

	list, err := d.svc.ListInvoices(ctx, "acc-1", &sent)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	bogus := models.InvoiceStatus("void")
	_, err = d.svc.ListInvoices(ctx, "acc-1", &bogus)
	assert.True(t, ierr.IsValidation(err))
}
