package services

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/minidebet/backend/internal/audit"
	"github.com/minidebet/backend/internal/billing"
	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/metrics"
	"github.com/minidebet/backend/internal/models"
)

// InvoiceItemInput is one requested line.
type InvoiceItemInput struct {
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// CreateInvoiceInput is the validated invoice payload. Nil optional fields
// fall back to the account settings.
type CreateInvoiceInput struct {
	ClientID  string
	IssueDate models.Date
	DueDate   *models.Date
	Currency  *string
	TaxRate   *decimal.Decimal
	Notes     *string
	Items     []InvoiceItemInput
}

type InvoiceService struct {
	invoices  InvoiceRepository
	clients   ClientRepository
	settings  SettingsRepository
	allocator SequenceAllocator
	audit     *audit.Logger
	metrics   *metrics.Metrics
	logger    *logger.Logger
	now       func() time.Time
}

func NewInvoiceService(
	invoices InvoiceRepository,
	clients ClientRepository,
	settings SettingsRepository,
	allocator SequenceAllocator,
	auditLog *audit.Logger,
	m *metrics.Metrics,
	log *logger.Logger,
) *InvoiceService {
	if log == nil {
		log = logger.NewNop()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(log)
	}
	return &InvoiceService{
		invoices:  invoices,
		clients:   clients,
		settings:  settings,
		allocator: allocator,
		audit:     auditLog,
		metrics:   m,
		logger:    log,
		now:       time.Now,
	}
}

// CreateInvoice validates and prices the invoice, allocates its number and
// stores it. Everything that can be rejected is checked before a number is
// allocated. If storing fails afterwards the number is left as a gap.
func (s *InvoiceService) CreateInvoice(ctx context.Context, accountID string, in CreateInvoiceInput) (*models.Invoice, error) {
	if len(in.Items) == 0 {
		return nil, ierr.NewError("invoice without items").
			WithHint("An invoice needs at least one item").
			Mark(ierr.ErrInvalidLineItem)
	}

	settings, err := s.settings.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	issue := in.IssueDate
	if issue.IsZero() {
		issue = models.NewDate(s.now())
	}
	due := issue.AddDays(settings.PaymentTermsDays)
	if in.DueDate != nil {
		due = *in.DueDate
	}
	if due.Before(issue) {
		return nil, ierr.Newf("due %s before issue %s", due, issue).
			WithHint("Due date must not be before the issue date").
			Mark(ierr.ErrValidation)
	}

	taxRate := settings.DefaultTaxRate
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	if err := validateTaxRate(taxRate); err != nil {
		return nil, err
	}

	currency := settings.Currency
	if in.Currency != nil && *in.Currency != "" {
		currency = strings.ToUpper(*in.Currency)
	}

	lines := lo.Map(in.Items, func(item InvoiceItemInput, _ int) billing.LineInput {
		return billing.LineInput{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	})
	totals, err := billing.Calculate(lines, taxRate)
	if err != nil {
		return nil, err
	}

	client, err := s.clients.Get(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client.AccountID != accountID {
		return nil, ierr.NewError("client owned by another account").
			WithHint("Client does not belong to this account").
			Mark(ierr.ErrValidation)
	}

	number, err := s.allocator.Allocate(ctx, accountID)
	if err != nil {
		s.logger.Errorw("invoice number allocation failed", "account_id", accountID, "error", err)
		return nil, err
	}
	s.metrics.RecordAllocation()

	inv := &models.Invoice{
		AccountID:     accountID,
		ClientID:      client.ID,
		InvoiceNumber: number,
		IssueDate:     issue,
		DueDate:       due,
		Currency:      currency,
		Subtotal:      totals.Subtotal,
		TaxRate:       taxRate,
		TaxAmount:     totals.TaxAmount,
		TotalAmount:   totals.Total,
		Status:        models.InvoiceStatusDraft,
		Notes:         in.Notes,
		Items: lo.Map(in.Items, func(item InvoiceItemInput, i int) models.InvoiceItem {
			return models.InvoiceItem{
				Description: strings.TrimSpace(item.Description),
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				LineTotal:   totals.LineTotals[i],
			}
		}),
	}

	if err := s.invoices.Create(ctx, inv); err != nil {
		s.metrics.RecordAllocationGap()
		s.audit.LogSequenceGap(accountID, number, err)
		s.logger.Errorw("invoice not stored, number left unused",
			"account_id", accountID, "invoice_number", number, "error", err)
		return nil, err
	}

	s.metrics.RecordInvoiceCreated()
	s.audit.LogInvoiceCreated(accountID, inv.ID, inv.InvoiceNumber, inv.TotalAmount.StringFixed(2))
	return inv, nil
}

// GetInvoice returns the invoice if it belongs to accountID.
func (s *InvoiceService) GetInvoice(ctx context.Context, accountID, id string) (*models.Invoice, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.AccountID != accountID {
		return nil, ierr.NewError("invoice owned by another account").
			WithHint("Invoice not found").
			Mark(ierr.ErrNotFound)
	}
	return inv, nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context, accountID string, status *models.InvoiceStatus) ([]models.Invoice, error) {
	if status != nil && !status.Valid() {
		return nil, ierr.Newf("unknown status %q", *status).
			WithHint("Status must be one of draft, sent, paid").
			Mark(ierr.ErrValidation)
	}
	return s.invoices.ListByAccount(ctx, accountID, status)
}

// UpdateStatus moves the invoice forward in its lifecycle.
func (s *InvoiceService) UpdateStatus(ctx context.Context, accountID, id string, to models.InvoiceStatus) (*models.Invoice, error) {
	if !to.Valid() {
		return nil, ierr.Newf("unknown status %q", to).
			WithHint("Status must be one of draft, sent, paid").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.GetInvoice(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	from := inv.Status
	if !from.CanTransitionTo(to) {
		return nil, ierr.Newf("transition %s to %s", from, to).
			WithHintf("Invoice cannot move from %s to %s", from, to).
			Mark(ierr.ErrInvalidTransition)
	}

	if err := s.invoices.UpdateStatus(ctx, id, from, to, s.now().UTC()); err != nil {
		return nil, err
	}

	s.metrics.RecordStatusTransition(string(to))
	s.audit.LogStatusChange(accountID, id, string(from), string(to))
	return s.GetInvoice(ctx, accountID, id)
}
