package handlers

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/minidebet/backend/internal/models"
)

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID          string    `json:"account_id"`
	Email       string    `json:"email"`
	FirstName   *string   `json:"first_name,omitempty"`
	LastName    *string   `json:"last_name,omitempty"`
	CompanyName *string   `json:"company_name,omitempty"`
	TaxID       *string   `json:"tax_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   AccountResponse `json:"account"`
}

type SettingsResponse struct {
	DefaultTaxRate    string    `json:"default_tax_rate"`
	Currency          string    `json:"currency"`
	InvoicePrefix     string    `json:"invoice_prefix"`
	NextInvoiceNumber int64     `json:"next_invoice_number"`
	PaymentTermsDays  int       `json:"payment_terms_days"`
	PaymentIBAN       *string   `json:"payment_iban,omitempty"`
	PaymentBIC        *string   `json:"payment_bic,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type InvoiceItemResponse struct {
	ID          string `json:"id"`
	Position    int    `json:"position"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

// InvoiceResponse renders money as strings with at least two decimals and
// dates as YYYY-MM-DD.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	AccountID     string                `json:"account_id"`
	ClientID      string                `json:"client_id"`
	InvoiceNumber string                `json:"invoice_number"`
	IssueDate     models.Date           `json:"issue_date"`
	DueDate       models.Date           `json:"due_date"`
	Currency      string                `json:"currency"`
	Subtotal      string                `json:"subtotal"`
	TaxRate       string                `json:"tax_rate"`
	TaxAmount     string                `json:"tax_amount"`
	TotalAmount   string                `json:"total_amount"`
	Status        models.InvoiceStatus  `json:"status"`
	Notes         *string               `json:"notes,omitempty"`
	SentAt        *time.Time            `json:"sent_at,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	Items         []InvoiceItemResponse `json:"items"`
}

func newAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		Email:       a.Email,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		CompanyName: a.CompanyName,
		TaxID:       a.TaxID,
		CreatedAt:   a.CreatedAt,
	}
}

func newSettingsResponse(s *models.AccountSettings) SettingsResponse {
	return SettingsResponse{
		DefaultTaxRate:    formatAmount(s.DefaultTaxRate),
		Currency:          s.Currency,
		InvoicePrefix:     s.InvoicePrefix,
		NextInvoiceNumber: s.NextInvoiceNumber,
		PaymentTermsDays:  s.PaymentTermsDays,
		PaymentIBAN:       s.PaymentIBAN,
		PaymentBIC:        s.PaymentBIC,
		UpdatedAt:         s.UpdatedAt,
	}
}

func newInvoiceResponse(inv *models.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		AccountID:     inv.AccountID,
		ClientID:      inv.ClientID,
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Currency:      inv.Currency,
		Subtotal:      formatAmount(inv.Subtotal),
		TaxRate:       formatAmount(inv.TaxRate),
		TaxAmount:     formatAmount(inv.TaxAmount),
		TotalAmount:   formatAmount(inv.TotalAmount),
		Status:        inv.Status,
		Notes:         inv.Notes,
		SentAt:        inv.SentAt,
		PaidAt:        inv.PaidAt,
		CreatedAt:     inv.CreatedAt,
		Items: lo.Map(inv.Items, func(item models.InvoiceItem, _ int) InvoiceItemResponse {
			return InvoiceItemResponse{
				ID:          item.ID,
				Position:    item.Position,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   formatAmount(item.UnitPrice),
				LineTotal:   formatAmount(item.LineTotal),
			}
		}),
	}
}

// formatAmount pads to cents but never drops sub-cent digits.
func formatAmount(d decimal.Decimal) string {
	if !d.Equal(d.Round(2)) {
		return d.String()
	}
	return d.StringFixed(2)
}
