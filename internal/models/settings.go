package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountSettings is one-to-one with Account. NextInvoiceNumber is only ever
// advanced by the sequence allocator.
type AccountSettings struct {
	AccountID         string          `json:"-" db:"account_id"`
	DefaultTaxRate    decimal.Decimal `json:"default_tax_rate" db:"default_tax_rate"`
	Currency          string          `json:"currency" db:"currency"`
	InvoicePrefix     string          `json:"invoice_prefix" db:"invoice_prefix"`
	NextInvoiceNumber int64           `json:"next_invoice_number" db:"next_invoice_number"`
	PaymentTermsDays  int             `json:"payment_terms_days" db:"payment_terms_days"`
	PaymentIBAN       *string         `json:"payment_iban,omitempty" db:"payment_iban"`
	PaymentBIC        *string         `json:"payment_bic,omitempty" db:"payment_bic"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// SettingsDefaults seeds the settings row created at registration.
type SettingsDefaults struct {
	TaxRate          decimal.Decimal
	Currency         string
	InvoicePrefix    string
	PaymentTermsDays int
}

// SettingsUpdate lists the fields that may change through the settings
// endpoint. Nil fields are left untouched. There is no field for
// the invoice sequence.
type SettingsUpdate struct {
	DefaultTaxRate   *decimal.Decimal
	Currency         *string
	InvoicePrefix    *string
	PaymentTermsDays *int
	PaymentIBAN      *string
	PaymentBIC       *string
}

// Apply copies the non-nil fields of u onto s.
func (u SettingsUpdate) Apply(s *AccountSettings) {
	if u.DefaultTaxRate != nil {
		s.DefaultTaxRate = *u.DefaultTaxRate
	}
	if u.Currency != nil {
		s.Currency = *u.Currency
	}
	if u.InvoicePrefix != nil {
		s.InvoicePrefix = *u.InvoicePrefix
	}
	if u.PaymentTermsDays != nil {
		s.PaymentTermsDays = *u.PaymentTermsDays
	}
	if u.PaymentIBAN != nil {
		s.PaymentIBAN = u.PaymentIBAN
	}
	if u.PaymentBIC != nil {
		s.PaymentBIC = u.PaymentBIC
	}
}
