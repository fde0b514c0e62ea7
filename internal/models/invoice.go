package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

// InvoiceStatus values, in lifecycle order
const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
)

var statusRank = map[InvoiceStatus]int{
	InvoiceStatusDraft: 0,
	InvoiceStatusSent:  1,
	InvoiceStatusPaid:  2,
}

func (s InvoiceStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next goes strictly
// forward. Skipping a step is allowed, staying or going back is not.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Invoice is owned by one account and references one client of the same
// account. The monetary fields always equal the sum over Items.
type Invoice struct {
	ID            string          `db:"id"`
	AccountID     string          `db:"account_id"`
	ClientID      string          `db:"client_id"`
	InvoiceNumber string          `db:"invoice_number"`
	IssueDate     Date            `db:"issue_date"`
	DueDate       Date            `db:"due_date"`
	Currency      string          `db:"currency"`
	Subtotal      decimal.Decimal `db:"subtotal"`
	TaxRate       decimal.Decimal `db:"tax_rate"`
	TaxAmount     decimal.Decimal `db:"tax_amount"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	Status        InvoiceStatus   `db:"status"`
	Notes         *string         `db:"notes"`
	SentAt        *time.Time      `db:"sent_at"`
	PaidAt        *time.Time      `db:"paid_at"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	Items         []InvoiceItem   `db:"-"`
}

// InvoiceItem is a line of an invoice. LineTotal is exactly quantity × unit
// price.
type InvoiceItem struct {
	ID          string          `db:"id"`
	InvoiceID   string          `db:"invoice_id"`
	Position    int             `db:"position"`
	Description string          `db:"description"`
	Quantity    int64           `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	LineTotal   decimal.Decimal `db:"line_total"`
	CreatedAt   time.Time       `db:"created_at"`
}

const dateLayout = "2006-01-02"

// Date is a calendar date without time of day, encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("date must use YYYY-MM-DD: %w", err)
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer for Date
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner for Date
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) >= len(dateLayout) {
		if parsed, err := ParseDate(s[:len(dateLayout)]); err == nil {
			*d = parsed
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as date", s)
}
