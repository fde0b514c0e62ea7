package models

import "time"

// Client is a billing contact owned by exactly one account.
type Client struct {
	ID         string    `json:"id" db:"id"`
	AccountID  string    `json:"-" db:"account_id"`
	Name       string    `json:"name" db:"name"`
	Email      *string   `json:"email,omitempty" db:"email"`
	Company    *string   `json:"company,omitempty" db:"company"`
	Street     *string   `json:"street,omitempty" db:"street"`
	City       *string   `json:"city,omitempty" db:"city"`
	PostalCode *string   `json:"postal_code,omitempty" db:"postal_code"`
	Country    string    `json:"country" db:"country"`
	VATNumber  *string   `json:"vat_number,omitempty" db:"vat_number"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
