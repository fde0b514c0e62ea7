package models

import "time"

// Profile holds the optional personal and company details of an account.
type Profile struct {
	FirstName   *string `json:"first_name,omitempty" db:"first_name"`
	LastName    *string `json:"last_name,omitempty" db:"last_name"`
	CompanyName *string `json:"company_name,omitempty" db:"company_name"`
	TaxID       *string `json:"tax_id,omitempty" db:"tax_id"`
}

// Account is a registered user. Email is stored lower-cased and is unique.
type Account struct {
	ID           string `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Profile
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the company name, falling back to the person's name and
// finally the email.
func (a *Account) DisplayName() string {
	if a.CompanyName != nil && *a.CompanyName != "" {
		return *a.CompanyName
	}
	var name string
	if a.FirstName != nil {
		name = *a.FirstName
	}
	if a.LastName != nil && *a.LastName != "" {
		if name != "" {
			name += " "
		}
		name += *a.LastName
	}
	if name != "" {
		return name
	}
	return a.Email
}
