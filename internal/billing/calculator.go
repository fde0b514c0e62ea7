// Package billing holds the pure invoice arithmetic. Nothing here touches
// storage or the clock.
package billing

import (
	"github.com/shopspring/decimal"

	ierr "github.com/minidebet/backend/internal/errors"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// LineInput is one billable line before pricing.
type LineInput struct {
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Totals is the priced result. LineTotals is parallel to the input lines.
type Totals struct {
	LineTotals []decimal.Decimal
	Subtotal   decimal.Decimal
	TaxAmount  decimal.Decimal
	Total      decimal.Decimal
}

// RoundMoney rounds to cents using banker's rounding.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(moneyPlaces)
}

// Calculate prices the lines and applies taxRate (a percentage). Line totals
// and the subtotal are exact; only the tax is rounded to cents, so the total
// carries sub-cent digits whenever a unit price does.
func Calculate(lines []LineInput, taxRate decimal.Decimal) (Totals, error) {
	if taxRate.IsNegative() {
		return Totals{}, ierr.NewError("tax rate is negative").
			WithHintf("Tax rate must not be negative, got %s", taxRate.String()).
			Mark(ierr.ErrInvalidTaxRate)
	}

	totals := Totals{
		LineTotals: make([]decimal.Decimal, len(lines)),
		Subtotal:   decimal.Zero,
	}
	for i, line := range lines {
		if line.Quantity <= 0 {
			return Totals{}, ierr.Newf("line %d has quantity %d", i+1, line.Quantity).
				WithHintf("Item %d: quantity must be greater than zero", i+1).
				Mark(ierr.ErrInvalidLineItem)
		}
		if line.UnitPrice.IsNegative() {
			return Totals{}, ierr.Newf("line %d has unit price %s", i+1, line.UnitPrice.String()).
				WithHintf("Item %d: unit price must not be negative", i+1).
				Mark(ierr.ErrInvalidLineItem)
		}
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity))
		totals.LineTotals[i] = lineTotal
		totals.Subtotal = totals.Subtotal.Add(lineTotal)
	}

	totals.TaxAmount = RoundMoney(totals.Subtotal.Mul(taxRate).Div(hundred))
	totals.Total = totals.Subtotal.Add(totals.TaxAmount)
	return totals, nil
}
