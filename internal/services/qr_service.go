package services

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	ierr "github.com/minidebet/backend/internal/errors"
)

const (
	qrImageSize    = 256
	epcMaxName     = 70
	epcMaxText     = 140
	epcCurrency    = "EUR"
	qrCacheTTL     = 10 * time.Minute
	qrCacheCleanup = 30 * time.Minute
)

var (
	epcMinAmount = decimal.RequireFromString("0.01")
	epcMaxAmount = decimal.RequireFromString("999999999.99")
)

// QRService renders EPC069-12 ("GiroCode") credit transfer QR codes so an
// invoice can be paid from a banking app. No payment is processed here.
type QRService struct {
	invoices *InvoiceService
	accounts AccountRepository
	settings SettingsRepository
	images   *cache.Cache
}

func NewQRService(invoices *InvoiceService, accounts AccountRepository, settings SettingsRepository) *QRService {
	return &QRService{
		invoices: invoices,
		accounts: accounts,
		settings: settings,
		images:   cache.New(qrCacheTTL, qrCacheCleanup),
	}
}

// PaymentQR returns a PNG for the open amount of the invoice.
func (s *QRService) PaymentQR(ctx context.Context, accountID, invoiceID string) ([]byte, error) {
	inv, err := s.invoices.GetInvoice(ctx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if settings.PaymentIBAN == nil || *settings.PaymentIBAN == "" {
		return nil, ierr.NewError("no payment iban").
			WithHint("Set a payment IBAN in the settings first").
			Mark(ierr.ErrValidation)
	}

	var bic string
	if settings.PaymentBIC != nil {
		bic = *settings.PaymentBIC
	}
	payload, err := EPCPayload(account.DisplayName(), *settings.PaymentIBAN, bic, inv.Currency, inv.TotalAmount, inv.InvoiceNumber)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.images.Get(payload); ok {
		return cached.([]byte), nil
	}

	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to render payment code").
			Mark(ierr.ErrInternal)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(qrImageSize)); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to render payment code").
			Mark(ierr.ErrInternal)
	}

	image := buf.Bytes()
	s.images.SetDefault(payload, image)
	return image, nil
}

// EPCPayload builds the EPC069-12 version 002 text for a SEPA credit
// transfer. Only EUR amounts can be encoded.
func EPCPayload(beneficiary, iban, bic, currency string, amount decimal.Decimal, reference string) (string, error) {
	if !strings.EqualFold(currency, epcCurrency) {
		return "", ierr.Newf("currency %s", currency).
			WithHint("Payment codes are only available for EUR invoices").
			Mark(ierr.ErrValidation)
	}
	if amount.LessThan(epcMinAmount) || amount.GreaterThan(epcMaxAmount) {
		return "", ierr.Newf("amount %s out of range", amount.String()).
			WithHint("Invoice amount cannot be encoded in a payment code").
			Mark(ierr.ErrValidation)
	}

	lines := []string{
		"BCD",
		"002",
		"1", // UTF-8
		"SCT",
		strings.ToUpper(strings.TrimSpace(bic)),
		truncate(strings.TrimSpace(beneficiary), epcMaxName),
		normalizeIBAN(iban),
		fmt.Sprintf("%s%s", epcCurrency, amount.RoundBank(2).StringFixed(2)),
		"", // purpose
		"", // structured reference
		truncate(reference, epcMaxText),
	}
	return strings.Join(lines, "\n"), nil
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
