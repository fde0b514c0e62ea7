// Package audit writes the business audit trail as structured log lines.
package audit

import (
	"time"

	"github.com/minidebet/backend/internal/logger"
)

// Event types
const (
	EventRegistration     = "REGISTRATION"
	EventLoginFailed      = "LOGIN_FAILED"
	EventPasswordChanged  = "PASSWORD_CHANGED"
	EventLogout           = "LOGOUT"
	EventInvoiceCreated   = "INVOICE_CREATED"
	EventStatusChanged    = "INVOICE_STATUS_CHANGED"
	EventSequenceGap      = "INVOICE_NUMBER_GAP"
	EventSettingsModified = "SETTINGS_UPDATED"
)

type Event struct {
	Timestamp time.Time
	EventType string
	AccountID string
	Subject   string
	Status    string
	Details   map[string]string
}

// Logger emits audit events on a dedicated "audit" logger.
type Logger struct {
	log *logger.Logger
	now func() time.Time
}

func NewLogger(log *logger.Logger) *Logger {
	if log == nil {
		log = logger.NewNop()
	}
	return &Logger{log: log.Named("audit"), now: time.Now}
}

func (a *Logger) LogRegistration(accountID string) {
	a.Log(Event{EventType: EventRegistration, AccountID: accountID, Status: "SUCCESS"})
}

// LogLoginFailed records a failed login. The address is recorded, the
// attempted password never is.
func (a *Logger) LogLoginFailed(email, remoteAddr string) {
	a.Log(Event{
		EventType: EventLoginFailed,
		Status:    "FAILED",
		Details:   map[string]string{"email": email, "remote_addr": remoteAddr},
	})
}

func (a *Logger) LogInvoiceCreated(accountID, invoiceID, number, total string) {
	a.Log(Event{
		EventType: EventInvoiceCreated,
		AccountID: accountID,
		Subject:   invoiceID,
		Status:    "SUCCESS",
		Details:   map[string]string{"invoice_number": number, "total_amount": total},
	})
}

func (a *Logger) LogStatusChange(accountID, invoiceID, from, to string) {
	a.Log(Event{
		EventType: EventStatusChanged,
		AccountID: accountID,
		Subject:   invoiceID,
		Status:    "SUCCESS",
		Details:   map[string]string{"from": from, "to": to},
	})
}

// LogSequenceGap records an invoice number that was allocated but whose
// invoice was never stored.
func (a *Logger) LogSequenceGap(accountID, number string, cause error) {
	a.Log(Event{
		EventType: EventSequenceGap,
		AccountID: accountID,
		Subject:   number,
		Status:    "FAILED",
		Details:   map[string]string{"error": cause.Error()},
	})
}

func (a *Logger) LogOperation(accountID, operation string) {
	a.Log(Event{EventType: operation, AccountID: accountID, Status: "SUCCESS"})
}

func (a *Logger) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = a.now()
	}
	fields := []any{
		"event_type", event.EventType,
		"status", event.Status,
		"event_time", event.Timestamp.UTC(),
	}
	if event.AccountID != "" {
		fields = append(fields, "account_id", event.AccountID)
	}
	if event.Subject != "" {
		fields = append(fields, "subject", event.Subject)
	}
	for k, v := range event.Details {
		fields = append(fields, k, v)
	}

	if event.Status == "FAILED" {
		a.log.Warnw("AUDIT", fields...)
		return
	}
	a.log.Infow("AUDIT", fields...)
}
