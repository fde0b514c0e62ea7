package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to InvoiceStatus
		want     bool
	}{
		{InvoiceStatusDraft, InvoiceStatusSent, true},
		{InvoiceStatusSent, InvoiceStatusPaid, true},
		{InvoiceStatusDraft, InvoiceStatusPaid, true},
		{InvoiceStatusSent, InvoiceStatusDraft, false},
		{InvoiceStatusPaid, InvoiceStatusSent, false},
		{InvoiceStatusPaid, InvoiceStatusDraft, false},
		{InvoiceStatusDraft, InvoiceStatusDraft, false},
		{InvoiceStatusDraft, InvoiceStatus("void"), false},
		{InvoiceStatus("void"), InvoiceStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestDate(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var payload struct {
			Issue Date `json:"issue"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"issue":"2024-03-01"}`), &payload))
		assert.Equal(t, "2024-03-01", payload.Issue.String())

		out, err := json.Marshal(payload)
		require.NoError(t, err)
		assert.JSONEq(t, `{"issue":"2024-03-01"}`, string(out))
	})

	t.Run("rejects other layouts", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`"01.03.2024"`), &d))
	})

	t.Run("scan", func(t *testing.T) {
		var d Date
		require.NoError(t, d.Scan(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, "2024-03-01", d.String())

		require.NoError(t, d.Scan("2024-12-31 00:00:00+00:00"))
		assert.Equal(t, "2024-12-31", d.String())

		require.NoError(t, d.Scan([]byte("2025-01-02")))
		assert.Equal(t, "2025-01-02", d.String())

		assert.Error(t, d.Scan(42))
	})

	t.Run("add days and compare", func(t *testing.T) {
		issue, err := ParseDate("2024-02-20")
		require.NoError(t, err)
		due := issue.AddDays(14)
		assert.Equal(t, "2024-03-05", due.String())
		assert.True(t, issue.Before(due))
		assert.False(t, due.Before(issue))
	})
}
