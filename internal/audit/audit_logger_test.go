package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/minidebet/backend/internal/logger"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLogger(&logger.Logger{SugaredLogger: zap.New(core).Sugar()})
	l.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return l, logs
}

func TestLogger_SequenceGap(t *testing.T) {
	l, logs := newObserved()

	l.LogSequenceGap("acc-1", "INV-4", errors.New("disk full"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "audit", entry.LoggerName)

	fields := entry.ContextMap()
	assert.Equal(t, EventSequenceGap, fields["event_type"])
	assert.Equal(t, "acc-1", fields["account_id"])
	assert.Equal(t, "INV-4", fields["subject"])
	assert.Equal(t, "disk full", fields["error"])
}

func TestLogger_LoginFailedOmitsSecrets(t *testing.T) {
	l, logs := newObserved()

	l.LogLoginFailed("a@x.com", "10.0.0.1:1234")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "a@x.com", fields["email"])
	assert.NotContains(t, fields, "password")
}

func TestLogger_SuccessIsInfo(t *testing.T) {
	l, logs := newObserved()

	l.LogInvoiceCreated("acc-1", "inv-1", "INV-1", "29.75")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)
	assert.Equal(t, "29.75", logs.All()[0].ContextMap()["total_amount"])
}
