package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/minidebet/backend/internal/config"
	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/models"
	"github.com/minidebet/backend/internal/services"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Authenticate(ctx context.Context, token string) (*services.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Claims), args.Error(1)
}

func protected(t *testing.T, verifier TokenVerifier) (http.Handler, *bool) {
	called := false
	h := Auth(verifier, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(claims.AccountID))
	}))
	return h, &called
}

func TestAuth_RejectsWithoutCallingHandler(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Authenticate", mock.Anything, "bad").
		Return(nil, ierr.NewError("bad token").Mark(ierr.ErrUnauthenticated))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic Zm9vOmJhcg=="},
		{"empty token", "Bearer "},
		{"no separator", "Bearertoken"},
		{"invalid token", "Bearer bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, called := protected(t, verifier)
			r := httptest.NewRequest(http.MethodGet, "/invoices", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, *called)
			assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")

			var body services.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Invalid or expired token", body.Error)
		})
	}
}

func TestAuth_PassesClaims(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Authenticate", mock.Anything, "good").
		Return(&services.Claims{AccountID: "acc-1", Email: "a@x.com"}, nil)

	h, called := protected(t, verifier)
	r := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	r.Header.Set("Authorization", "bearer good")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *called)
	assert.Equal(t, "acc-1", w.Body.String())
}

func TestAuth_BackendFailure(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Authenticate", mock.Anything, "tok").
		Return(nil, ierr.WithError(errors.New("redis down")).Mark(ierr.ErrInternal))

	h, called := protected(t, verifier)
	r := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	r.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, *called)
}

func TestAuth_WithTokenService(t *testing.T) {
	tokens := services.NewTokenService(config.AuthConfig{SecretKey: "middleware-secret-0123", TokenValidity: time.Hour}, nil, nil)
	token, _, err := tokens.Issue(&models.Account{ID: "acc-7", Email: "x@y.z"})
	require.NoError(t, err)

	h, called := protected(t, tokens)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *called)
	assert.Equal(t, "acc-7", w.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)
	r.Header.Set("Authorization", "Bearer secret-token")
	h.ServeHTTP(httptest.NewRecorder(), r)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, int64(http.StatusConflict), fields["status"])
	assert.Equal(t, "/api/v1/auth/register", fields["path"])
	for _, v := range fields {
		assert.NotEqual(t, "Bearer secret-token", v)
	}
}
