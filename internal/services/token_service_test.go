package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minidebet/backend/internal/config"
	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/models"
)

const testSecret = "test-secret-key-0123456789"

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestTokenService(clock *fakeClock, revocations RevocationList) *TokenService {
	s := NewTokenService(config.AuthConfig{SecretKey: testSecret, TokenValidity: time.Hour}, revocations, nil)
	s.now = clock.Now
	return s
}

func testAccount() *models.Account {
	return &models.Account{ID: "acc-1", Email: "a@x.com"}
}

func TestTokenService_IssueVerify(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestTokenService(clock, NewMemoryRevocationList())

	token, issued, err := s.Issue(testAccount())
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(time.Hour), issued.ExpiresAt)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.True(t, claims.ExpiresAt.Equal(issued.ExpiresAt))
	assert.NotEmpty(t, claims.TokenID)

	t.Run("valid until just before expiry", func(t *testing.T) {
		clock.Advance(59*time.Minute + 59*time.Second)
		_, err := s.Verify(token)
		assert.NoError(t, err)
	})

	t.Run("rejected at expiry", func(t *testing.T) {
		clock.t = issued.ExpiresAt
		_, err := s.Verify(token)
		require.Error(t, err)
		assert.True(t, ierr.IsUnauthenticated(err))
	})

	t.Run("rejected after expiry", func(t *testing.T) {
		clock.Advance(time.Hour)
		_, err := s.Verify(token)
		assert.True(t, ierr.IsUnauthenticated(err))
	})
}

func TestTokenService_VerifyRejects(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newTestTokenService(clock, nil)
	token, _, err := s.Issue(testAccount())
	require.NoError(t, err)

	other := NewTokenService(config.AuthConfig{SecretKey: "another-secret-0123456789", TokenValidity: time.Hour}, nil, nil)
	foreign, _, err := other.Issue(testAccount())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "acc-1", "email": "a@x.com"})
	noExpToken, err := noExp.SignedString([]byte(testSecret))
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "acc-1", "exp": time.Now().Add(time.Hour).Unix()})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"bad signature", tampered},
		{"other secret", foreign},
		{"missing expiry", noExpToken},
		{"unsigned", noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Verify(tt.token)
			require.Error(t, err)
			assert.True(t, ierr.IsUnauthenticated(err))
		})
	}
}

func TestTokenService_Revocation(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	s := newTestTokenService(clock, NewMemoryRevocationList())

	token, _, err := s.Issue(testAccount())
	require.NoError(t, err)

	claims, err := s.Authenticate(ctx, token)
	require.NoError(t, err)

	require.NoError(t, s.Revoke(ctx, claims))

	_, err = s.Authenticate(ctx, token)
	require.Error(t, err)
	assert.True(t, ierr.IsUnauthenticated(err))

	// signature and expiry alone still check out
	_, err = s.Verify(token)
	assert.NoError(t, err)
}
