package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/minidebet/backend/internal/config"
	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/models"
)

// Claims is the verified content of a session token.
type Claims struct {
	AccountID string
	Email     string
	ExpiresAt time.Time
	TokenID   string
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens. The signing secret
// is fixed for the life of the process.
type TokenService struct {
	secret      []byte
	validity    time.Duration
	revocations RevocationList
	logger      *logger.Logger
	now         func() time.Time
}

func NewTokenService(cfg config.AuthConfig, revocations RevocationList, log *logger.Logger) *TokenService {
	if revocations == nil {
		revocations = NewMemoryRevocationList()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &TokenService{
		secret:      []byte(cfg.SecretKey),
		validity:    cfg.TokenValidity,
		revocations: revocations,
		logger:      log,
		now:         time.Now,
	}
}

// Issue signs a token for account that expires exactly one validity window
// from now.
func (s *TokenService) Issue(account *models.Account) (string, *Claims, error) {
	issuedAt := s.now().Truncate(time.Second)
	claims := &Claims{
		AccountID: account.ID,
		Email:     account.Email,
		ExpiresAt: issuedAt.Add(s.validity),
		TokenID:   uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email: claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.AccountID,
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        claims.TokenID,
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, ierr.WithError(err).
			WithHint("Failed to generate token").
			Mark(ierr.ErrInternal)
	}
	return signed, claims, nil
}

// Verify checks encoding, signature and expiry. A token is rejected once
// its expiry is not after now.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	var sc sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &sc, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, unauthenticated(err)
	}
	if sc.Subject == "" || sc.ExpiresAt == nil {
		return nil, unauthenticated(nil)
	}

	return &Claims{
		AccountID: sc.Subject,
		Email:     sc.Email,
		ExpiresAt: sc.ExpiresAt.Time,
		TokenID:   sc.ID,
	}, nil
}

// Authenticate verifies the token and rejects it if it has been revoked.
func (s *TokenService) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenID == "" {
		return claims, nil
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to check token revocation").
			Mark(ierr.ErrInternal)
	}
	if revoked {
		return nil, unauthenticated(nil)
	}
	return claims, nil
}

// Revoke blocks the token until it expires.
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	if claims.TokenID == "" {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to revoke token").
			Mark(ierr.ErrInternal)
	}
	return nil
}

func unauthenticated(cause error) error {
	b := ierr.NewError("invalid session token")
	if cause != nil {
		b = b.WithMessage(cause.Error())
	}
	return b.WithHint("Invalid or expired token").Mark(ierr.ErrUnauthenticated)
}
