package services

import (
	"context"
	"strings"
	"time"

	"github.com/minidebet/backend/internal/audit"
	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/metrics"
	"github.com/minidebet/backend/internal/models"
)

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Email    string
	Password string
	Profile  models.Profile
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *models.Account
}

type AuthService struct {
	accounts AccountRepository
	hasher   PasswordHasher
	tokens   *TokenService
	defaults models.SettingsDefaults
	audit    *audit.Logger
	metrics  *metrics.Metrics
	logger   *logger.Logger

	// compared against when the email is unknown so both failure paths
	// pay for one bcrypt comparison
	dummyDigest string
}

func NewAuthService(
	accounts AccountRepository,
	hasher PasswordHasher,
	tokens *TokenService,
	defaults models.SettingsDefaults,
	auditLog *audit.Logger,
	m *metrics.Metrics,
	log *logger.Logger,
) *AuthService {
	if log == nil {
		log = logger.NewNop()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(log)
	}
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		log.Warnw("[AUTH] could not prepare dummy digest", "error", err)
	}
	return &AuthService{
		accounts:    accounts,
		hasher:      hasher,
		tokens:      tokens,
		defaults:    defaults,
		audit:       auditLog,
		metrics:     m,
		logger:      log,
		dummyDigest: dummy,
	}
}

// Register creates an account with default settings. A duplicate email,
// compared without regard to case, is a Conflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.metrics.RecordRegistration(metrics.ResultFailure)
		return nil, err
	}

	account, err := s.accounts.Create(ctx, email, digest, in.Profile, s.defaults)
	if err != nil {
		if ierr.IsConflict(err) {
			s.metrics.RecordRegistration(metrics.ResultConflict)
			s.logger.Infow("[AUTH] registration rejected, email taken")
		} else {
			s.metrics.RecordRegistration(metrics.ResultFailure)
		}
		return nil, err
	}

	s.metrics.RecordRegistration(metrics.ResultSuccess)
	s.audit.LogRegistration(account.ID)
	s.logger.Infow("[AUTH] account registered", "account_id", account.ID)
	return account, nil
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password, remoteAddr string) (*LoginResult, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if account == nil {
		if s.dummyDigest != "" {
			_, _ = s.hasher.Verify(password, s.dummyDigest)
		}
		return nil, s.loginFailed(email, remoteAddr)
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		s.logger.Errorw("[AUTH] stored digest unusable", "account_id", account.ID, "error", err)
		return nil, err
	}
	if !ok {
		return nil, s.loginFailed(email, remoteAddr)
	}

	token, claims, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(metrics.ResultSuccess)
	s.logger.Infow("[AUTH] login successful", "account_id", account.ID)
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt, Account: account}, nil
}

func (s *AuthService) loginFailed(email, remoteAddr string) error {
	s.metrics.RecordLogin(metrics.ResultFailure)
	s.audit.LogLoginFailed(strings.ToLower(strings.TrimSpace(email)), remoteAddr)
	return ierr.NewError("bad credentials").
		WithHint("Invalid credentials").
		Mark(ierr.ErrUnauthenticated)
}

// Me returns the account behind the session.
func (s *AuthService) Me(ctx context.Context, accountID string) (*models.Account, error) {
	return s.accounts.FindByID(ctx, accountID)
}

// ChangePassword replaces the digest after checking the current password.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, current, next string) error {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(current, account.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ierr.NewError("current password mismatch").
			WithHint("Current password is incorrect").
			Mark(ierr.ErrValidation)
	}

	digest, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePasswordHash(ctx, accountID, digest); err != nil {
		return err
	}

	s.audit.LogOperation(accountID, audit.EventPasswordChanged)
	return nil
}

// Logout revokes the presented token.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return err
	}
	s.audit.LogOperation(claims.AccountID, audit.EventLogout)
	return nil
}
