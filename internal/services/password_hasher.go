package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	ierr "github.com/minidebet/backend/internal/errors"
)

// BcryptHasher hashes passwords with bcrypt. Every digest carries its own
// random salt and the configured cost.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ierr.WithError(err).
				WithHint("Password must be at most 72 bytes").
				Mark(ierr.ErrValidation)
		}
		return "", ierr.WithError(err).
			WithHint("Failed to hash password").
			Mark(ierr.ErrInternal)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A digest that is not a
// valid bcrypt encoding is an error, not a mismatch.
func (h *BcryptHasher) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ierr.WithError(err).
			WithHint("Stored password digest is malformed").
			Mark(ierr.ErrMalformedDigest)
	}
}
