package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/wrenchwise/backend/internal/domain/providers"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

// BcryptHasher hashes passwords with bcrypt
type BcryptHasher struct {
	cost int
}

var _ providers.PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher; costs outside bcrypt's range fall back to the default
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of password
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.NewValidationError("password is too long")
		}
		return "", apperrors.NewInternalError("failed to hash password", err)
	}
	return string(hash), nil
}

// Compare returns an INVALID_CREDENTIALS error when password does not match hash
func (h *BcryptHasher) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return apperrors.NewInvalidCredentialsError("invalid email or password")
	}
	return nil
}
