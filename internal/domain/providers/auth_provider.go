package providers

import (
	"errors"
	"time"

	"github.com/wrenchwise/backend/internal/domain/entities"
)

// ErrTokenExpired is wrapped by Parse errors for tokens past their expiry
var ErrTokenExpired = errors.New("token expired")

// TokenClaims is the verified content of a session token
type TokenClaims struct {
	UserID    string
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies session tokens
type TokenIssuer interface {
	Issue(user *entities.User) (token string, claims *TokenClaims, err error)

	// Parse verifies signature and expiry
	Parse(token string) (*TokenClaims, error)
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Compare returns nil when password matches hash
	Compare(hash, password string) error
}
