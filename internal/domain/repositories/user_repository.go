package repositories

import (
	"context"

	"github.com/wrenchwise/backend/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create stores a new user together with its password hash
	Create(ctx context.Context, user *entities.User, passwordHash string) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByIDs retrieves several users; missing ids are skipped
	GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error)

	// GetCredentialsByEmail retrieves the user and stored hash for sign in
	GetCredentialsByEmail(ctx context.Context, email string) (*entities.Credentials, error)
}
