package repositories

import (
	"context"

	"github.com/wrenchwise/backend/internal/domain/entities"
)

// ReviewRepository defines the interface for review operations
type ReviewRepository interface {
	// Create creates a new review. A second review by the same user for the same mechanic is a conflict.
	Create(ctx context.Context, review *entities.Review) error

	// ListByMechanic retrieves reviews for a mechanic, newest first
	ListByMechanic(ctx context.Context, mechanicID string, page Page) ([]*entities.Review, error)
}
