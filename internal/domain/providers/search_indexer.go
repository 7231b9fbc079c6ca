package providers

import (
	"context"

	"github.com/wrenchwise/backend/internal/domain/entities"
)

// MechanicIndexer keeps the search index in step with stored mechanics
type MechanicIndexer interface {
	Index(ctx context.Context, mechanic *entities.Mechanic) error
}
