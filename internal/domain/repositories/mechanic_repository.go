package repositories

import (
	"context"

	"github.com/wrenchwise/backend/internal/domain/entities"
)

// MechanicRepository defines the interface for mechanic data operations
type MechanicRepository interface {
	// Create creates a new mechanic listing
	Create(ctx context.Context, mechanic *entities.Mechanic) error

	// GetByID retrieves a mechanic by ID
	GetByID(ctx context.Context, id string) (*entities.Mechanic, error)

	// GetByIDs retrieves multiple mechanics by their IDs, preserving the order of ids
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Mechanic, error)

	// List retrieves candidate mechanics for discovery
	List(ctx context.Context, filter MechanicFilter) ([]*entities.Mechanic, error)

	// RecomputeTrustScore aggregates the mechanic's reviews and stores the score
	// and review count atomically
	RecomputeTrustScore(ctx context.Context, id string, score TrustScorer) error
}

// TrustScorer maps a rating sum and count to a trust score
type TrustScorer func(sum, count int) float64

// MechanicSearchRepository defines the full-text index over mechanics (Typesense)
type MechanicSearchRepository interface {
	// Search returns matching mechanic ids in relevance order
	Search(ctx context.Context, params MechanicSearchParams) (*MechanicSearchResult, error)

	// Index upserts a mechanic document
	Index(ctx context.Context, mechanic *entities.Mechanic) error

	// Delete removes a mechanic from the index
	Delete(ctx context.Context, id string) error
}

// MechanicFilter narrows the candidate set loaded from storage. Limit and Offset
// page through it in ranking order; a zero Limit loads every match.
type MechanicFilter struct {
	Category *entities.ServiceCategory
	Bounds   *BoundingBox
	Limit    int
	Offset   int
}

// BoundingBox is a latitude/longitude rectangle used to pre-filter by distance
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// MechanicSearchParams is a full-text query
type MechanicSearchParams struct {
	Query    string
	Category *entities.ServiceCategory
	Limit    int
	Offset   int
}

// MechanicSearchResult holds ids in index order
type MechanicSearchResult struct {
	IDs   []string
	Found int
}
