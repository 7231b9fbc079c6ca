package repositories

import (
	"context"

	"github.com/wrenchwise/backend/internal/domain/entities"
)

// PostRepository defines the interface for community feed storage
type PostRepository interface {
	Create(ctx context.Context, post *entities.Post) error
	GetByID(ctx context.Context, id string) (*entities.Post, error)

	// List returns posts newest first, optionally of a single type
	List(ctx context.Context, postType *entities.PostType, page Page) ([]*entities.Post, error)

	// IncrementLikes adds one like and returns the new total
	IncrementLikes(ctx context.Context, id string) (int, error)

	AddComment(ctx context.Context, comment *entities.Comment) error

	// CommentsFor returns comments grouped by post id, oldest first
	CommentsFor(ctx context.Context, postIDs []string) (map[string][]entities.Comment, error)
}
