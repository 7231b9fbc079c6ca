package repositories

import (
	"context"

	"github.com/wrenchwise/backend/internal/domain/entities"
)

// BookingRepository defines the interface for booking request storage
type BookingRepository interface {
	Create(ctx context.Context, booking *entities.BookingRequest) error
	GetByID(ctx context.Context, id string) (*entities.BookingRequest, error)

	// UpdateStatus moves a booking from one status to another.
	// It fails with a conflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to entities.BookingStatus) (*entities.BookingRequest, error)

	// ListForUser returns bookings the user requested or that target a mechanic the user owns, newest first
	ListForUser(ctx context.Context, userID string, page Page) ([]*entities.BookingRequest, error)
}
