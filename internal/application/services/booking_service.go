package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
	"github.com/wrenchwise/backend/pkg/config"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
	"github.com/wrenchwise/backend/pkg/validation"
)

// BookingService handles booking requests between customers and mechanics
type BookingService struct {
	bookings   repositories.BookingRepository
	mechanics  repositories.MechanicRepository
	bus        providers.EventBus
	metrics    *observability.Metrics
	pagination config.PaginationConfig
	validate   *validator.Validate
	now        func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookings repositories.BookingRepository,
	mechanics repositories.MechanicRepository,
	bus providers.EventBus,
	metrics *observability.Metrics,
	pagination config.PaginationConfig,
) *BookingService {
	return &BookingService{
		bookings:   bookings,
		mechanics:  mechanics,
		bus:        bus,
		metrics:    metrics,
		pagination: pagination,
		validate:   validation.New(),
		now:        time.Now,
	}
}

// CreateBookingRequest stores a pending request from userID and notifies both parties
func (s *BookingService) CreateBookingRequest(ctx context.Context, userID string, booking *entities.BookingRequest) (*entities.BookingRequest, error) {
	ctx, span := observability.StartSpan(ctx, "BookingService.CreateBookingRequest")
	defer span.End()

	booking.UserID = userID
	if booking.Urgency == "" {
		booking.Urgency = entities.UrgencyMedium
	}
	if err := validation.Struct(s.validate, booking); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if booking.PreferredDate != nil {
		today := now.Truncate(24 * time.Hour)
		if booking.PreferredDate.UTC().Before(today) {
			return nil, apperrors.NewValidationError("preferred_date must not be in the past")
		}
	}

	mechanic, err := s.mechanics.GetByID(ctx, booking.MechanicID)
	if err != nil {
		return nil, err
	}

	booking.ID = uuid.New().String()
	booking.Status = entities.BookingStatusPending
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if err := s.bookings.Create(ctx, booking); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.SetSpanAttributes(span,
		attribute.String("mechanic.id", booking.MechanicID),
		attribute.String("booking.urgency", string(booking.Urgency)),
	)
	if s.metrics != nil {
		observability.RecordCount(ctx, s.metrics.BookingsCreated, attribute.String("booking.service_type", string(booking.ServiceType)))
	}

	s.notify(ctx, entities.LiveEventBookingCreated, booking, mechanic.UserID)
	return booking, nil
}

// UpdateBookingStatus moves a booking along its lifecycle. The mechanic's owner may
// accept, decline or complete; the requester may cancel.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, userID, bookingID string, next entities.BookingStatus) (*entities.BookingRequest, error) {
	ctx, span := observability.StartSpan(ctx, "BookingService.UpdateBookingStatus")
	defer span.End()

	if !next.Valid() {
		return nil, apperrors.NewValidationError("unknown booking status " + string(next))
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	mechanic, err := s.mechanics.GetByID(ctx, booking.MechanicID)
	if err != nil {
		return nil, err
	}

	isOwner := mechanic.UserID != "" && mechanic.UserID == userID
	isRequester := booking.UserID == userID
	switch next {
	case entities.BookingStatusCancelled:
		if !isRequester {
			return nil, apperrors.NewForbiddenError("only the requester may cancel a booking")
		}
	default:
		if !isOwner {
			return nil, apperrors.NewForbiddenError("only the mechanic may " + verbFor(next) + " a booking")
		}
	}

	if !booking.Status.CanTransitionTo(next) {
		return nil, apperrors.NewValidationError("cannot move booking from " + string(booking.Status) + " to " + string(next))
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, booking.Status, next)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.notify(ctx, entities.LiveEventBookingUpdated, updated, mechanic.UserID)
	return updated, nil
}

// FetchBookings returns bookings userID requested or received, newest first
func (s *BookingService) FetchBookings(ctx context.Context, userID string, page repositories.Page) ([]*entities.BookingRequest, error) {
	page = page.Normalize(s.pagination.DefaultLimit, s.pagination.MaxLimit)
	return s.bookings.ListForUser(ctx, userID, page)
}

func (s *BookingService) notify(ctx context.Context, eventType entities.LiveEventType, booking *entities.BookingRequest, ownerID string) {
	channels := []string{providers.GetUserBookingsChannel(booking.UserID)}
	if ownerID != "" && ownerID != booking.UserID {
		channels = append(channels, providers.GetUserBookingsChannel(ownerID))
	}
	publish(ctx, s.bus, eventType, booking.ID, booking, channels...)
}

func verbFor(status entities.BookingStatus) string {
	switch status {
	case entities.BookingStatusAccepted:
		return "accept"
	case entities.BookingStatusDeclined:
		return "decline"
	case entities.BookingStatusCompleted:
		return "complete"
	}
	return "update"
}
