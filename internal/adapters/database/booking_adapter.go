package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

const bookingSelect = `SELECT id, user_id, mechanic_id, service_type, description, preferred_date, urgency, status, created_at, updated_at`

// BookingAdapter implements BookingRepository
type BookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a booking request
func (a *BookingAdapter) Create(ctx context.Context, booking *entities.BookingRequest) error {
	record := goqu.Record{
		"id":             booking.ID,
		"user_id":        booking.UserID,
		"mechanic_id":    booking.MechanicID,
		"service_type":   string(booking.ServiceType),
		"description":    booking.Description,
		"preferred_date": nullTime(booking.PreferredDate),
		"urgency":        string(booking.Urgency),
		"status":         string(booking.Status),
		"created_at":     booking.CreatedAt,
		"updated_at":     booking.UpdatedAt,
	}

	query, args, err := a.db.Insert("booking_requests").Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build booking insert query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		err = translateError(err, "booking not found", "failed to create booking")
		if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			return apperrors.NewNotFoundError("mechanic not found")
		}
		return err
	}
	return nil
}

// GetByID retrieves a booking request
func (a *BookingAdapter) GetByID(ctx context.Context, id string) (*entities.BookingRequest, error) {
	query := bookingSelect + ` FROM booking_requests WHERE id = $1`
	booking, err := scanBooking(a.client.DB().QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "booking not found", "failed to get booking")
	}
	return booking, nil
}

// UpdateStatus performs a compare-and-set on the status column
func (a *BookingAdapter) UpdateStatus(ctx context.Context, id string, from, to entities.BookingStatus) (*entities.BookingRequest, error) {
	query := `UPDATE booking_requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4
		RETURNING id, user_id, mechanic_id, service_type, description, preferred_date, urgency, status, created_at, updated_at`
	booking, err := scanBooking(a.client.DB().QueryRowContext(ctx, query, string(to), time.Now().UTC(), id, string(from)))
	if err == nil {
		return booking, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, translateError(err, "booking not found", "failed to update booking")
	}

	// No row matched: either the booking is gone or its status moved on.
	current, getErr := a.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, apperrors.NewConflictError(fmt.Sprintf("booking is %s, not %s", current.Status, from))
}

// ListForUser returns bookings the user made or received as a mechanic owner
func (a *BookingAdapter) ListForUser(ctx context.Context, userID string, page repositories.Page) ([]*entities.BookingRequest, error) {
	query := bookingSelect + ` FROM booking_requests
		WHERE user_id = $1 OR mechanic_id IN (SELECT id FROM mechanics WHERE user_id = $1)
		ORDER BY created_at DESC, id ASC
		LIMIT $2 OFFSET $3`
	rows, err := a.client.DB().QueryContext(ctx, query, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, translateError(err, "bookings not found", "failed to list bookings")
	}
	defer rows.Close()

	bookings := []*entities.BookingRequest{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, translateError(err, "bookings not found", "failed to scan booking")
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "bookings not found", "failed to iterate bookings")
	}
	return bookings, nil
}

func scanBooking(row rowScanner) (*entities.BookingRequest, error) {
	var (
		b                             entities.BookingRequest
		preferred                     sql.NullTime
		service, urgency, statusValue string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.MechanicID, &service, &b.Description, &preferred,
		&urgency, &statusValue, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if preferred.Valid {
		t := preferred.Time
		b.PreferredDate = &t
	}
	b.ServiceType = entities.ServiceCategory(service)
	b.Urgency = entities.UrgencyLevel(urgency)
	b.Status = entities.BookingStatus(statusValue)
	return &b, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
