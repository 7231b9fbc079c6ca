package handlers

import (
	"context"
	"net/http"

	"github.com/wrenchwise/backend/internal/api/middleware"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
)

// BookingManager is the booking API used by BookingHandler
type BookingManager interface {
	CreateBookingRequest(ctx context.Context, userID string, booking *entities.BookingRequest) (*entities.BookingRequest, error)
	UpdateBookingStatus(ctx context.Context, userID, bookingID string, next entities.BookingStatus) (*entities.BookingRequest, error)
	FetchBookings(ctx context.Context, userID string, page repositories.Page) ([]*entities.BookingRequest, error)
}

// BookingHandler handles booking request endpoints
type BookingHandler struct {
	bookings BookingManager
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings BookingManager) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type statusUpdateRequest struct {
	Status entities.BookingStatus `json:"status"`
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var booking entities.BookingRequest
	if err := decodeJSON(r, &booking); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	created, err := h.bookings.CreateBookingRequest(r.Context(), middleware.UserID(r.Context()), &booking)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// ListBookings handles GET /api/bookings. It returns bookings the caller requested
// and bookings made with mechanics the caller owns.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.FetchBookings(r.Context(), middleware.UserID(r.Context()), pageFromQuery(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// UpdateStatus handles PATCH /api/bookings/{id}/status
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if req.Status == "" {
		respondWithError(w, http.StatusBadRequest, "status is required")
		return
	}

	booking, err := h.bookings.UpdateBookingStatus(r.Context(), middleware.UserID(r.Context()), r.PathValue("id"), req.Status)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}
