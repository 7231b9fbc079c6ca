package entities

import "time"

// BookingRequest asks a mechanic to perform a service
type BookingRequest struct {
	ID            string          `json:"id" db:"id"`
	UserID        string          `json:"user_id" db:"user_id"`
	MechanicID    string          `json:"mechanic_id" db:"mechanic_id" validate:"required"`
	ServiceType   ServiceCategory `json:"service_type" db:"service_type" validate:"enum"`
	Description   string          `json:"description" db:"description" validate:"required,max=4000"`
	PreferredDate *time.Time      `json:"preferred_date,omitempty" db:"preferred_date"`
	Urgency       UrgencyLevel    `json:"urgency" db:"urgency" validate:"enum"`
	Status        BookingStatus   `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
