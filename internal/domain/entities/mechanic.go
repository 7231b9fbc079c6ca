package entities

import (
	"fmt"
	"time"
)

// Mechanic represents a repair business listed on WrenchWise
type Mechanic struct {
	ID           string      `json:"id" db:"id"`
	UserID       string      `json:"user_id" db:"user_id"`
	BusinessName string      `json:"business_name" db:"business_name" validate:"required,max=160"`
	Description  string      `json:"description" db:"description"`
	Services     []Service   `json:"services" db:"-" validate:"dive"`
	Location     Location    `json:"location" db:"-"`
	TrustScore   float64     `json:"trust_score" db:"trust_score"` // stored value; presentation clamps to [1,10]
	TotalReviews int         `json:"total_reviews" db:"total_reviews"`
	Photos       []string    `json:"photos" db:"-"`
	ContactInfo  ContactInfo `json:"contact_info" db:"-"`
	IsVerified   bool        `json:"is_verified" db:"is_verified"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// HasCategory reports whether any service offered is in category c
func (m *Mechanic) HasCategory(c ServiceCategory) bool {
	for _, s := range m.Services {
		if s.Category == c {
			return true
		}
	}
	return false
}

// Categories returns the distinct categories offered, in service order
func (m *Mechanic) Categories() []ServiceCategory {
	seen := make(map[ServiceCategory]bool, len(m.Services))
	out := make([]ServiceCategory, 0, len(m.Services))
	for _, s := range m.Services {
		if !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	return out
}

// Service is a single offering of a mechanic
type Service struct {
	ID             string          `json:"id"`
	Name           string          `json:"name" validate:"required"`
	Description    string          `json:"description"`
	EstimatedPrice *PriceRange     `json:"estimated_price,omitempty"`
	Category       ServiceCategory `json:"category" validate:"enum"`
}

// PriceRange is an estimated price band in dollars
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Valid reports whether 0 <= Min <= Max
func (p PriceRange) Valid() bool {
	return p.Min >= 0 && p.Min <= p.Max
}

// DisplayString renders the range as "$45 - $75"
func (p PriceRange) DisplayString() string {
	return fmt.Sprintf("$%d - $%d", int(p.Min), int(p.Max))
}

// Location is a street address with coordinates
type Location struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zip_code"`
}

// ContactInfo holds optional contact channels and opening hours
type ContactInfo struct {
	Phone        *string        `json:"phone,omitempty"`
	Email        *string        `json:"email,omitempty"`
	Website      *string        `json:"website,omitempty"`
	WorkingHours []WorkingHours `json:"working_hours"`
}

// WorkingHours is the opening window for a single day
type WorkingHours struct {
	Day       string `json:"day"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	IsClosed  bool   `json:"is_closed"`
}
