package entities

import "time"

// Review is a customer's rating of a mechanic
type Review struct {
	ID            string          `json:"id" db:"id"`
	UserID        string          `json:"user_id" db:"user_id"`
	MechanicID    string          `json:"mechanic_id" db:"mechanic_id" validate:"required"`
	Rating        int             `json:"rating" db:"rating" validate:"min=1,max=5"`
	Title         string          `json:"title" db:"title" validate:"required,max=200"`
	Content       string          `json:"content" db:"content" validate:"required,max=5000"`
	Photos        []string        `json:"photos" db:"-" validate:"max=10,dive,url"`
	ServiceType   ServiceCategory `json:"service_type" db:"service_type" validate:"enum"`
	IsRecommended bool            `json:"is_recommended" db:"is_recommended"`
	AISummary     *string         `json:"ai_summary,omitempty" db:"ai_summary"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`

	// Author display fields, filled on read
	UserName         string  `json:"user_name" db:"-"`
	UserProfileImage *string `json:"user_profile_image,omitempty" db:"-"`
}

// RatingStats aggregates the stored ratings of one mechanic
type RatingStats struct {
	Sum   int
	Count int
}
