package entities

import (
	"strings"
	"time"
)

// User is an account holder: a vehicle owner or a mechanic's owner account
type User struct {
	ID              string    `json:"id" db:"id"`
	Email           string    `json:"email" db:"email" validate:"required,email"`
	Name            string    `json:"name" db:"name" validate:"required,max=120"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty" db:"profile_image_url" validate:"omitempty,url"`
	Location        *Location `json:"location,omitempty" db:"-"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Credentials pairs a user with the stored password hash. Never serialized.
type Credentials struct {
	User         *User
	PasswordHash string
}

// DefaultDisplayName derives a name from the local part of an email address
func DefaultDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return email
	}
	return local
}

// UserSummary is the denormalized author/participant information shown next to content
type UserSummary struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// Summary returns the display subset of u
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, ProfileImageURL: u.ProfileImageURL}
}
