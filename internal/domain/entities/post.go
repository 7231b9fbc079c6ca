package entities

import "time"

// Post is a community feed entry, optionally about a mechanic
type Post struct {
	ID         string    `json:"id" db:"id"`
	AuthorID   string    `json:"author_id" db:"author_id"`
	MechanicID *string   `json:"mechanic_id,omitempty" db:"mechanic_id"`
	Content    string    `json:"content" db:"content" validate:"required,max=5000"`
	Photos     []string  `json:"photos" db:"-" validate:"max=10,dive,url"`
	PostType   PostType  `json:"post_type" db:"post_type" validate:"enum"`
	Likes      int       `json:"likes" db:"likes"`
	Comments   []Comment `json:"comments" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	AuthorName         string    `json:"author_name" db:"-"`
	AuthorProfileImage *string   `json:"author_profile_image,omitempty" db:"-"`
	MechanicInfo       *Mechanic `json:"mechanic_info,omitempty" db:"-"`
}

// Comment is a reply to a post
type Comment struct {
	ID        string    `json:"id" db:"id"`
	PostID    string    `json:"post_id" db:"post_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Content   string    `json:"content" db:"content" validate:"required,max=2000"`
	Likes     int       `json:"likes" db:"likes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	UserName         string  `json:"user_name" db:"-"`
	UserProfileImage *string `json:"user_profile_image,omitempty" db:"-"`
}
