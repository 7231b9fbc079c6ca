package entities

import "time"

// Message is a single chat message between two users
type Message struct {
	ID             string      `json:"id" db:"id"`
	ConversationID string      `json:"conversation_id" db:"conversation_id"`
	SenderID       string      `json:"sender_id" db:"sender_id"`
	ReceiverID     string      `json:"receiver_id" db:"receiver_id"`
	Content        string      `json:"content" db:"content" validate:"required,max=4000"`
	MessageType    MessageType `json:"message_type" db:"message_type" validate:"enum"`
	IsRead         bool        `json:"is_read" db:"is_read"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`

	SenderName         string  `json:"sender_name" db:"-"`
	SenderProfileImage *string `json:"sender_profile_image,omitempty" db:"-"`
}

// Conversation is a two-party message thread
type Conversation struct {
	ID           string    `json:"id" db:"id"`
	Participants []string  `json:"participants" db:"-"`
	LastMessage  *Message  `json:"last_message,omitempty" db:"-"`
	UnreadCount  int       `json:"unread_count" db:"-"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	OtherParticipantName  string  `json:"other_participant_name" db:"-"`
	OtherParticipantImage *string `json:"other_participant_image,omitempty" db:"-"`
}

// HasParticipant reports whether userID takes part in the conversation
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant that is not userID, or "" if none
func (c *Conversation) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}
