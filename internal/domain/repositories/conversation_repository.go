package repositories

import (
	"context"
	"time"

	"github.com/wrenchwise/backend/internal/domain/entities"
)

// ConversationRepository defines the interface for conversation threads
type ConversationRepository interface {
	Create(ctx context.Context, conversation *entities.Conversation) error
	GetByID(ctx context.Context, id string) (*entities.Conversation, error)

	// FindByParticipants returns the two-party conversation between a and b
	FindByParticipants(ctx context.Context, a, b string) (*entities.Conversation, error)

	// ListByUser returns conversations containing userID, most recently updated first
	ListByUser(ctx context.Context, userID string, page Page) ([]*entities.Conversation, error)

	// Touch moves the conversation's updated_at forward
	Touch(ctx context.Context, id string, at time.Time) error
}

// MessageRepository defines the interface for chat messages
type MessageRepository interface {
	Create(ctx context.Context, message *entities.Message) error

	// ListByConversation returns messages oldest first
	ListByConversation(ctx context.Context, conversationID string, page Page) ([]*entities.Message, error)

	// LastMessages returns the newest message of each conversation
	LastMessages(ctx context.Context, conversationIDs []string) (map[string]*entities.Message, error)

	// UnreadCounts returns, per conversation, how many messages addressed to userID are unread
	UnreadCounts(ctx context.Context, conversationIDs []string, userID string) (map[string]int, error)

	// MarkRead marks every message addressed to userID in the conversation as read
	MarkRead(ctx context.Context, conversationID, userID string) (int64, error)
}
