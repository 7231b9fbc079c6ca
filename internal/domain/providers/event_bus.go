package providers

import (
	"context"

	"github.com/wrenchwise/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to live events
type EventBus interface {
	// Publish publishes an event to all subscribers of channel
	Publish(ctx context.Context, channel string, event *entities.LiveEvent) error

	// Subscribe subscribes to events on a channel. The returned channel is closed when ctx ends.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.LiveEvent, error)

	// Unsubscribe drops every local subscriber of a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelMechanicUpdates carries mechanic.updated for cache invalidation and reindexing
	EventChannelMechanicUpdates = "wrenchwise:mechanics:updates"

	// EventChannelConversationPrefix is the prefix for per-conversation message channels
	EventChannelConversationPrefix = "wrenchwise:conversation:"

	// EventChannelUserBookingsPrefix is the prefix for per-user booking channels
	EventChannelUserBookingsPrefix = "wrenchwise:bookings:"
)

// GetConversationChannel returns the channel carrying a conversation's messages
func GetConversationChannel(conversationID string) string {
	return EventChannelConversationPrefix + conversationID
}

// GetUserBookingsChannel returns the channel carrying booking updates relevant to a user
func GetUserBookingsChannel(userID string) string {
	return EventChannelUserBookingsPrefix + userID
}
