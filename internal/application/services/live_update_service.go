package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

// LiveUpdateService turns event bus traffic into typed streams for connected clients
type LiveUpdateService struct {
	bus           providers.EventBus
	conversations repositories.ConversationRepository
	metrics       *observability.Metrics
}

// NewLiveUpdateService creates a new live update service
func NewLiveUpdateService(bus providers.EventBus, conversations repositories.ConversationRepository, metrics *observability.Metrics) *LiveUpdateService {
	return &LiveUpdateService{bus: bus, conversations: conversations, metrics: metrics}
}

// SubscribeToMessages streams new messages of a conversation userID takes part in.
// The stream closes when ctx ends.
func (s *LiveUpdateService) SubscribeToMessages(ctx context.Context, userID, conversationID string) (<-chan *entities.Message, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, apperrors.NewForbiddenError("not a participant of this conversation")
	}

	events, err := s.bus.Subscribe(ctx, providers.GetConversationChannel(conversationID))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to subscribe to conversation", err)
	}
	return stream[entities.Message](ctx, s, "messages", events, entities.LiveEventMessageCreated), nil
}

// SubscribeToBookingUpdates streams bookings userID requested or received as they are
// created or change status.
func (s *LiveUpdateService) SubscribeToBookingUpdates(ctx context.Context, userID string) (<-chan *entities.BookingRequest, error) {
	events, err := s.bus.Subscribe(ctx, providers.GetUserBookingsChannel(userID))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to subscribe to bookings", err)
	}
	return stream[entities.BookingRequest](ctx, s, "bookings", events,
		entities.LiveEventBookingCreated, entities.LiveEventBookingUpdated), nil
}

// stream decodes events of the wanted types into T until events closes or ctx ends
func stream[T any](ctx context.Context, s *LiveUpdateService, kind string, events <-chan *entities.LiveEvent, wanted ...entities.LiveEventType) <-chan *T {
	out := make(chan *T, 16)
	s.trackSubscriber(ctx, kind, 1)

	go func() {
		defer close(out)
		defer s.trackSubscriber(context.Background(), kind, -1)

		logger := observability.LoggerFromContext(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if event == nil || !matches(event.Type, wanted) {
					continue
				}
				v := new(T)
				if err := event.Decode(v); err != nil {
					logger.Warn().Err(err).Str("event_id", event.ID).Msg("dropping undecodable live event")
					continue
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func matches(t entities.LiveEventType, wanted []entities.LiveEventType) bool {
	for _, w := range wanted {
		if t == w {
			return true
		}
	}
	return false
}

func (s *LiveUpdateService) trackSubscriber(ctx context.Context, kind string, delta int64) {
	if s.metrics == nil || s.metrics.LiveSubscribers == nil {
		return
	}
	s.metrics.LiveSubscribers.Add(ctx, delta, metric.WithAttributes(attribute.String("stream", kind)))
}
