package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
	"github.com/wrenchwise/backend/pkg/config"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
	"github.com/wrenchwise/backend/pkg/validation"
)

// SendMessageRequest sends a message into an existing conversation or, when
// ConversationID is empty, to ReceiverID starting one if needed.
type SendMessageRequest struct {
	ConversationID string               `json:"conversation_id"`
	ReceiverID     string               `json:"receiver_id"`
	Content        string               `json:"content"`
	MessageType    entities.MessageType `json:"message_type"`
}

// MessagingService handles two-party conversations
type MessagingService struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	users         repositories.UserRepository
	mechanics     repositories.MechanicRepository
	bus           providers.EventBus
	metrics       *observability.Metrics
	pagination    config.PaginationConfig
	validate      *validator.Validate
	now           func() time.Time
}

// NewMessagingService creates a new messaging service
func NewMessagingService(
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	users repositories.UserRepository,
	mechanics repositories.MechanicRepository,
	bus providers.EventBus,
	metrics *observability.Metrics,
	pagination config.PaginationConfig,
) *MessagingService {
	return &MessagingService{
		conversations: conversations,
		messages:      messages,
		users:         users,
		mechanics:     mechanics,
		bus:           bus,
		metrics:       metrics,
		pagination:    pagination,
		validate:      validation.New(),
		now:           time.Now,
	}
}

// FetchConversations lists userID's conversations, most recently active first, with
// the last message, unread count and the other participant filled in.
func (s *MessagingService) FetchConversations(ctx context.Context, userID string, page repositories.Page) ([]*entities.Conversation, error) {
	ctx, span := observability.StartSpan(ctx, "MessagingService.FetchConversations")
	defer span.End()

	page = page.Normalize(s.pagination.DefaultLimit, s.pagination.MaxLimit)
	convs, err := s.conversations.ListByUser(ctx, userID, page)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if len(convs) == 0 {
		return convs, nil
	}

	ids := make([]string, 0, len(convs))
	others := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
		if o := c.OtherParticipant(userID); o != "" {
			others = append(others, o)
		}
	}

	last, err := s.messages.LastMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	unread, err := s.messages.UnreadCounts(ctx, ids, userID)
	if err != nil {
		return nil, err
	}
	users := loadersFor(ctx, s.users, s.mechanics).Users(ctx, others)

	for _, c := range convs {
		c.LastMessage = last[c.ID]
		c.UnreadCount = unread[c.ID]
		if u, ok := users[c.OtherParticipant(userID)]; ok {
			c.OtherParticipantName = u.Name
			c.OtherParticipantImage = u.ProfileImageURL
		}
	}
	return convs, nil
}

// FetchMessages returns a conversation's messages oldest first. Only participants may read them.
func (s *MessagingService) FetchMessages(ctx context.Context, userID, conversationID string, page repositories.Page) ([]*entities.Message, error) {
	ctx, span := observability.StartSpan(ctx, "MessagingService.FetchMessages")
	defer span.End()

	if _, err := s.participantConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	page = page.Normalize(s.pagination.DefaultLimit, s.pagination.MaxLimit)
	msgs, err := s.messages.ListByConversation(ctx, conversationID, page)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	senders := make([]string, 0, len(msgs))
	for _, m := range msgs {
		senders = append(senders, m.SenderID)
	}
	users := loadersFor(ctx, s.users, s.mechanics).Users(ctx, senders)
	for _, m := range msgs {
		if u, ok := users[m.SenderID]; ok {
			m.SenderName = u.Name
			m.SenderProfileImage = u.ProfileImageURL
		}
	}
	return msgs, nil
}

// SendMessage stores a message from senderID and notifies the conversation's subscribers
func (s *MessagingService) SendMessage(ctx context.Context, senderID string, req SendMessageRequest) (*entities.Message, error) {
	ctx, span := observability.StartSpan(ctx, "MessagingService.SendMessage")
	defer span.End()

	if req.MessageType == "" {
		req.MessageType = entities.MessageTypeText
	}

	msg := &entities.Message{
		SenderID:    senderID,
		Content:     req.Content,
		MessageType: req.MessageType,
	}
	if err := validation.Struct(s.validate, msg); err != nil {
		return nil, err
	}

	conv, err := s.resolveConversation(ctx, senderID, req)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	now := s.now().UTC()
	msg.ID = uuid.New().String()
	msg.ConversationID = conv.ID
	msg.ReceiverID = conv.OtherParticipant(senderID)
	msg.CreatedAt = now

	if err := s.messages.Create(ctx, msg); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if err := s.conversations.Touch(ctx, conv.ID, now); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("conversation_id", conv.ID).Msg("failed to touch conversation")
	}

	if sender, err := s.users.GetByID(ctx, senderID); err == nil {
		msg.SenderName = sender.Name
		msg.SenderProfileImage = sender.ProfileImageURL
	}

	publish(ctx, s.bus, entities.LiveEventMessageCreated, conv.ID, msg, providers.GetConversationChannel(conv.ID))
	if s.metrics != nil {
		observability.RecordCount(ctx, s.metrics.MessagesSent, attribute.String("message.type", string(msg.MessageType)))
	}
	return msg, nil
}

func (s *MessagingService) resolveConversation(ctx context.Context, senderID string, req SendMessageRequest) (*entities.Conversation, error) {
	if req.ConversationID != "" {
		return s.participantConversation(ctx, senderID, req.ConversationID)
	}

	if req.ReceiverID == "" {
		return nil, apperrors.NewValidationError("conversation_id or receiver_id is required")
	}
	if req.ReceiverID == senderID {
		return nil, apperrors.NewValidationError("cannot message yourself")
	}
	if _, err := s.users.GetByID(ctx, req.ReceiverID); err != nil {
		return nil, err
	}

	conv, err := s.conversations.FindByParticipants(ctx, senderID, req.ReceiverID)
	if err == nil {
		return conv, nil
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	conv = &entities.Conversation{
		ID:           uuid.New().String(),
		Participants: []string{senderID, req.ReceiverID},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// MarkConversationRead marks every message addressed to userID as read
func (s *MessagingService) MarkConversationRead(ctx context.Context, userID, conversationID string) (int64, error) {
	if _, err := s.participantConversation(ctx, userID, conversationID); err != nil {
		return 0, err
	}

	n, err := s.messages.MarkRead(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		publish(ctx, s.bus, entities.LiveEventMessageRead, conversationID,
			map[string]interface{}{"reader_id": userID, "count": n},
			providers.GetConversationChannel(conversationID))
	}
	return n, nil
}

// participantConversation loads a conversation userID takes part in
func (s *MessagingService) participantConversation(ctx context.Context, userID, conversationID string) (*entities.Conversation, error) {
	if conversationID == "" {
		return nil, apperrors.NewValidationError("conversation id is required")
	}
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, apperrors.NewForbiddenError("not a participant of this conversation")
	}
	return conv, nil
}
