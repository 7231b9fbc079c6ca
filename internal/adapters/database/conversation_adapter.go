package database

import (
	"context"
	"sort"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

// ConversationAdapter implements ConversationRepository
type ConversationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewConversationAdapter creates a new conversation adapter
func NewConversationAdapter(client *postgres.Client) repositories.ConversationRepository {
	return &ConversationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a conversation. Participants are stored sorted.
func (a *ConversationAdapter) Create(ctx context.Context, conversation *entities.Conversation) error {
	participants := append([]string(nil), conversation.Participants...)
	sort.Strings(participants)

	query := `INSERT INTO conversations (id, participants, created_at, updated_at) VALUES ($1, $2::uuid[], $3, $4)`
	_, err := a.client.DB().ExecContext(ctx, query,
		conversation.ID, pq.Array(participants), conversation.CreatedAt, conversation.UpdatedAt)
	if err != nil {
		return translateError(err, "conversation not found", "failed to create conversation")
	}
	return nil
}

// GetByID retrieves a conversation
func (a *ConversationAdapter) GetByID(ctx context.Context, id string) (*entities.Conversation, error) {
	query := `SELECT id, participants::text[], created_at, updated_at FROM conversations WHERE id = $1`
	conv, err := scanConversation(a.client.DB().QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "conversation not found", "failed to get conversation")
	}
	return conv, nil
}

// FindByParticipants returns the conversation between a and b
func (a *ConversationAdapter) FindByParticipants(ctx context.Context, userA, userB string) (*entities.Conversation, error) {
	query := `SELECT id, participants::text[], created_at, updated_at FROM conversations
		WHERE participants @> $1::uuid[] AND cardinality(participants) = 2
		ORDER BY created_at ASC LIMIT 1`
	conv, err := scanConversation(a.client.DB().QueryRowContext(ctx, query, pq.Array([]string{userA, userB})))
	if err != nil {
		return nil, translateError(err, "conversation not found", "failed to find conversation")
	}
	return conv, nil
}

// ListByUser returns the user's conversations, most recently updated first
func (a *ConversationAdapter) ListByUser(ctx context.Context, userID string, page repositories.Page) ([]*entities.Conversation, error) {
	query := `SELECT id, participants::text[], created_at, updated_at FROM conversations
		WHERE $1::uuid = ANY(participants)
		ORDER BY updated_at DESC, id ASC
		LIMIT $2 OFFSET $3`
	rows, err := a.client.DB().QueryContext(ctx, query, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, translateError(err, "conversations not found", "failed to list conversations")
	}
	defer rows.Close()

	conversations := []*entities.Conversation{}
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, translateError(err, "conversations not found", "failed to scan conversation")
		}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "conversations not found", "failed to iterate conversations")
	}
	return conversations, nil
}

// Touch moves updated_at forward
func (a *ConversationAdapter) Touch(ctx context.Context, id string, at time.Time) error {
	query, args, err := a.db.Update("conversations").Prepared(true).
		Set(goqu.Record{"updated_at": at}).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build conversation update", err)
	}

	res, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return translateError(err, "conversation not found", "failed to touch conversation")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewNotFoundError("conversation not found")
	}
	return nil
}

func scanConversation(row rowScanner) (*entities.Conversation, error) {
	var (
		c            entities.Conversation
		participants pq.StringArray
	)
	if err := row.Scan(&c.ID, &participants, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Participants = nonNil(participants)
	return &c, nil
}

var messageColumns = []interface{}{
	"id", "conversation_id", "sender_id", "receiver_id", "content", "message_type", "is_read", "created_at",
}

// MessageAdapter implements MessageRepository
type MessageAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewMessageAdapter creates a new message adapter
func NewMessageAdapter(client *postgres.Client) repositories.MessageRepository {
	return &MessageAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a message
func (a *MessageAdapter) Create(ctx context.Context, message *entities.Message) error {
	record := goqu.Record{
		"id":              message.ID,
		"conversation_id": message.ConversationID,
		"sender_id":       message.SenderID,
		"receiver_id":     message.ReceiverID,
		"content":         message.Content,
		"message_type":    string(message.MessageType),
		"is_read":         message.IsRead,
		"created_at":      message.CreatedAt,
	}

	query, args, err := a.db.Insert("messages").Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build message insert query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return translateError(err, "conversation not found", "failed to send message")
	}
	return nil
}

// ListByConversation returns messages oldest first
func (a *MessageAdapter) ListByConversation(ctx context.Context, conversationID string, page repositories.Page) ([]*entities.Message, error) {
	query, args, err := a.db.From("messages").Prepared(true).
		Select(messageColumns...).
		Where(goqu.C("conversation_id").Eq(conversationID)).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Limit(uint(page.Limit)).
		Offset(uint(page.Offset)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build message list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "messages not found", "failed to list messages")
	}
	defer rows.Close()

	messages := []*entities.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, translateError(err, "messages not found", "failed to scan message")
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "messages not found", "failed to iterate messages")
	}
	return messages, nil
}

// LastMessages returns the newest message per conversation
func (a *MessageAdapter) LastMessages(ctx context.Context, conversationIDs []string) (map[string]*entities.Message, error) {
	out := make(map[string]*entities.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}

	query := `SELECT DISTINCT ON (conversation_id)
			id, conversation_id, sender_id, receiver_id, content, message_type, is_read, created_at
		FROM messages
		WHERE conversation_id = ANY($1::uuid[])
		ORDER BY conversation_id, created_at DESC, id DESC`
	rows, err := a.client.DB().QueryContext(ctx, query, pq.Array(conversationIDs))
	if err != nil {
		return nil, translateError(err, "messages not found", "failed to load last messages")
	}
	defer rows.Close()

	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, translateError(err, "messages not found", "failed to scan message")
		}
		out[msg.ConversationID] = msg
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "messages not found", "failed to iterate messages")
	}
	return out, nil
}

// UnreadCounts returns unread message counts addressed to userID
func (a *MessageAdapter) UnreadCounts(ctx context.Context, conversationIDs []string, userID string) (map[string]int, error) {
	out := make(map[string]int, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}

	query := `SELECT conversation_id, COUNT(*) FROM messages
		WHERE conversation_id = ANY($1::uuid[]) AND receiver_id = $2 AND is_read = FALSE
		GROUP BY conversation_id`
	rows, err := a.client.DB().QueryContext(ctx, query, pq.Array(conversationIDs), userID)
	if err != nil {
		return nil, translateError(err, "messages not found", "failed to count unread messages")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    string
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, translateError(err, "messages not found", "failed to scan unread count")
		}
		out[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "messages not found", "failed to iterate unread counts")
	}
	return out, nil
}

// MarkRead flags every unread message addressed to userID as read
func (a *MessageAdapter) MarkRead(ctx context.Context, conversationID, userID string) (int64, error) {
	query, args, err := a.db.Update("messages").Prepared(true).
		Set(goqu.Record{"is_read": true}).
		Where(
			goqu.C("conversation_id").Eq(conversationID),
			goqu.C("receiver_id").Eq(userID),
			goqu.C("is_read").IsFalse(),
		).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build mark read query", err)
	}

	res, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translateError(err, "conversation not found", "failed to mark messages read")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to read affected rows", err)
	}
	return n, nil
}

func scanMessage(row rowScanner) (*entities.Message, error) {
	var (
		m       entities.Message
		msgType string
	)
	if err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID, &m.Content, &msgType, &m.IsRead, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.MessageType = entities.MessageType(msgType)
	return &m, nil
}
