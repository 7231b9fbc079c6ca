package handlers

import (
	"context"
	"net/http"

	"github.com/wrenchwise/backend/internal/api/middleware"
	"github.com/wrenchwise/backend/internal/application/services"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
)

// Messenger is the conversation API used by MessagingHandler and StreamHandler
type Messenger interface {
	FetchConversations(ctx context.Context, userID string, page repositories.Page) ([]*entities.Conversation, error)
	FetchMessages(ctx context.Context, userID, conversationID string, page repositories.Page) ([]*entities.Message, error)
	SendMessage(ctx context.Context, senderID string, req services.SendMessageRequest) (*entities.Message, error)
	MarkConversationRead(ctx context.Context, userID, conversationID string) (int64, error)
}

// MessagingHandler handles conversation and message requests
type MessagingHandler struct {
	messages Messenger
}

// NewMessagingHandler creates a new messaging handler
func NewMessagingHandler(messages Messenger) *MessagingHandler {
	return &MessagingHandler{messages: messages}
}

// ListConversations handles GET /api/conversations
func (h *MessagingHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.messages.FetchConversations(r.Context(), middleware.UserID(r.Context()), pageFromQuery(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"conversations": conversations,
		"count":         len(conversations),
	})
}

// ListMessages handles GET /api/conversations/{id}/messages
func (h *MessagingHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messages.FetchMessages(r.Context(), middleware.UserID(r.Context()), r.PathValue("id"), pageFromQuery(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

// SendMessage handles POST /api/messages. A conversation id in the path, when
// present, overrides the body.
func (h *MessagingHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req services.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if id := r.PathValue("id"); id != "" {
		req.ConversationID = id
	}

	message, err := h.messages.SendMessage(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, message)
}

// MarkRead handles POST /api/conversations/{id}/read
func (h *MessagingHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")
	n, err := h.messages.MarkConversationRead(r.Context(), middleware.UserID(r.Context()), conversationID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": conversationID,
		"marked_read":     n,
	})
}
