package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wrenchwise/backend/internal/api/middleware"
	"github.com/wrenchwise/backend/internal/application/services"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

const (
	defaultHeartbeat = 30 * time.Second
	socketWriteWait  = 10 * time.Second
	socketReadLimit  = 64 << 10
)

// LiveUpdates is the subscription API used by StreamHandler
type LiveUpdates interface {
	SubscribeToMessages(ctx context.Context, userID, conversationID string) (<-chan *entities.Message, error)
	SubscribeToBookingUpdates(ctx context.Context, userID string) (<-chan *entities.BookingRequest, error)
}

// StreamHandler serves live updates over Server-Sent Events and WebSocket
type StreamHandler struct {
	live      LiveUpdates
	messages  Messenger
	upgrader  websocket.Upgrader
	heartbeat time.Duration
}

// NewStreamHandler creates a new stream handler. allowedOrigins limits which browser
// origins may open a WebSocket; "*" allows any.
func NewStreamHandler(live LiveUpdates, messages Messenger, allowedOrigins []string) *StreamHandler {
	return &StreamHandler{
		live:     live,
		messages: messages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		heartbeat: defaultHeartbeat,
	}
}

// WithHeartbeat overrides the keep-alive interval
func (h *StreamHandler) WithHeartbeat(d time.Duration) *StreamHandler {
	if d > 0 {
		h.heartbeat = d
	}
	return h
}

// StreamConversation handles GET /api/conversations/{id}/stream
func (h *StreamHandler) StreamConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")
	if conversationID == "" {
		respondWithError(w, http.StatusBadRequest, "conversation ID is required")
		return
	}

	updates, err := h.live.SubscribeToMessages(r.Context(), middleware.UserID(r.Context()), conversationID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	serveSSE(w, r, h.heartbeat, string(entities.LiveEventMessageCreated), updates, map[string]interface{}{
		"conversation_id": conversationID,
	})
}

// StreamBookings handles GET /api/bookings/stream
func (h *StreamHandler) StreamBookings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	updates, err := h.live.SubscribeToBookingUpdates(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	serveSSE(w, r, h.heartbeat, "booking", updates, map[string]interface{}{
		"user_id": userID,
	})
}

func serveSSE[T any](w http.ResponseWriter, r *http.Request, heartbeat time.Duration, eventName string, updates <-chan *T, hello map[string]interface{}) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	hello["timestamp"] = time.Now().UTC()
	sendEvent(w, "connected", hello)
	flusher.Flush()

	logger := observability.LoggerFromContext(r.Context())
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Str("path", r.URL.Path).Msg("stream client disconnected")
			return
		case <-ticker.C:
			sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now().UTC()})
			flusher.Flush()
		case update, ok := <-updates:
			if !ok {
				return
			}
			sendEvent(w, eventName, update)
			flusher.Flush()
		}
	}
}

func sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
}

// socketFrame is every server to client WebSocket message
type socketFrame struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// socketInbound is a message typed by the client
type socketInbound struct {
	Content     string               `json:"content"`
	MessageType entities.MessageType `json:"message_type"`
}

// ConversationSocket handles GET /api/conversations/{id}/ws. New messages of the
// conversation are pushed as {"type":"message"} frames; client frames are sent as
// messages from the caller. Sent messages come back through the subscription.
func (h *StreamHandler) ConversationSocket(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	conversationID := r.PathValue("id")
	if conversationID == "" {
		respondWithError(w, http.StatusBadRequest, "conversation ID is required")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, err := h.live.SubscribeToMessages(ctx, userID, conversationID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		observability.LoggerFromContext(ctx).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := observability.LoggerFromContext(ctx).With().
		Str("user_id", userID).
		Str("conversation_id", conversationID).
		Logger()
	logger.Debug().Msg("websocket connected")

	pongWait := 2 * h.heartbeat
	conn.SetReadLimit(socketReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	replies := make(chan socketFrame, 8)
	go h.readSocket(ctx, cancel, conn, userID, conversationID, replies)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	write := func(frame socketFrame) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
		if err := conn.WriteJSON(frame); err != nil {
			logger.Debug().Err(err).Msg("websocket write failed")
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(socketWriteWait))
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(socketWriteWait)); err != nil {
				return
			}
		case frame := <-replies:
			if !write(frame) {
				return
			}
		case msg, ok := <-updates:
			if !ok {
				return
			}
			if !write(socketFrame{Type: "message", Payload: msg}) {
				return
			}
		}
	}
}

// readSocket sends every client frame as a message. It is the only reader of conn;
// replies go back through the writer loop.
func (h *StreamHandler) readSocket(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, userID, conversationID string, replies chan<- socketFrame) {
	defer cancel()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.LoggerFromContext(ctx).Debug().Err(err).Msg("websocket closed")
			}
			return
		}

		var in socketInbound
		if err := json.Unmarshal(data, &in); err != nil {
			reply(replies, errorFrame(apperrors.NewValidationError("invalid message frame")))
			continue
		}

		_, err = h.messages.SendMessage(ctx, userID, services.SendMessageRequest{
			ConversationID: conversationID,
			Content:        in.Content,
			MessageType:    in.MessageType,
		})
		if err != nil {
			reply(replies, errorFrame(err))
		}
	}
}

func reply(replies chan<- socketFrame, frame socketFrame) {
	select {
	case replies <- frame:
	default:
	}
}

func errorFrame(err error) socketFrame {
	body := errorResponse{Error: "internal server error", Code: string(apperrors.ErrorTypeInternal)}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type != apperrors.ErrorTypeInternal {
		body = errorResponse{Error: appErr.Message, Code: string(appErr.Type)}
	}
	return socketFrame{Type: "error", Payload: body}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
