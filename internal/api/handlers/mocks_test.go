package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrenchwise/backend/internal/api/middleware"
	"github.com/wrenchwise/backend/internal/application/services"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func newRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func asUser(req *http.Request, userID string) *http.Request {
	ctx := middleware.WithClaims(req.Context(), &providers.TokenClaims{UserID: userID})
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, req services.SignUpRequest) (entities.Session, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(entities.Session), args.Error(1)
}

func (m *MockAuthService) SignIn(ctx context.Context, req services.SignInRequest) (entities.Session, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(entities.Session), args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, token string) (entities.Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(entities.Session), args.Error(1)
}

func (m *MockAuthService) GetCurrentUser(ctx context.Context, token string) (*entities.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

type MockMechanicFinder struct {
	mock.Mock
}

func (m *MockMechanicFinder) FetchMechanics(ctx context.Context, q services.MechanicQuery) (*services.MechanicPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.MechanicPage), args.Error(1)
}

func (m *MockMechanicFinder) GetMechanic(ctx context.Context, id string) (*services.MechanicResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.MechanicResult), args.Error(1)
}

func (m *MockMechanicFinder) SearchMechanics(ctx context.Context, text string, category *entities.ServiceCategory, page repositories.Page) (*services.MechanicPage, error) {
	args := m.Called(ctx, text, category, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.MechanicPage), args.Error(1)
}

type MockReviewManager struct {
	mock.Mock
}

func (m *MockReviewManager) FetchReviews(ctx context.Context, mechanicID string, page repositories.Page) ([]*entities.Review, error) {
	args := m.Called(ctx, mechanicID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Review), args.Error(1)
}

func (m *MockReviewManager) CreateReview(ctx context.Context, userID string, review *entities.Review) (*entities.Review, error) {
	args := m.Called(ctx, userID, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

type MockPostManager struct {
	mock.Mock
}

func (m *MockPostManager) FetchFeed(ctx context.Context, postType *entities.PostType, page repositories.Page) ([]*entities.Post, error) {
	args := m.Called(ctx, postType, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Post), args.Error(1)
}

func (m *MockPostManager) CreatePost(ctx context.Context, authorID string, post *entities.Post) (*entities.Post, error) {
	args := m.Called(ctx, authorID, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Post), args.Error(1)
}

func (m *MockPostManager) AddComment(ctx context.Context, userID, postID, content string) (*entities.Comment, error) {
	args := m.Called(ctx, userID, postID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Comment), args.Error(1)
}

func (m *MockPostManager) LikePost(ctx context.Context, postID string) (int, error) {
	args := m.Called(ctx, postID)
	return args.Int(0), args.Error(1)
}

type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) FetchConversations(ctx context.Context, userID string, page repositories.Page) ([]*entities.Conversation, error) {
	args := m.Called(ctx, userID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Conversation), args.Error(1)
}

func (m *MockMessenger) FetchMessages(ctx context.Context, userID, conversationID string, page repositories.Page) ([]*entities.Message, error) {
	args := m.Called(ctx, userID, conversationID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Message), args.Error(1)
}

func (m *MockMessenger) SendMessage(ctx context.Context, senderID string, req services.SendMessageRequest) (*entities.Message, error) {
	args := m.Called(ctx, senderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Message), args.Error(1)
}

func (m *MockMessenger) MarkConversationRead(ctx context.Context, userID, conversationID string) (int64, error) {
	args := m.Called(ctx, userID, conversationID)
	return args.Get(0).(int64), args.Error(1)
}

type MockBookingManager struct {
	mock.Mock
}

func (m *MockBookingManager) CreateBookingRequest(ctx context.Context, userID string, booking *entities.BookingRequest) (*entities.BookingRequest, error) {
	args := m.Called(ctx, userID, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BookingRequest), args.Error(1)
}

func (m *MockBookingManager) UpdateBookingStatus(ctx context.Context, userID, bookingID string, next entities.BookingStatus) (*entities.BookingRequest, error) {
	args := m.Called(ctx, userID, bookingID, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BookingRequest), args.Error(1)
}

func (m *MockBookingManager) FetchBookings(ctx context.Context, userID string, page repositories.Page) ([]*entities.BookingRequest, error) {
	args := m.Called(ctx, userID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BookingRequest), args.Error(1)
}

// fakeLive hands out channels the test controls
type fakeLive struct {
	messages chan *entities.Message
	bookings chan *entities.BookingRequest
	err      error
}

func newFakeLive() *fakeLive {
	return &fakeLive{
		messages: make(chan *entities.Message, 4),
		bookings: make(chan *entities.BookingRequest, 4),
	}
}

func (f *fakeLive) SubscribeToMessages(ctx context.Context, userID, conversationID string) (<-chan *entities.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.messages, nil
}

func (f *fakeLive) SubscribeToBookingUpdates(ctx context.Context, userID string) (<-chan *entities.BookingRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bookings, nil
}
