package services_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *entities.User, passwordHash string) error {
	return m.Called(ctx, user, passwordHash).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *mockUserRepo) GetCredentialsByEmail(ctx context.Context, email string) (*entities.Credentials, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Credentials), args.Error(1)
}

type mockMechanicRepo struct{ mock.Mock }

func (m *mockMechanicRepo) Create(ctx context.Context, mechanic *entities.Mechanic) error {
	return m.Called(ctx, mechanic).Error(0)
}

func (m *mockMechanicRepo) GetByID(ctx context.Context, id string) (*entities.Mechanic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Mechanic), args.Error(1)
}

func (m *mockMechanicRepo) GetByIDs(ctx context.Context, ids []string) ([]*entities.Mechanic, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Mechanic), args.Error(1)
}

func (m *mockMechanicRepo) List(ctx context.Context, filter repositories.MechanicFilter) ([]*entities.Mechanic, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Mechanic), args.Error(1)
}

func (m *mockMechanicRepo) RecomputeTrustScore(ctx context.Context, id string, score repositories.TrustScorer) error {
	return m.Called(ctx, id, score).Error(0)
}

type mockSearchRepo struct{ mock.Mock }

func (m *mockSearchRepo) Search(ctx context.Context, params repositories.MechanicSearchParams) (*repositories.MechanicSearchResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.MechanicSearchResult), args.Error(1)
}

func (m *mockSearchRepo) Index(ctx context.Context, mechanic *entities.Mechanic) error {
	return m.Called(ctx, mechanic).Error(0)
}

func (m *mockSearchRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockReviewRepo struct{ mock.Mock }

func (m *mockReviewRepo) Create(ctx context.Context, review *entities.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockReviewRepo) ListByMechanic(ctx context.Context, mechanicID string, page repositories.Page) ([]*entities.Review, error) {
	args := m.Called(ctx, mechanicID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Review), args.Error(1)
}

type mockPostRepo struct{ mock.Mock }

func (m *mockPostRepo) Create(ctx context.Context, post *entities.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *mockPostRepo) GetByID(ctx context.Context, id string) (*entities.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Post), args.Error(1)
}

func (m *mockPostRepo) List(ctx context.Context, postType *entities.PostType, page repositories.Page) ([]*entities.Post, error) {
	args := m.Called(ctx, postType, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Post), args.Error(1)
}

func (m *mockPostRepo) IncrementLikes(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *mockPostRepo) AddComment(ctx context.Context, comment *entities.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *mockPostRepo) CommentsFor(ctx context.Context, postIDs []string) (map[string][]entities.Comment, error) {
	args := m.Called(ctx, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]entities.Comment), args.Error(1)
}

type mockConversationRepo struct{ mock.Mock }

func (m *mockConversationRepo) Create(ctx context.Context, conversation *entities.Conversation) error {
	return m.Called(ctx, conversation).Error(0)
}

func (m *mockConversationRepo) GetByID(ctx context.Context, id string) (*entities.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Conversation), args.Error(1)
}

func (m *mockConversationRepo) FindByParticipants(ctx context.Context, a, b string) (*entities.Conversation, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Conversation), args.Error(1)
}

func (m *mockConversationRepo) ListByUser(ctx context.Context, userID string, page repositories.Page) ([]*entities.Conversation, error) {
	args := m.Called(ctx, userID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Conversation), args.Error(1)
}

func (m *mockConversationRepo) Touch(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type mockMessageRepo struct{ mock.Mock }

func (m *mockMessageRepo) Create(ctx context.Context, message *entities.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *mockMessageRepo) ListByConversation(ctx context.Context, conversationID string, page repositories.Page) ([]*entities.Message, error) {
	args := m.Called(ctx, conversationID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Message), args.Error(1)
}

func (m *mockMessageRepo) LastMessages(ctx context.Context, conversationIDs []string) (map[string]*entities.Message, error) {
	args := m.Called(ctx, conversationIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*entities.Message), args.Error(1)
}

func (m *mockMessageRepo) UnreadCounts(ctx context.Context, conversationIDs []string, userID string) (map[string]int, error) {
	args := m.Called(ctx, conversationIDs, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, conversationID, userID string) (int64, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) Create(ctx context.Context, booking *entities.BookingRequest) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*entities.BookingRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BookingRequest), args.Error(1)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id string, from, to entities.BookingStatus) (*entities.BookingRequest, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BookingRequest), args.Error(1)
}

func (m *mockBookingRepo) ListForUser(ctx context.Context, userID string, page repositories.Page) ([]*entities.BookingRequest, error) {
	args := m.Called(ctx, userID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BookingRequest), args.Error(1)
}

type mockTokenIssuer struct{ mock.Mock }

func (m *mockTokenIssuer) Issue(user *entities.User) (string, *providers.TokenClaims, error) {
	args := m.Called(user)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*providers.TokenClaims), args.Error(2)
}

func (m *mockTokenIssuer) Parse(token string) (*providers.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.TokenClaims), args.Error(1)
}

type mockHasher struct{ mock.Mock }

func (m *mockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *mockHasher) Compare(hash, password string) error {
	return m.Called(hash, password).Error(0)
}

type mockIndexer struct{ mock.Mock }

func (m *mockIndexer) Index(ctx context.Context, mechanic *entities.Mechanic) error {
	return m.Called(ctx, mechanic).Error(0)
}

// fakeCache is an in-memory CacheProvider
type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.data {
		if globMatch(pattern, key) {
			delete(c.data, key)
			c.deleted = append(c.deleted, key)
		}
	}
	return nil
}

// globMatch supports the '*' wildcard the way Redis SCAN MATCH does, '/' included
func globMatch(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	last := len(parts) - 1
	for i := 1; i < last; i++ {
		idx := strings.Index(s, parts[i])
		if idx < 0 {
			return false
		}
		s = s[idx+len(parts[i]):]
	}
	if last == 0 {
		return s == ""
	}
	return strings.HasSuffix(s, parts[last])
}

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *fakeCache) has(key string) bool {
	ok, _ := c.Exists(context.Background(), key)
	return ok
}

// fakeEventBus records published events and fans them out to in-process subscribers
type fakeEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.LiveEvent
	published   map[string][]*entities.LiveEvent
}

func newFakeEventBus() *fakeEventBus {
	return &fakeEventBus{
		subscribers: make(map[string][]chan *entities.LiveEvent),
		published:   make(map[string][]*entities.LiveEvent),
	}
}

func (b *fakeEventBus) Publish(ctx context.Context, channel string, event *entities.LiveEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[channel] = append(b.published[channel], event)
	for _, ch := range b.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *fakeEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.LiveEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan *entities.LiveEvent, 10)
	b.subscribers[channel] = append(b.subscribers[channel], ch)
	return ch, nil
}

func (b *fakeEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers[channel] {
		close(ch)
	}
	delete(b.subscribers, channel)
	return nil
}

func (b *fakeEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for channel, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subscribers, channel)
	}
	return nil
}

func (b *fakeEventBus) events(channel string) []*entities.LiveEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*entities.LiveEvent(nil), b.published[channel]...)
}

func (b *fakeEventBus) subscriberCount(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[channel])
}
