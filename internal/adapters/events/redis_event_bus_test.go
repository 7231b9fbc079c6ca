package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	redisclient "github.com/wrenchwise/backend/internal/infrastructure/clients/redis"
)

func newTestBus(t *testing.T) providers.EventBus {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	bus := NewRedisEventBus(redisclient.NewFromClient(rdb))
	t.Cleanup(func() {
		_ = bus.Close()
		_ = rdb.Close()
	})
	return bus
}

func receive(t *testing.T, ch <-chan *entities.LiveEvent) *entities.LiveEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestRedisEventBus_PublishSubscribe(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := providers.GetConversationChannel("c-1")
	events, err := bus.Subscribe(ctx, channel)
	require.NoError(t, err)

	ev, err := entities.NewLiveEvent(entities.LiveEventMessageCreated, "c-1", map[string]string{"content": "hi"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, channel, ev))

	got := receive(t, events)
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, entities.LiveEventMessageCreated, got.Type)

	var payload map[string]string
	require.NoError(t, got.Decode(&payload))
	assert.Equal(t, "hi", payload["content"])
}

func TestRedisEventBus_FanOutToAllSubscribers(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := providers.GetUserBookingsChannel("u-1")
	first, err := bus.Subscribe(ctx, channel)
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, channel)
	require.NoError(t, err)

	ev, err := entities.NewLiveEvent(entities.LiveEventBookingUpdated, "b-1", nil)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, channel, ev))

	assert.Equal(t, ev.ID, receive(t, first).ID)
	assert.Equal(t, ev.ID, receive(t, second).ID)
}

func TestRedisEventBus_ContextCancelClosesChannel(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := bus.Subscribe(ctx, providers.EventChannelMechanicUpdates)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestRedisEventBus_SubscribeAfterClose(t *testing.T) {
	bus := newTestBus(t)
	require.NoError(t, bus.Close())

	_, err := bus.Subscribe(context.Background(), "any")
	assert.Error(t, err)
}
