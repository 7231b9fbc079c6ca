package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrenchwise/backend/internal/application/services"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

func publishEvent(t *testing.T, bus *fakeEventBus, channel string, eventType entities.LiveEventType, payload interface{}) {
	t.Helper()
	event, err := entities.NewLiveEvent(eventType, "subject", payload)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), channel, event))
}

func TestLiveUpdateService_SubscribeToMessages(t *testing.T) {
	bus := newFakeEventBus()
	convs := new(mockConversationRepo)
	svc := services.NewLiveUpdateService(bus, convs, nil)
	convs.On("GetByID", mock.Anything, "c1").Return(conversation("c1", "ann", "bob"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := svc.SubscribeToMessages(ctx, "ann", "c1")
	require.NoError(t, err)

	channel := providers.GetConversationChannel("c1")
	publishEvent(t, bus, channel, entities.LiveEventMessageRead, map[string]int{"count": 1})
	publishEvent(t, bus, channel, entities.LiveEventMessageCreated, &entities.Message{ID: "m1", Content: "hello"})

	select {
	case msg := <-stream:
		require.NotNil(t, msg)
		assert.Equal(t, "m1", msg.ID)
		assert.Equal(t, "hello", msg.Content)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}

	cancel()
	select {
	case _, ok := <-stream:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("stream not closed after cancel")
	}
}

func TestLiveUpdateService_SubscribeToMessagesForbidden(t *testing.T) {
	bus := newFakeEventBus()
	convs := new(mockConversationRepo)
	svc := services.NewLiveUpdateService(bus, convs, nil)
	convs.On("GetByID", mock.Anything, "c1").Return(conversation("c1", "bob", "cat"), nil)

	_, err := svc.SubscribeToMessages(context.Background(), "ann", "c1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
	assert.Zero(t, bus.subscriberCount(providers.GetConversationChannel("c1")))
}

func TestLiveUpdateService_SubscribeToBookingUpdates(t *testing.T) {
	bus := newFakeEventBus()
	svc := services.NewLiveUpdateService(bus, new(mockConversationRepo), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := svc.SubscribeToBookingUpdates(ctx, "owner")
	require.NoError(t, err)

	channel := providers.GetUserBookingsChannel("owner")
	publishEvent(t, bus, channel, entities.LiveEventBookingCreated, &entities.BookingRequest{ID: "b1", Status: entities.BookingStatusPending})
	publishEvent(t, bus, channel, entities.LiveEventBookingUpdated, &entities.BookingRequest{ID: "b1", Status: entities.BookingStatusAccepted})

	var got []entities.BookingStatus
	for len(got) < 2 {
		select {
		case b := <-stream:
			got = append(got, b.Status)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for booking updates")
		}
	}
	assert.Equal(t, []entities.BookingStatus{entities.BookingStatusPending, entities.BookingStatusAccepted}, got)
}

func TestLiveUpdateService_StreamClosesWithBus(t *testing.T) {
	bus := newFakeEventBus()
	svc := services.NewLiveUpdateService(bus, new(mockConversationRepo), nil)

	stream, err := svc.SubscribeToBookingUpdates(context.Background(), "owner")
	require.NoError(t, err)
	require.NoError(t, bus.Close())

	select {
	case _, ok := <-stream:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("stream not closed with bus")
	}
}
