package services

import (
	"context"

	"github.com/wrenchwise/backend/internal/application/loaders"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
)

// loadersFor returns the request's loaders, or a fresh set when the caller did not attach any
func loadersFor(ctx context.Context, users repositories.UserRepository, mechanics repositories.MechanicRepository) *loaders.Loaders {
	if l := loaders.For(ctx); l != nil {
		return l
	}
	return loaders.NewLoaders(users, mechanics)
}

// publish sends a live event on each channel. Failures are logged; callers never fail on them.
func publish(ctx context.Context, bus providers.EventBus, eventType entities.LiveEventType, subjectID string, payload interface{}, channels ...string) {
	if bus == nil {
		return
	}
	logger := observability.LoggerFromContext(ctx)

	event, err := entities.NewLiveEvent(eventType, subjectID, payload)
	if err != nil {
		logger.Warn().Err(err).Str("type", string(eventType)).Msg("failed to build live event")
		return
	}
	for _, ch := range channels {
		if err := bus.Publish(ctx, ch, event); err != nil {
			logger.Warn().Err(err).Str("channel", ch).Str("type", string(eventType)).Msg("failed to publish live event")
		}
	}
}
