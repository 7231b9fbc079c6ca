package services

import (
	"context"
	"fmt"
	"time"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
)

// CacheInvalidationService evicts cached mechanic data when a mechanic changes
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins listening for mechanic updates
func (s *CacheInvalidationService) Start() error {
	events, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelMechanicUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to mechanic updates: %w", err)
	}

	go s.processEvents(events)
	observability.GetLogger().Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops listening and waits for the worker to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	<-s.done
	observability.GetLogger().Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(events <-chan *entities.LiveEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == nil || event.Type != entities.LiveEventMechanicUpdated {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.LiveEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.InvalidateMechanic(ctx, event.SubjectID); err != nil {
		observability.GetLogger().Warn().Err(err).
			Str("event_id", event.ID).
			Str("mechanic_id", event.SubjectID).
			Msg("cache invalidation failed")
	}
}

// InvalidateMechanic drops the stored mechanic record and every cached HTTP
// response that could list it. Search results that embed trust scores go too.
func (s *CacheInvalidationService) InvalidateMechanic(ctx context.Context, mechanicID string) error {
	if mechanicID != "" {
		if err := s.cache.Delete(ctx, providers.MechanicCacheKey(mechanicID)); err != nil {
			return fmt.Errorf("failed to evict mechanic %s: %w", mechanicID, err)
		}
	}
	pattern := providers.HTTPCachePrefix + "*mechanics*"
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
	}
	return nil
}
