package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
)

// CacheWarmingService preloads the highest ranked mechanics into the by-id cache
type CacheWarmingService struct {
	mechanicRepo repositories.MechanicRepository
	cache        providers.CacheProvider
	topN         int
}

// NewCacheWarmingService creates a new cache warming service.
// mechanicRepo should be the uncached repository so warming always reads storage.
func NewCacheWarmingService(mechanicRepo repositories.MechanicRepository, cache providers.CacheProvider, topN int) *CacheWarmingService {
	if topN <= 0 {
		topN = 50
	}
	return &CacheWarmingService{
		mechanicRepo: mechanicRepo,
		cache:        cache,
		topN:         topN,
	}
}

// WarmCache caches the top mechanics by trust score and returns how many were stored
func (s *CacheWarmingService) WarmCache(ctx context.Context) (int, error) {
	logger := observability.LoggerFromContext(ctx)

	mechanics, err := s.mechanicRepo.List(ctx, repositories.MechanicFilter{Limit: s.topN})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch top mechanics: %w", err)
	}

	warmed := 0
	for _, m := range mechanics {
		data, err := json.Marshal(m)
		if err != nil {
			logger.Warn().Err(err).Str("mechanic_id", m.ID).Msg("failed to marshal mechanic for warming")
			continue
		}
		if err := s.cache.Set(ctx, providers.MechanicCacheKey(m.ID), data, providers.MechanicCacheTTL); err != nil {
			return warmed, fmt.Errorf("failed to cache mechanic %s: %w", m.ID, err)
		}
		warmed++
	}

	logger.Debug().Int("count", warmed).Msg("warmed mechanic cache")
	return warmed, nil
}

// StartPeriodicWarming warms once, then again every interval until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	logger := observability.GetLogger()

	if _, err := s.WarmCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial cache warming failed")
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info().Msg("stopping cache warming")
				return
			case <-ticker.C:
				if _, err := s.WarmCache(ctx); err != nil {
					logger.Warn().Err(err).Msg("periodic cache warming failed")
				}
			}
		}
	}()
	logger.Info().Dur("interval", interval).Msg("started periodic cache warming")
}
