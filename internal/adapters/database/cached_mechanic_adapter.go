package database

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
)

// CachedMechanicAdapter wraps a MechanicRepository with read-through caching of single records.
// List is never cached; its results depend on the caller's position.
type CachedMechanicAdapter struct {
	adapter repositories.MechanicRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedMechanicAdapter creates a new cached mechanic adapter
func NewCachedMechanicAdapter(adapter repositories.MechanicRepository, cache providers.CacheProvider, metrics *observability.Metrics) repositories.MechanicRepository {
	return &CachedMechanicAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

// Create passes through to storage
func (a *CachedMechanicAdapter) Create(ctx context.Context, mechanic *entities.Mechanic) error {
	return a.adapter.Create(ctx, mechanic)
}

// GetByID retrieves a mechanic, serving from cache when possible
func (a *CachedMechanicAdapter) GetByID(ctx context.Context, id string) (*entities.Mechanic, error) {
	if m, ok := a.cached(ctx, id); ok {
		return m, nil
	}

	m, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.store(ctx, m)
	return m, nil
}

// GetByIDs serves what it can from cache and loads the rest in one query
func (a *CachedMechanicAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Mechanic, error) {
	if len(ids) == 0 {
		return []*entities.Mechanic{}, nil
	}

	found := make(map[string]*entities.Mechanic, len(ids))
	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if m, ok := a.cached(ctx, id); ok {
			found[id] = m
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		loaded, err := a.adapter.GetByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, m := range loaded {
			found[m.ID] = m
			a.store(ctx, m)
		}
	}

	ordered := make([]*entities.Mechanic, 0, len(found))
	for _, id := range ids {
		if m, ok := found[id]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered, nil
}

// List always reads from storage
func (a *CachedMechanicAdapter) List(ctx context.Context, filter repositories.MechanicFilter) ([]*entities.Mechanic, error) {
	return a.adapter.List(ctx, filter)
}

// RecomputeTrustScore writes through and evicts the cached record
func (a *CachedMechanicAdapter) RecomputeTrustScore(ctx context.Context, id string, score repositories.TrustScorer) error {
	if err := a.adapter.RecomputeTrustScore(ctx, id, score); err != nil {
		return err
	}
	if err := a.cache.Delete(ctx, providers.MechanicCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("mechanic_id", id).Msg("failed to evict cached mechanic")
	}
	return nil
}

func (a *CachedMechanicAdapter) cached(ctx context.Context, id string) (*entities.Mechanic, bool) {
	data, err := a.cache.Get(ctx, providers.MechanicCacheKey(id))
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			log.Warn().Err(err).Str("mechanic_id", id).Msg("mechanic cache read failed")
		}
		observability.RecordCacheMiss(ctx, a.metrics, "mechanic")
		return nil, false
	}

	var m entities.Mechanic
	if err := json.Unmarshal(data, &m); err != nil {
		log.Warn().Err(err).Str("mechanic_id", id).Msg("failed to unmarshal cached mechanic")
		observability.RecordCacheMiss(ctx, a.metrics, "mechanic")
		return nil, false
	}
	observability.RecordCacheHit(ctx, a.metrics, "mechanic")
	return &m, true
}

func (a *CachedMechanicAdapter) store(ctx context.Context, m *entities.Mechanic) {
	data, err := json.Marshal(m)
	if err != nil {
		log.Warn().Err(err).Str("mechanic_id", m.ID).Msg("failed to marshal mechanic for cache")
		return
	}
	if err := a.cache.Set(ctx, providers.MechanicCacheKey(m.ID), data, providers.MechanicCacheTTL); err != nil {
		log.Warn().Err(err).Str("mechanic_id", m.ID).Msg("failed to cache mechanic")
	}
}
