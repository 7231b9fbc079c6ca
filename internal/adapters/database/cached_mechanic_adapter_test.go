package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrenchwise/backend/internal/adapters/cache"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	redisclient "github.com/wrenchwise/backend/internal/infrastructure/clients/redis"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

type mockMechanicRepo struct {
	mock.Mock
}

func (m *mockMechanicRepo) Create(ctx context.Context, mechanic *entities.Mechanic) error {
	return m.Called(ctx, mechanic).Error(0)
}

func (m *mockMechanicRepo) GetByID(ctx context.Context, id string) (*entities.Mechanic, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*entities.Mechanic), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMechanicRepo) GetByIDs(ctx context.Context, ids []string) ([]*entities.Mechanic, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*entities.Mechanic), args.Error(1)
}

func (m *mockMechanicRepo) List(ctx context.Context, filter repositories.MechanicFilter) ([]*entities.Mechanic, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entities.Mechanic), args.Error(1)
}

func (m *mockMechanicRepo) RecomputeTrustScore(ctx context.Context, id string, score repositories.TrustScorer) error {
	return m.Called(ctx, id, score).Error(0)
}

func newCachedMechanics(t *testing.T) (*mockMechanicRepo, repositories.MechanicRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &mockMechanicRepo{}
	return repo, NewCachedMechanicAdapter(repo, cache.NewRedisAdapter(redisclient.NewFromClient(rdb)), nil), mr
}

func TestCachedMechanicAdapter_GetByIDReadsThrough(t *testing.T) {
	repo, cached, mr := newCachedMechanics(t)
	ctx := context.Background()

	repo.On("GetByID", mock.Anything, "m-1").
		Return(&entities.Mechanic{ID: "m-1", BusinessName: "Brake Masters", TrustScore: 8}, nil).Once()

	first, err := cached.GetByID(ctx, "m-1")
	require.NoError(t, err)
	second, err := cached.GetByID(ctx, "m-1")
	require.NoError(t, err)

	assert.Equal(t, first.BusinessName, second.BusinessName)
	assert.True(t, mr.Exists(providers.MechanicCacheKey("m-1")))
	repo.AssertExpectations(t)
}

func TestCachedMechanicAdapter_GetByIDErrorNotCached(t *testing.T) {
	repo, cached, mr := newCachedMechanics(t)

	repo.On("GetByID", mock.Anything, "gone").Return(nil, apperrors.NewNotFoundError("mechanic not found"))

	_, err := cached.GetByID(context.Background(), "gone")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.False(t, mr.Exists(providers.MechanicCacheKey("gone")))
}

func TestCachedMechanicAdapter_GetByIDsMixesCacheAndStorage(t *testing.T) {
	repo, cached, _ := newCachedMechanics(t)
	ctx := context.Background()

	repo.On("GetByID", mock.Anything, "m-2").Return(&entities.Mechanic{ID: "m-2"}, nil).Once()
	_, err := cached.GetByID(ctx, "m-2")
	require.NoError(t, err)

	repo.On("GetByIDs", mock.Anything, []string{"m-1", "m-3"}).
		Return([]*entities.Mechanic{{ID: "m-1"}, {ID: "m-3"}}, nil).Once()

	got, err := cached.GetByIDs(ctx, []string{"m-1", "m-2", "m-3"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"m-1", "m-2", "m-3"}, []string{got[0].ID, got[1].ID, got[2].ID})
	repo.AssertExpectations(t)
}

func TestCachedMechanicAdapter_RecomputeTrustScoreEvicts(t *testing.T) {
	repo, cached, mr := newCachedMechanics(t)
	ctx := context.Background()

	repo.On("GetByID", mock.Anything, "m-1").Return(&entities.Mechanic{ID: "m-1", TrustScore: 5}, nil).Once()
	_, err := cached.GetByID(ctx, "m-1")
	require.NoError(t, err)
	require.True(t, mr.Exists(providers.MechanicCacheKey("m-1")))

	repo.On("RecomputeTrustScore", mock.Anything, "m-1", mock.Anything).Return(nil).Once()
	require.NoError(t, cached.RecomputeTrustScore(ctx, "m-1", func(sum, count int) float64 { return 9.1 }))

	assert.False(t, mr.Exists(providers.MechanicCacheKey("m-1")))
	repo.AssertExpectations(t)
}
