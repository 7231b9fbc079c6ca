package loaders

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
)

type countingUsers struct {
	repositories.UserRepository
	calls atomic.Int32
	err   error
}

func (c *countingUsers) GetByIDs(_ context.Context, ids []string) ([]*entities.User, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	out := make([]*entities.User, 0, len(ids))
	for _, id := range ids {
		if id == "ghost" {
			continue
		}
		out = append(out, &entities.User{ID: id, Name: "name-" + id})
	}
	return out, nil
}

func TestLoaders_UsersBatchesAndSkipsMissing(t *testing.T) {
	repo := &countingUsers{}
	l := NewLoaders(repo, nil)

	got := l.Users(context.Background(), []string{"u-1", "u-2", "u-1", "ghost", ""})

	assert.Len(t, got, 2)
	assert.Equal(t, "name-u-1", got["u-1"].Name)
	assert.Nil(t, got["ghost"])
	assert.Equal(t, int32(1), repo.calls.Load())

	// cached on the second call
	l.Users(context.Background(), []string{"u-2"})
	assert.Equal(t, int32(1), repo.calls.Load())
}

func TestLoaders_UsersRepositoryError(t *testing.T) {
	l := NewLoaders(&countingUsers{err: errors.New("db down")}, nil)

	assert.Empty(t, l.Users(context.Background(), []string{"u-1"}))
}

func TestLoaders_Context(t *testing.T) {
	assert.Nil(t, For(context.Background()))

	l := NewLoaders(&countingUsers{}, nil)
	assert.Same(t, l, For(WithLoaders(context.Background(), l)))
}
