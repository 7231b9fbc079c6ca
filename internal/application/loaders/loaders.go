// Package loaders batches the user and mechanic lookups that denormalize
// reviews, posts and conversations.
package loaders

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// batchWait is how long a loader collects keys before issuing a batch
const batchWait = 2 * time.Millisecond

// Loaders contains the per-request dataloaders
type Loaders struct {
	UserLoader     *dataloader.Loader[string, *entities.User]
	MechanicLoader *dataloader.Loader[string, *entities.Mechanic]
}

// NewLoaders creates a fresh set of loaders. Loaders cache for their whole
// lifetime, so create one set per request.
func NewLoaders(userRepo repositories.UserRepository, mechanicRepo repositories.MechanicRepository) *Loaders {
	return &Loaders{
		UserLoader: dataloader.NewBatchedLoader(
			func(ctx context.Context, keys []string) []*dataloader.Result[*entities.User] {
				users, err := userRepo.GetByIDs(ctx, keys)
				return collect(keys, users, err, func(u *entities.User) string { return u.ID }, "user")
			},
			dataloader.WithWait[string, *entities.User](batchWait),
		),
		MechanicLoader: dataloader.NewBatchedLoader(
			func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Mechanic] {
				mechanics, err := mechanicRepo.GetByIDs(ctx, keys)
				return collect(keys, mechanics, err, func(m *entities.Mechanic) string { return m.ID }, "mechanic")
			},
			dataloader.WithWait[string, *entities.Mechanic](batchWait),
		),
	}
}

func collect[V any](keys []string, values []V, err error, id func(V) string, kind string) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], len(keys))

	byID := make(map[string]V, len(values))
	if err == nil {
		for _, v := range values {
			byID[id(v)] = v
		}
	}

	for i, key := range keys {
		if err != nil {
			results[i] = &dataloader.Result[V]{Error: err}
		} else if v, ok := byID[key]; ok {
			results[i] = &dataloader.Result[V]{Data: v}
		} else {
			results[i] = &dataloader.Result[V]{Error: fmt.Errorf("%s %s not found", kind, key)}
		}
	}
	return results
}

// Users loads users by id. Ids that fail to load are absent from the result.
func (l *Loaders) Users(ctx context.Context, ids []string) map[string]*entities.User {
	return loadMany(ctx, l.UserLoader, ids)
}

// Mechanics loads mechanics by id. Ids that fail to load are absent from the result.
func (l *Loaders) Mechanics(ctx context.Context, ids []string) map[string]*entities.Mechanic {
	return loadMany(ctx, l.MechanicLoader, ids)
}

func loadMany[V comparable](ctx context.Context, loader *dataloader.Loader[string, V], ids []string) map[string]V {
	out := make(map[string]V, len(ids))
	keys := unique(ids)
	if len(keys) == 0 {
		return out
	}

	var zero V
	values, _ := loader.LoadMany(ctx, keys)()
	for i, key := range keys {
		if i < len(values) && values[i] != zero {
			out[key] = values[i]
		}
	}
	return out
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// For returns the loaders attached to ctx, or nil
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}
