package uniqueness

import (
	"context"

	"github.com/msto63/formplan/pkg/core/cache"
)

// Cached fronts a Store with a TTL cache of taken values. Only positive
// answers are cached, so a value taken after a miss is seen immediately,
// while a released value may still read as taken until its entry expires.
type Cached struct {
	store Store
	taken *cache.Cache[string, struct{}]
}

// NewCached wraps store
func NewCached(store Store, cfg cache.Config) *Cached {
	return &Cached{
		store: store,
		taken: cache.New[string, struct{}](cfg),
	}
}

// Exists reports whether value is taken in scope
func (c *Cached) Exists(ctx context.Context, scope, value string) (bool, error) {
	key := scope + "\x00" + Key(value)
	if _, ok := c.taken.Get(key); ok {
		return true, nil
	}

	exists, err := c.store.Exists(ctx, scope, value)
	if err != nil {
		return false, err
	}
	if exists {
		c.taken.Set(key, struct{}{})
	}
	return exists, nil
}

// Stats returns the cache counters
func (c *Cached) Stats() cache.Stats {
	return c.taken.Stats()
}
