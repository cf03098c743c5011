package packages

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/arthur-debert/deployer/pkg/errors"
)

// Cache memoizes values by key. Concurrent misses for one key run compute
// once and share its result. Errors are returned to every waiter but not
// stored, so a later call retries.
type Cache[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	group singleflight.Group
}

// NewCache returns an empty cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{items: make(map[string]T)}
}

// Get returns the stored value for key.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[strings.ToLower(key)]
	return v, ok
}

// GetOrCompute returns the stored value for key, computing it on a miss.
// The shared compute runs detached from the cancellation of whichever
// caller started it, so one canceled waiter does not fail the others;
// each caller stops waiting when its own ctx is done.
func (c *Cache[T]) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (T, error)) (T, error) {
	key = strings.ToLower(key)
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := compute(shared)
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		c.items[key] = v
		c.mu.Unlock()
		return v, nil
	})

	select {
	case res := <-ch:
		out, _ := res.Val.(T)
		return out, res.Err
	case <-ctx.Done():
		var zero T
		return zero, errors.Wrap(ctx.Err(), errors.ErrCanceled, "waiting for "+key)
	}
}

// Forget drops key.
func (c *Cache[T]) Forget(key string) {
	key = strings.ToLower(key)
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	c.group.Forget(key)
}

// Len returns the number of stored values.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
