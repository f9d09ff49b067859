package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/maypok86/otter/v2"
)

// Memory is a bounded TTL cache keyed by K.
type Memory[K comparable, V any] struct {
	store *otter.Cache[K, V]
	name  string
}

func NewMemory[K comparable, V any](name string, maxSize int, ttl time.Duration) *Memory[K, V] {
	return &Memory[K, V]{
		name: name,
		store: otter.Must(&otter.Options[K, V]{
			MaximumSize:      maxSize,
			ExpiryCalculator: otter.ExpiryWriting[K, V](ttl),
		}),
	}
}

func (m *Memory[K, V]) Get(ctx context.Context, key K) (V, bool) {
	v, ok := m.store.GetIfPresent(key)
	if !ok {
		slog.DebugContext(ctx, "Cache miss", "cache", m.name, "key", key)
	}
	return v, ok
}

func (m *Memory[K, V]) Set(key K, value V) {
	m.store.Set(key, value)
}

func (m *Memory[K, V]) Invalidate(key K) {
	m.store.Invalidate(key)
}

// GetOrLoad returns the cached value or calls load and caches a successful result.
func (m *Memory[K, V]) GetOrLoad(ctx context.Context, key K, load func(context.Context, K) (V, error)) (V, error) {
	if v, ok := m.Get(ctx, key); ok {
		return v, nil
	}
	v, err := load(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}
	m.Set(key, v)
	return v, nil
}
