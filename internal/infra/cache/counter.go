package cache

import (
	"sync/atomic"
	"time"

	"github.com/maypok86/otter/v2"
)

// WindowCounter counts events per key inside a fixed window that starts at the
// first event for that key.
type WindowCounter struct {
	store  *otter.Cache[string, *uint32]
	window time.Duration
}

func NewWindowCounter(maxKeys int, window time.Duration) *WindowCounter {
	return &WindowCounter{
		window: window,
		store: otter.Must(&otter.Options[string, *uint32]{
			MaximumSize:      maxKeys,
			ExpiryCalculator: otter.ExpiryCreating[string, *uint32](window),
		}),
	}
}

func newCounterValue() (*uint32, bool) {
	return new(uint32), false
}

// Inc bumps the counter for key and returns the new count.
func (wc *WindowCounter) Inc(key string) uint32 {
	value, _ := wc.store.ComputeIfAbsent(key, newCounterValue)
	return atomic.AddUint32(value, 1)
}

// Allow increments and reports whether the count stays within limit.
func (wc *WindowCounter) Allow(key string, limit int) bool {
	return wc.Inc(key) <= uint32(limit)
}
