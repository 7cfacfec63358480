package service

import (
	"sync"
	"time"
)

// expiring holds one value for a fixed time after it was stored.
type expiring[T any] struct {
	mu       sync.RWMutex
	value    T
	ok       bool
	storedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

func newExpiring[T any](ttl time.Duration) *expiring[T] {
	return &expiring[T]{ttl: ttl, now: time.Now}
}

// Load returns the stored value, or false when nothing is stored or it has
// expired.
func (e *expiring[T]) Load() (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.ok || e.now().Sub(e.storedAt) > e.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (e *expiring[T]) Store(v T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = v
	e.ok = true
	e.storedAt = e.now()
}
