package quota

import (
	"context"
	"sync"
)

// counter is one per-key cell; its own mutex serializes the
// check-then-increment without contending with other keys.
type counter struct {
	mu sync.Mutex
	n  int64
}

// MemoryStore is an in-process Store.
// A read-write mutex guards only the key->counter map; the conditional
// increment itself is serialized per key, so reservations for different
// users or resource kinds never contend with each other.
type MemoryStore struct {
	mu       sync.RWMutex
	counters map[Key]*counter
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[Key]*counter)}
}

func (s *MemoryStore) get(key Key, create bool) *counter {
	s.mu.RLock()
	c, ok := s.counters[key]
	s.mu.RUnlock()
	if ok || !create {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check: another goroutine may have created it between the locks.
	if c, ok = s.counters[key]; ok {
		return c
	}
	c = &counter{}
	s.counters[key] = c
	return c
}

func (s *MemoryStore) Reserve(ctx context.Context, key Key, ceiling int64) (bool, error) {
	c := s.get(key, true)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n >= ceiling {
		return false, nil
	}
	c.n++
	return true, nil
}

func (s *MemoryStore) Release(ctx context.Context, key Key) error {
	c := s.get(key, false)
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n > 0 {
		c.n--
	}
	return nil
}

func (s *MemoryStore) Count(ctx context.Context, key Key) (int64, error) {
	c := s.get(key, false)
	if c == nil {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n, nil
}
