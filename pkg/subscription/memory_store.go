package subscription

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store, suitable for tests and single-node
// deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]Subscription
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[uuid.UUID]Subscription)}
}

func (s *MemoryStore) Get(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[userID]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	// Copy out so callers cannot mutate the stored row.
	return &row, nil
}

func (s *MemoryStore) Save(ctx context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[sub.UserID] = *sub
	return nil
}
