package payment

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. The map mutex doubles as the
// compare-and-set guard for Resolve.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]Transaction
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Transaction)}
}

func (s *MemoryStore) Save(ctx context.Context, txn *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[txn.ID] = *txn
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	return &row, nil
}

func (s *MemoryStore) Resolve(ctx context.Context, id string, to Status, resolvedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return false, ErrTransactionNotFound
	}
	if row.Status != StatusPending {
		return false, nil
	}

	row.Status = to
	row.ResolvedAt = &resolvedAt
	s.rows[id] = row
	return true, nil
}

func (s *MemoryStore) MarkActivated(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return ErrTransactionNotFound
	}
	row.Activated = true
	s.rows[id] = row
	return nil
}

func (s *MemoryStore) ListUnreconciled(ctx context.Context, cutoff time.Time, limit int) ([]*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Transaction
	for _, row := range s.rows {
		if row.Status == StatusSuccess && !row.Activated &&
			row.ResolvedAt != nil && row.ResolvedAt.Before(cutoff) {
			rowCopy := row
			out = append(out, &rowCopy)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ResolvedAt.Before(*out[j].ResolvedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
