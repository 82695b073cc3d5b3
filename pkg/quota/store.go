package quota

import "context"

// Store persists quota counters and provides the atomic conditional
// increment the ledger is built on. Implementations must guarantee that
// concurrent Reserve calls for the same key never both succeed when only
// one unit remains below the ceiling.
type Store interface {
	// Reserve atomically increments the counter for key if the current
	// count is below ceiling. Returns false without changing anything
	// when the counter is already at or above the ceiling.
	Reserve(ctx context.Context, key Key, ceiling int64) (bool, error)

	// Release decrements the counter for key, flooring at zero.
	// Releasing a counter that was never reserved is a no-op.
	Release(ctx context.Context, key Key) error

	// Count returns the current counter value for key (zero if absent).
	Count(ctx context.Context, key Key) (int64, error)
}
