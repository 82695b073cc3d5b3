package payment

import (
	"context"
	"time"
)

// Store persists payment transactions. The Resolve operation is the
// concurrency authority for the exactly-once transition away from PENDING:
// it must behave as a compare-and-set keyed by transaction ID.
type Store interface {
	// Save persists a newly created transaction.
	Save(ctx context.Context, txn *Transaction) error

	// Get retrieves a transaction by ID.
	// Returns ErrTransactionNotFound if the ID is unknown.
	Get(ctx context.Context, id string) (*Transaction, error)

	// Resolve atomically moves the transaction from PENDING to the given
	// terminal status and stamps resolvedAt. Returns false without
	// changing anything when the transaction is no longer PENDING, so of
	// two concurrent callers exactly one observes true.
	Resolve(ctx context.Context, id string, to Status, resolvedAt time.Time) (bool, error)

	// MarkActivated records that the subscription side effect of a
	// SUCCESS transaction has been applied.
	MarkActivated(ctx context.Context, id string) error

	// ListUnreconciled returns SUCCESS transactions resolved before the
	// cutoff whose activation marker is still unset, oldest first.
	// A non-positive limit means no limit.
	ListUnreconciled(ctx context.Context, cutoff time.Time, limit int) ([]*Transaction, error)
}
