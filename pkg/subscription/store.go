package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store defines subscription persistence. Each user has exactly one
// subscription slot, so UserID serves as the primary key.
type Store interface {
	// Get retrieves a subscription by user ID.
	// Returns ErrSubscriptionNotFound if no row exists.
	Get(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	// Save creates or overwrites the subscription row for its UserID.
	Save(ctx context.Context, sub *Subscription) error
}
