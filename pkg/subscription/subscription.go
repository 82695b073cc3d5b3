package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/sawitharvest/billing/pkg/plan"
	"github.com/sawitharvest/billing/pkg/statemachine"
)

// Status represents the current state of a subscription.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

// transitions encodes the subscription lifecycle: activation and lazy
// expiry alternate freely, cancellation only yields to a new successful
// payment (Activate overwrites the slot unconditionally).
var transitions = statemachine.New[Status]().
	Allow(StatusActive, StatusActive). // renewal overwrites in place
	Allow(StatusActive, StatusExpired).
	Allow(StatusExpired, StatusActive).
	Allow(StatusCancelled, StatusActive).
	Allow(StatusActive, StatusCancelled).
	Allow(StatusExpired, StatusCancelled)

// Subscription is a user's single subscription slot. UserID is the primary
// key: there is at most one row per user, overwritten on every successful
// payment rather than appended to a history table.
type Subscription struct {
	UserID           uuid.UUID
	Tier             plan.Tier
	StartDate        time.Time
	EndDate          time.Time
	AmountMinorUnits int64
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CancelledAt      *time.Time
}

// ExpiredAt reports whether the subscription should be treated as expired
// at the given time. Validity is derived from EndDate on every read, so no
// background sweep has to mutate the row.
func (s *Subscription) ExpiredAt(now time.Time) bool {
	if s.Status == StatusExpired {
		return true
	}
	return s.Status == StatusActive && now.After(s.EndDate)
}

// IsActive reports whether the subscription entitles the user to its tier
// at the given time.
func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == StatusActive && !now.After(s.EndDate)
}
