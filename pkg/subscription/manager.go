package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sawitharvest/billing/pkg/plan"
)

// Manager is the single source of truth for what tier a user is entitled
// to right now. Expiry is derived lazily from EndDate on every read, so a
// read never has to write the row back.
type Manager struct {
	store Store
	now   func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock overrides the time source for expiry checks. Intended for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a Manager. Panics if store is nil to fail fast during
// initialization.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	if store == nil {
		panic("subscription: store is required")
	}

	m := &Manager{store: store, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EffectiveTier returns the tier the user is entitled to right now.
// No subscription row, an expired subscription, or a cancelled one all
// resolve to the free tier.
func (m *Manager) EffectiveTier(ctx context.Context, userID uuid.UUID) (plan.Tier, error) {
	sub, err := m.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return plan.TierFree, nil
		}
		return "", err
	}

	if sub.Status == StatusCancelled || sub.ExpiredAt(m.now()) {
		return plan.TierFree, nil
	}
	return sub.Tier, nil
}

// Activate upserts the user's subscription slot: the tier takes effect
// immediately and the validity window restarts at one calendar month from
// now. A new successful payment for a lower tier overwrites the higher one
// mid-cycle; that matches the observed billing behavior and is flagged as a
// policy choice rather than corrected here.
func (m *Manager) Activate(ctx context.Context, userID uuid.UUID, tier plan.Tier, amountMinorUnits int64) error {
	if !tier.Valid() {
		return ErrInvalidTier
	}

	now := m.now().UTC()
	sub := &Subscription{
		UserID:           userID,
		Tier:             tier,
		StartDate:        now,
		EndDate:          now.AddDate(0, 1, 0),
		AmountMinorUnits: amountMinorUnits,
		Status:           StatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if prev, err := m.store.Get(ctx, userID); err == nil {
		sub.CreatedAt = prev.CreatedAt
		if err := transitions.Transition(effectiveStatus(prev, now), StatusActive); err != nil {
			return err
		}
	} else if !errors.Is(err, ErrSubscriptionNotFound) {
		return err
	}

	return m.store.Save(ctx, sub)
}

// Cancel flips the subscription to CANCELLED. Reserved for explicit
// cancellation flows; the payment path never calls it.
func (m *Manager) Cancel(ctx context.Context, userID uuid.UUID) error {
	sub, err := m.store.Get(ctx, userID)
	if err != nil {
		return err
	}

	now := m.now().UTC()
	if err := transitions.Transition(effectiveStatus(sub, now), StatusCancelled); err != nil {
		return errors.Join(ErrAlreadyCancelled, err)
	}

	sub.Status = StatusCancelled
	sub.CancelledAt = &now
	sub.UpdatedAt = now
	return m.store.Save(ctx, sub)
}

// Get returns the user's subscription with lazy expiry applied to the
// returned copy. The stored row is left untouched.
func (m *Manager) Get(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	sub, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub.Status = effectiveStatus(sub, m.now())
	return sub, nil
}

// effectiveStatus derives the status a reader should see at the given time.
func effectiveStatus(sub *Subscription, now time.Time) Status {
	if sub.Status == StatusActive && sub.ExpiredAt(now) {
		return StatusExpired
	}
	return sub.Status
}
