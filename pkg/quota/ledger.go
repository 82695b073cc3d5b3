package quota

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sawitharvest/billing/pkg/plan"
)

// TierResolver returns the tier a user is entitled to right now.
// The subscription manager provides the production implementation.
type TierResolver func(ctx context.Context, userID uuid.UUID) (plan.Tier, error)

// Ledger answers whether one more unit of a resource may be created for a
// user, and accounts for it atomically when the answer is yes. The counter
// is incremented before the caller persists the actual resource, so the
// ledger is always a conservative upper bound on real usage.
type Ledger struct {
	catalog *plan.Catalog
	store   Store
	tiers   TierResolver
	now     func() time.Time
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithClock overrides the time source. Intended for tests that need to
// cross a month boundary.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLedger creates a Ledger. Panics if any required dependency is nil to
// fail fast during initialization.
func NewLedger(catalog *plan.Catalog, store Store, tiers TierResolver, opts ...LedgerOption) *Ledger {
	if catalog == nil {
		panic("quota: plan catalog is required")
	}
	if store == nil {
		panic("quota: counter store is required")
	}
	if tiers == nil {
		panic("quota: tier resolver is required")
	}

	l := &Ledger{
		catalog: catalog,
		store:   store,
		tiers:   tiers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Reserve accounts for one unit of the resource under the user's current
// tier. Returns *QuotaExceededError when the counter is at the ceiling.
// Unlimited resources succeed without touching the counter.
func (l *Ledger) Reserve(ctx context.Context, userID uuid.UUID, res plan.Resource) error {
	tier, err := l.tiers(ctx, userID)
	if err != nil {
		return err
	}

	ceiling, err := l.catalog.Limit(tier, res)
	if err != nil {
		if errors.Is(err, plan.ErrInvalidPlanConfiguration) {
			return errors.Join(ErrUnknownResource, err)
		}
		return err
	}

	if ceiling == plan.Unlimited {
		return nil
	}

	ok, err := l.store.Reserve(ctx, KeyFor(userID, res, l.now()), ceiling)
	if err != nil {
		return err
	}
	if !ok {
		return &QuotaExceededError{Resource: res, Ceiling: ceiling}
	}
	return nil
}

// Release gives back one previously reserved unit. It is the compensating
// action for a downstream persistence failure: the ledger cannot see the
// resource store, so it trusts the caller to report the failure. Releasing
// more than was reserved is a no-op.
func (l *Ledger) Release(ctx context.Context, userID uuid.UUID, res plan.Resource) error {
	tier, err := l.tiers(ctx, userID)
	if err != nil {
		return err
	}

	ceiling, err := l.catalog.Limit(tier, res)
	if err != nil {
		if errors.Is(err, plan.ErrInvalidPlanConfiguration) {
			return errors.Join(ErrUnknownResource, err)
		}
		return err
	}

	// Unlimited kinds never touched the counter on the way in.
	if ceiling == plan.Unlimited {
		return nil
	}

	return l.store.Release(ctx, KeyFor(userID, res, l.now()))
}

// GetUsage returns the current count and ceiling for one resource.
func (l *Ledger) GetUsage(ctx context.Context, userID uuid.UUID, res plan.Resource) (used, limit int64, err error) {
	tier, err := l.tiers(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	ceiling, err := l.catalog.Limit(tier, res)
	if err != nil {
		return 0, 0, err
	}

	current, err := l.store.Count(ctx, KeyFor(userID, res, l.now()))
	if err != nil {
		return 0, 0, err
	}
	return current, ceiling, nil
}

// Usage returns counts and ceilings for every resource kind, for
// dashboard-style readers. Counter read failures leave that entry at zero
// rather than failing the whole report.
func (l *Ledger) Usage(ctx context.Context, userID uuid.UUID) (map[plan.Resource]UsageInfo, error) {
	tier, err := l.tiers(ctx, userID)
	if err != nil {
		return nil, err
	}

	p, err := l.catalog.Get(tier)
	if err != nil {
		return nil, err
	}

	result := make(map[plan.Resource]UsageInfo, len(p.Limits))
	for res, ceiling := range p.Limits {
		info := UsageInfo{Limit: ceiling}
		if current, err := l.store.Count(ctx, KeyFor(userID, res, l.now())); err == nil {
			info.Current = current
		}
		result[res] = info
	}
	return result, nil
}
