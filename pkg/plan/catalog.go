package plan

import (
	"context"
	"errors"
	"fmt"
)

// Source defines how plans are loaded into a Catalog.
type Source interface {
	Load(ctx context.Context) (map[Tier]Plan, error)
}

// Catalog holds the validated, immutable set of plans.
// The internal map is never modified after construction, so a Catalog
// is safe for concurrent use without locking.
type Catalog struct {
	plans map[Tier]Plan
}

// NewCatalog loads plans from the source and validates the configuration.
// Validation failures abort startup: a bad catalog must never serve quota
// or pricing decisions.
func NewCatalog(ctx context.Context, src Source) (*Catalog, error) {
	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	if err := validatePlans(plans); err != nil {
		return nil, err
	}

	return &Catalog{plans: plans}, nil
}

// Get returns the plan for the given tier.
func (c *Catalog) Get(tier Tier) (Plan, error) {
	p, ok := c.plans[tier]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return p, nil
}

// Price returns the monthly price for the given tier in minor units.
func (c *Catalog) Price(tier Tier) (int64, error) {
	p, err := c.Get(tier)
	if err != nil {
		return 0, err
	}
	return p.PriceMinorUnits, nil
}

// Limit returns the ceiling for a resource under the given tier.
// A missing ceiling definition is a programming error surfaced as
// ErrInvalidPlanConfiguration; validation makes this unreachable for
// catalogs built through NewCatalog.
func (c *Catalog) Limit(tier Tier, res Resource) (int64, error) {
	p, err := c.Get(tier)
	if err != nil {
		return 0, err
	}
	limit, ok := p.Limit(res)
	if !ok {
		return 0, errors.Join(ErrInvalidPlanConfiguration,
			fmt.Errorf("plan %s has no ceiling for resource %q", tier, res))
	}
	return limit, nil
}

// validatePlans checks catalog invariants at load time:
// every known tier is present, prices are non-negative and non-decreasing
// across the upgrade order, every resource has a ceiling that is either
// the Unlimited sentinel or strictly positive, and ceilings never decrease
// from one tier to the next.
func validatePlans(plans map[Tier]Plan) error {
	for tier, p := range plans {
		if !tier.Valid() {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("unknown tier %q", tier))
		}
		if p.Tier != tier {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("tier mismatch: map key %s != plan.Tier %s", tier, p.Tier))
		}
		if p.PriceMinorUnits < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has negative price: %d", tier, p.PriceMinorUnits))
		}
		for _, res := range Resources {
			limit, ok := p.Limits[res]
			if !ok {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %s missing ceiling for resource %q", tier, res))
			}
			if limit != Unlimited && limit <= 0 {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %s has invalid ceiling %d for resource %q", tier, limit, res))
			}
		}
	}

	for i := 0; i < len(tierOrder); i++ {
		if _, ok := plans[tierOrder[i]]; !ok {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("catalog missing tier %s", tierOrder[i]))
		}
	}

	// Ceilings and prices must be non-decreasing across FREE -> PRO -> BUSINESS.
	for i := 1; i < len(tierOrder); i++ {
		lower, higher := plans[tierOrder[i-1]], plans[tierOrder[i]]
		if higher.PriceMinorUnits < lower.PriceMinorUnits {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("price decreases from %s to %s", lower.Tier, higher.Tier))
		}
		for _, res := range Resources {
			lo, hi := lower.Limits[res], higher.Limits[res]
			if lo == Unlimited && hi != Unlimited {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("ceiling for %q decreases from unlimited (%s) to %d (%s)", res, lower.Tier, hi, higher.Tier))
			}
			if lo != Unlimited && hi != Unlimited && hi < lo {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("ceiling for %q decreases from %d (%s) to %d (%s)", res, lo, lower.Tier, hi, higher.Tier))
			}
		}
	}

	return nil
}
