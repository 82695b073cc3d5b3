package plan

// Config overrides catalog prices and ceilings from the environment.
// Defaults mirror DefaultPlans, so a zero-configured deployment serves the
// built-in catalog. Ceilings use -1 for unlimited; validation at catalog
// construction still applies, so a misconfigured override fails startup.
type Config struct {
	ProPrice      int64 `env:"PLAN_PRO_PRICE" envDefault:"149000"`
	BusinessPrice int64 `env:"PLAN_BUSINESS_PRICE" envDefault:"499000"`

	FreeBlocks         int64 `env:"PLAN_FREE_BLOCKS" envDefault:"1"`
	FreeWorkers        int64 `env:"PLAN_FREE_WORKERS" envDefault:"3"`
	FreeHarvestEntries int64 `env:"PLAN_FREE_HARVEST_ENTRIES" envDefault:"100"`

	ProBlocks         int64 `env:"PLAN_PRO_BLOCKS" envDefault:"3"`
	ProWorkers        int64 `env:"PLAN_PRO_WORKERS" envDefault:"-1"`
	ProHarvestEntries int64 `env:"PLAN_PRO_HARVEST_ENTRIES" envDefault:"-1"`
}

// PlansFromConfig applies the configured prices and ceilings onto the
// built-in catalog. The business tier stays all-unlimited; its ceilings are
// not overridable because lowering them would break the tier ordering
// invariant for every resource the lower tiers leave unlimited.
func PlansFromConfig(cfg Config) []Plan {
	plans := DefaultPlans()
	for i := range plans {
		switch plans[i].Tier {
		case TierFree:
			plans[i].Limits[ResourceBlocks] = cfg.FreeBlocks
			plans[i].Limits[ResourceWorkers] = cfg.FreeWorkers
			plans[i].Limits[ResourceHarvestEntries] = cfg.FreeHarvestEntries
		case TierPro:
			plans[i].PriceMinorUnits = cfg.ProPrice
			plans[i].Limits[ResourceBlocks] = cfg.ProBlocks
			plans[i].Limits[ResourceWorkers] = cfg.ProWorkers
			plans[i].Limits[ResourceHarvestEntries] = cfg.ProHarvestEntries
		case TierBusiness:
			plans[i].PriceMinorUnits = cfg.BusinessPrice
		}
	}
	return plans
}
