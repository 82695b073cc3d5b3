package plan

// Tier identifies a pricing tier. Tiers are strictly ordered:
// FREE < PRO < BUSINESS.
type Tier string

const (
	TierFree     Tier = "FREE"
	TierPro      Tier = "PRO"
	TierBusiness Tier = "BUSINESS"
)

// tierOrder defines the upgrade ordering used by catalog validation.
var tierOrder = []Tier{TierFree, TierPro, TierBusiness}

// Valid reports whether the tier is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierBusiness:
		return true
	}
	return false
}

// rank returns the position of the tier in the upgrade order, or -1.
func (t Tier) rank() int {
	for i, tier := range tierOrder {
		if t == tier {
			return i
		}
	}
	return -1
}

// Less reports whether t sits below other in the upgrade order.
func (t Tier) Less(other Tier) bool {
	return t.rank() < other.rank()
}

// Resource represents a countable user resource type.
type Resource string

const (
	ResourceBlocks  Resource = "blocks"
	ResourceWorkers Resource = "workers"
	// ResourceHarvestEntries is capped per calendar month, not per lifetime.
	ResourceHarvestEntries Resource = "harvest_entries"
)

// Resources lists every resource kind a plan must define a ceiling for.
var Resources = []Resource{ResourceBlocks, ResourceWorkers, ResourceHarvestEntries}

// Unlimited indicates no ceiling for a resource (-1 chosen for SQL compatibility).
const Unlimited int64 = -1

// Feature represents a plan-specific capability flag.
type Feature string

const (
	FeatureBasicDashboard   Feature = "basic_dashboard"
	FeatureEmailSupport     Feature = "email_support"
	FeatureExport           Feature = "export"
	FeatureWhatsApp         Feature = "whatsapp_notifications"
	FeaturePrioritySupport  Feature = "priority_support"
	FeatureAPI              Feature = "api"
	FeatureMobileApp        Feature = "mobile_app"
	FeatureWhiteLabel       Feature = "white_label"
	FeatureDedicatedSupport Feature = "dedicated_support"
)
