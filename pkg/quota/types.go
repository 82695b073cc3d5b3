package quota

import (
	"time"

	"github.com/google/uuid"

	"github.com/sawitharvest/billing/pkg/plan"
)

// lifetimeWindow is the sentinel window key for resources counted over the
// whole account lifetime rather than per calendar month.
const lifetimeWindow = "-"

// Key identifies one counter: a user, a resource kind, and the enforcement
// window the count applies to.
type Key struct {
	UserID   uuid.UUID
	Resource plan.Resource
	Window   string
}

// KeyFor builds the counter key for a reservation happening at the given time.
// Monthly-scoped resources get a UTC year-month window so their counters reset
// naturally at month boundaries; lifetime-scoped resources share one window.
func KeyFor(userID uuid.UUID, res plan.Resource, now time.Time) Key {
	return Key{
		UserID:   userID,
		Resource: res,
		Window:   windowKey(res, now),
	}
}

func windowKey(res plan.Resource, now time.Time) string {
	if res == plan.ResourceHarvestEntries {
		return now.UTC().Format("2006-01")
	}
	return lifetimeWindow
}

// UsageInfo contains the current usage and ceiling for a resource.
type UsageInfo struct {
	Current int64 `json:"current"`
	Limit   int64 `json:"limit"`
}
