package plan

import "slices"

// Plan describes a pricing tier and its resource/feature constraints.
// Plans are immutable once loaded into a Catalog.
type Plan struct {
	Tier            Tier
	Name            string
	Description     string
	PriceMinorUnits int64              // monthly price in the smallest currency unit
	Limits          map[Resource]int64 // -1 represents unlimited
	Features        []Feature
}

// HasFeature reports whether the plan enables the given feature flag.
func (p Plan) HasFeature(f Feature) bool {
	return slices.Contains(p.Features, f)
}

// Limit returns the ceiling for the given resource.
// The second return value is false when the plan does not define
// a ceiling for the resource, which is a configuration error.
func (p Plan) Limit(res Resource) (int64, bool) {
	limit, ok := p.Limits[res]
	return limit, ok
}
