package plan

import (
	"context"
	"maps"
	"slices"
	"sync"
)

type inMemSource struct {
	mu    sync.RWMutex
	plans map[Tier]Plan
}

// NewInMemSource returns an in-memory Source with a deep copy of the given plans.
// Deep copying prevents external modifications from affecting the source's state.
func NewInMemSource(plans ...Plan) Source {
	plansCopy := make(map[Tier]Plan, len(plans))
	for _, p := range plans {
		plansCopy[p.Tier] = clonePlan(p)
	}
	return &inMemSource{plans: plansCopy}
}

// Load returns a copy of all available plans from memory.
func (s *inMemSource) Load(ctx context.Context) (map[Tier]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plansCopy := make(map[Tier]Plan, len(s.plans))
	for tier, p := range s.plans {
		plansCopy[tier] = clonePlan(p)
	}
	return plansCopy, nil
}

func clonePlan(p Plan) Plan {
	return Plan{
		Tier:            p.Tier,
		Name:            p.Name,
		Description:     p.Description,
		PriceMinorUnits: p.PriceMinorUnits,
		Limits:          maps.Clone(p.Limits),
		Features:        slices.Clone(p.Features),
	}
}
