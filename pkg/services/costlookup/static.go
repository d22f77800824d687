package costlookup

import (
	"context"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

// StaticLookup serves cost data from fixed maps. It backs offline pricing
// runs (fixture files) and tests.
type StaticLookup struct {
	Services  map[string]domain.Cents // service code -> billed cents for the period
	Resources map[string]domain.Cents // resource ID -> daily cents
}

var _ ResourceCostLookup = (*StaticLookup)(nil)
var _ ServiceCostLookup = (*StaticLookup)(nil)

func (s *StaticLookup) DailyResourceCost(
	_ context.Context,
	resourceID string,
	_ string,
	_ int,
) (domain.Cents, bool, error) {
	daily, ok := s.Resources[resourceID]
	return daily, ok, nil
}

func (s *StaticLookup) ServiceCosts(
	_ context.Context,
	_ domain.Period,
) (map[string]domain.Cents, error) {
	costs := make(map[string]domain.Cents, len(s.Services))
	for service, cents := range s.Services {
		costs[service] = cents
	}
	return costs, nil
}
