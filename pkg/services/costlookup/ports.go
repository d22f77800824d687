// Package costlookup defines the billing lookup ports the pricing engine
// consumes. Implementations talk to a provider's cost API; the engine only
// ever sees these contracts and is agnostic to caching or transport.
package costlookup

import (
	"context"
	"errors"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

// ErrPermissionDenied marks a lookup the billing backend rejected for lack
// of credentials. Callers outside the engine surface it as an actionable
// message; inside the engine it degrades the same way as missing data, for
// the affected lookup only.
var ErrPermissionDenied = errors.New("billing backend denied access")

// ResourceCostLookup returns the average daily cost of a single resource
// over the trailing lookback window.
//
// The boolean reports data presence: (0, false, nil) means the backend has
// no resource-granularity data for this service or no usage occurred.
// Missing data is never an error, so callers can tell "no data" from
// "zero cost". lookbackDays must stay within the backend's query window
// (around two weeks).
type ResourceCostLookup interface {
	DailyResourceCost(
		ctx context.Context,
		resourceID string,
		serviceCode string,
		lookbackDays int,
	) (domain.Cents, bool, error)
}

// ServiceCostLookup bulk-fetches the total billed cost per service for a
// period. A service absent from the map is treated as zero cost; an empty
// map (not an error) means no cost data exists for the period.
type ServiceCostLookup interface {
	ServiceCosts(ctx context.Context, period domain.Period) (map[string]domain.Cents, error)
}
