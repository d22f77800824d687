package domain

import "time"

// Period is the billing window a run prices against.
type Period struct {
	Start time.Time
	End   time.Time
}

// Run is one priced batch of findings sharing a billing period. A Run is
// owned by the execution that created it: service costs are fetched once,
// findings never outlive it, and a cancelled execution produces no Run.
type Run struct {
	Period                  Period
	Findings                []PricedFinding
	ServiceCosts            map[string]Cents
	TotalCappedSavingsCents Cents
}
