// Package normalizer caps raw savings estimates against what the provider
// actually billed, per service, so finance-facing totals can never exceed
// real spend. The capping math is pure: no I/O, no logging, no mutation of
// the caller's findings.
package normalizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

// Cap returns a copy of findings with CappedSavingsCents populated.
//
// Findings are partitioned by service code; per group with billed cost B
// and raw sum R:
//   - B <= 0: every capped value is 0 (no billing data, cap enforced at zero)
//   - R <= B: raw values pass through unchanged
//   - R > B: each value scales by B/R (floored); the flooring remainder is
//     distributed to the largest capped findings first, clipped at each
//     finding's raw value, so the group sum equals B exactly and no capped
//     value ever exceeds its raw one.
//
// Findings with an unresolved service code stay capped at 0. The function
// is idempotent: re-capping already-capped values is a pass-through.
func Cap(findings []domain.PricedFinding, billed map[string]domain.Cents) []domain.PricedFinding {
	capped := make([]domain.PricedFinding, len(findings))
	copy(capped, findings)

	groups := make(map[string][]int)
	for i := range capped {
		capped[i].CappedSavingsCents = 0
		if capped[i].ServiceCode == "" || capped[i].RawSavingsCents <= 0 {
			continue
		}
		groups[capped[i].ServiceCode] = append(groups[capped[i].ServiceCode], i)
	}

	for service, indexes := range groups {
		capGroup(capped, indexes, billed[service])
	}

	return capped
}

func capGroup(findings []domain.PricedFinding, indexes []int, actual domain.Cents) {
	if actual <= 0 {
		return
	}

	var rawSum domain.Cents
	for _, i := range indexes {
		rawSum += findings[i].RawSavingsCents
	}

	if rawSum <= actual {
		for _, i := range indexes {
			findings[i].CappedSavingsCents = findings[i].RawSavingsCents
		}
		return
	}

	// Over-estimate: scale everything down with flooring, then distribute
	// the flooring remainder so the group sums to the billed cost exactly.
	factor := float64(actual) / float64(rawSum)
	var cappedSum domain.Cents
	for _, i := range indexes {
		scaled := domain.Cents(math.Floor(float64(findings[i].RawSavingsCents) * factor))
		findings[i].CappedSavingsCents = scaled
		cappedSum += scaled
	}

	remainder := actual - cappedSum
	if remainder <= 0 {
		return
	}

	// Hand the remainder to the largest capped findings first, never
	// pushing one past its own raw estimate. The group always has enough
	// headroom because its raw sum exceeds the billed cost.
	order := make([]int, len(indexes))
	copy(order, indexes)
	sort.SliceStable(order, func(a, b int) bool {
		return findings[order[a]].CappedSavingsCents > findings[order[b]].CappedSavingsCents
	})
	for _, i := range order {
		if remainder == 0 {
			break
		}
		headroom := findings[i].RawSavingsCents - findings[i].CappedSavingsCents
		if headroom <= 0 {
			continue
		}
		if headroom > remainder {
			headroom = remainder
		}
		findings[i].CappedSavingsCents += headroom
		remainder -= headroom
	}
}

// InvariantError reports a capped group sum exceeding its billed cost.
// Unreachable with a correct Cap; it exists as an assertion target and is
// never surfaced to users.
type InvariantError struct {
	Service   string
	CappedSum domain.Cents
	Billed    domain.Cents
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf(
		"capped savings for %s sum to %d cents, exceeding the %d cents billed",
		e.Service, e.CappedSum, e.Billed,
	)
}

// CheckInvariant verifies that, for every resolved service code, capped
// savings sum to no more than the billed cost.
func CheckInvariant(findings []domain.PricedFinding, billed map[string]domain.Cents) error {
	sums := make(map[string]domain.Cents)
	for _, f := range findings {
		if f.ServiceCode == "" {
			continue
		}
		sums[f.ServiceCode] += f.CappedSavingsCents
	}

	for service, sum := range sums {
		if sum > billed[service] {
			return &InvariantError{Service: service, CappedSum: sum, Billed: billed[service]}
		}
	}
	return nil
}

// Total sums the capped savings over all findings.
func Total(findings []domain.PricedFinding) domain.Cents {
	var total domain.Cents
	for _, f := range findings {
		total += f.CappedSavingsCents
	}
	return total
}
