package estimator

import "strings"

// Policy holds the business calibration of the savings estimate: savings
// rates per control class, the share of a service bill attributed to one
// resource when nothing better is known, and the sampling window. These are
// policy inputs, not structural constants, so they load from config.
type Policy struct {
	// Trailing usage window sampled per resource, in days.
	LookbackDays int `mapstructure:"lookback_days"`
	// Days used to extrapolate a daily cost to a monthly one.
	MonthDays int `mapstructure:"month_days"`
	// Savings rate for idle / underutilized resources.
	IdleRate float64 `mapstructure:"idle_rate"`
	// Savings rate for upgrade-style recommendations.
	OptimizeRate float64 `mapstructure:"optimize_rate"`
	// Savings rate for everything else (stopped, unattached, unused).
	DefaultRate float64 `mapstructure:"default_rate"`
	// Share of a service bill attributed to one resource when the
	// per-service finding count is unknown.
	ConservativeShare float64 `mapstructure:"conservative_share"`
	// Max in-flight resource cost lookups per run.
	Concurrency int `mapstructure:"concurrency"`
}

func DefaultPolicy() Policy {
	return Policy{
		LookbackDays:      7,
		MonthDays:         30,
		IdleRate:          0.6,
		OptimizeRate:      0.3,
		DefaultRate:       1.0,
		ConservativeShare: 0.03,
		Concurrency:       4,
	}
}

var (
	idleMarkers     = []string{"idle", "low utilization"}
	optimizeMarkers = []string{"upgrade", "graviton", "lifecycle", "versioning"}
)

// SavingsRate classifies a control name into a savings rate. Matching is a
// case-insensitive substring check, idle markers first.
func (p Policy) SavingsRate(control string) float64 {
	name := strings.ToLower(control)
	if containsAny(name, idleMarkers) {
		return p.IdleRate
	}
	if containsAny(name, optimizeMarkers) {
		return p.OptimizeRate
	}
	return p.DefaultRate
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
