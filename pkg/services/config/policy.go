// Package config loads the savings policy from configuration files.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/de-tools/cost-atlas/pkg/services/estimator"
)

// LoadPolicy reads a savings policy file (yaml, toml or json, decided by
// extension). Missing keys fall back to the default policy; an empty path
// returns the defaults untouched.
func LoadPolicy(path string) (estimator.Policy, error) {
	policy := estimator.DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("lookback_days", policy.LookbackDays)
	v.SetDefault("month_days", policy.MonthDays)
	v.SetDefault("idle_rate", policy.IdleRate)
	v.SetDefault("optimize_rate", policy.OptimizeRate)
	v.SetDefault("default_rate", policy.DefaultRate)
	v.SetDefault("conservative_share", policy.ConservativeShare)
	v.SetDefault("concurrency", policy.Concurrency)

	if err := v.ReadInConfig(); err != nil {
		return estimator.Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}

	if err := v.Unmarshal(&policy); err != nil {
		return estimator.Policy{}, fmt.Errorf("failed to parse policy file: %w", err)
	}

	if err := validate(policy); err != nil {
		return estimator.Policy{}, fmt.Errorf("invalid policy in %s: %w", path, err)
	}
	return policy, nil
}

func validate(p estimator.Policy) error {
	if p.LookbackDays <= 0 {
		return fmt.Errorf("lookback_days must be positive, got %d", p.LookbackDays)
	}
	if p.MonthDays <= 0 {
		return fmt.Errorf("month_days must be positive, got %d", p.MonthDays)
	}
	for name, rate := range map[string]float64{
		"idle_rate":          p.IdleRate,
		"optimize_rate":      p.OptimizeRate,
		"default_rate":       p.DefaultRate,
		"conservative_share": p.ConservativeShare,
	} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", name, rate)
		}
	}
	if p.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", p.Concurrency)
	}
	return nil
}
