// Package estimator derives a raw monthly savings estimate for each
// non-passing finding, preferring resource-level billing data and falling
// back to a distributed share of the service bill when the provider only
// bills the service in aggregate.
package estimator

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/arn"
	"github.com/de-tools/cost-atlas/pkg/services/costlookup"
)

// aggregateBilled lists the dimensions with no resource-granularity billing
// data; their monthly cost is distributed from the service total instead.
var aggregateBilled = map[string]struct{}{
	arn.ServiceS3:         {},
	arn.ServiceDynamoDB:   {},
	arn.ServiceSQS:        {},
	arn.ServiceSNS:        {},
	arn.ServiceLambda:     {},
	arn.ServiceCloudWatch: {},
}

type Estimator struct {
	resources costlookup.ResourceCostLookup
	policy    Policy
}

func New(resources costlookup.ResourceCostLookup, policy Policy) *Estimator {
	return &Estimator{resources: resources, policy: policy}
}

func (e *Estimator) Policy() Policy {
	return e.policy
}

// RawSavings estimates the monthly savings for one non-passing finding.
//
// serviceCosts is the run's memoized billed cost per service;
// serviceFindingCount is the number of non-passing findings sharing the
// finding's service code (pass 0 when unknown). Lookup failures degrade to
// a zero estimate for this finding only; the returned error is non-nil only
// when the context was cancelled.
func (e *Estimator) RawSavings(
	ctx context.Context,
	ref domain.ResourceRef,
	control string,
	serviceCosts map[string]domain.Cents,
	serviceFindingCount int,
) (domain.Cents, error) {
	if ref.ServiceCode == "" {
		return 0, nil
	}

	monthly, err := e.monthlyCost(ctx, ref, serviceCosts, serviceFindingCount)
	if err != nil {
		return 0, err
	}
	if monthly <= 0 {
		return 0, nil
	}

	raw := domain.Cents(math.Round(float64(monthly) * e.policy.SavingsRate(control)))
	if raw < 0 {
		return 0, nil
	}
	return raw, nil
}

func (e *Estimator) monthlyCost(
	ctx context.Context,
	ref domain.ResourceRef,
	serviceCosts map[string]domain.Cents,
	serviceFindingCount int,
) (domain.Cents, error) {
	logger := zerolog.Ctx(ctx)

	daily, known, err := e.resources.DailyResourceCost(ctx, ref.ID, ref.ServiceCode, e.policy.LookbackDays)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		event := logger.Warn().Err(err).Str("resource", ref.ID).Str("service", ref.ServiceCode)
		if errors.Is(err, costlookup.ErrPermissionDenied) {
			event.Msg("billing backend denied resource cost lookup, estimating without it")
		} else {
			event.Msg("resource cost lookup failed, estimating without it")
		}
		known = false
	}

	if known && daily > 0 {
		return daily * domain.Cents(e.policy.MonthDays), nil
	}

	// Resource-level data is genuinely absent. Only services billed in
	// aggregate get a distributed share of the service bill.
	if _, ok := aggregateBilled[ref.ServiceCode]; !ok {
		return 0, nil
	}

	billed := serviceCosts[ref.ServiceCode]
	if billed <= 0 {
		return 0, nil
	}
	if serviceFindingCount > 0 {
		return billed / domain.Cents(serviceFindingCount), nil
	}
	return domain.Cents(math.Round(float64(billed) * e.policy.ConservativeShare)), nil
}
