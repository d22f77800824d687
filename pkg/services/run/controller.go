// Package run orchestrates one pricing run: resolve the scanner's findings,
// estimate raw savings with bounded lookup fan-out, then cap the estimates
// against the billed service costs.
package run

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/arn"
	"github.com/de-tools/cost-atlas/pkg/services/costlookup"
	"github.com/de-tools/cost-atlas/pkg/services/estimator"
	"github.com/de-tools/cost-atlas/pkg/services/normalizer"
)

// Controller prices batches of findings against a billing period.
type Controller interface {
	// PriceRun converts a batch of findings into capped savings estimates.
	// The batch is all-or-nothing: a cancelled context yields an error,
	// never a partially priced run.
	PriceRun(ctx context.Context, period domain.Period, findings []domain.Finding) (*domain.Run, error)
}

type controller struct {
	estimator *estimator.Estimator
	services  costlookup.ServiceCostLookup
}

func NewController(est *estimator.Estimator, services costlookup.ServiceCostLookup) Controller {
	return &controller{
		estimator: est,
		services:  services,
	}
}

func (c *controller) PriceRun(
	ctx context.Context,
	period domain.Period,
	findings []domain.Finding,
) (*domain.Run, error) {
	logger := zerolog.Ctx(ctx)

	// One bulk fetch per run, memoized for the whole batch so the cap
	// comparison stays stable. Lookup failures degrade to "no billing
	// data", which caps every affected group at zero.
	serviceCosts, err := c.services.ServiceCosts(ctx, period)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, costlookup.ErrPermissionDenied) {
			logger.Warn().Err(err).Msg("billing backend denied service cost lookup, capping all savings at zero")
		} else {
			logger.Warn().Err(err).Msg("service cost lookup failed, capping all savings at zero")
		}
		serviceCosts = map[string]domain.Cents{}
	}

	priced := make([]domain.PricedFinding, len(findings))
	counts := make(map[string]int)
	for i, f := range findings {
		ref := arn.Resolve(f.Resource)
		priced[i] = domain.PricedFinding{
			Finding:     f,
			ResourceID:  ref.ID,
			ServiceCode: ref.ServiceCode,
		}
		if f.Status.Passing() {
			continue
		}
		if ref.ServiceCode == "" {
			logger.Debug().
				Str("resource", f.Resource).
				Str("control", f.Control).
				Msg("resource not attributable to a known billing dimension")
			continue
		}
		counts[ref.ServiceCode]++
	}

	concurrency := c.estimator.Policy().Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range priced {
		if priced[i].Status.Passing() || priced[i].ServiceCode == "" {
			continue
		}
		i := i
		g.Go(func() error {
			ref := domain.ResourceRef{ID: priced[i].ResourceID, ServiceCode: priced[i].ServiceCode}
			raw, err := c.estimator.RawSavings(gctx, ref, priced[i].Control, serviceCosts, counts[ref.ServiceCode])
			if err != nil {
				return err
			}
			// Each goroutine owns its slot, so no lock is needed.
			priced[i].RawSavingsCents = raw
			return nil
		})
	}

	// Barrier: capping needs complete group sums, so nothing below runs
	// until every estimate has landed.
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pricing run aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	capped := normalizer.Cap(priced, serviceCosts)

	return &domain.Run{
		Period:                  period,
		Findings:                capped,
		ServiceCosts:            serviceCosts,
		TotalCappedSavingsCents: normalizer.Total(capped),
	}, nil
}
