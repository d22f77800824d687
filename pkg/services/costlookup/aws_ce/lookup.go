// Package aws_ce implements the cost lookup ports against the AWS Cost
// Explorer API.
package aws_ce

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/smithy-go"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/costlookup"
)

const (
	dateLayout   = "2006-01-02"
	costMetric   = "UnblendedCost"
	accessDenied = "AccessDeniedException"
	// Cost Explorer keeps resource-level data for roughly two weeks.
	maxResourceLookbackDays = 14
)

// Cost Explorer is served out of us-east-1 regardless of where the
// account's workloads run, so that is the fallback when neither the shared
// config nor the caller names a region.
const fallbackRegion = "us-east-1"

// costExplorerAPI is the slice of the Cost Explorer client the lookups use.
type costExplorerAPI interface {
	GetCostAndUsage(
		ctx context.Context,
		input *costexplorer.GetCostAndUsageInput,
		optFns ...func(*costexplorer.Options),
	) (*costexplorer.GetCostAndUsageOutput, error)
	GetCostAndUsageWithResources(
		ctx context.Context,
		input *costexplorer.GetCostAndUsageWithResourcesInput,
		optFns ...func(*costexplorer.Options),
	) (*costexplorer.GetCostAndUsageWithResourcesOutput, error)
}

// Lookup implements both costlookup ports on top of Cost Explorer.
type Lookup struct {
	client costExplorerAPI
	now    func() time.Time
}

// NewLookup builds a Cost Explorer backed lookup for one credential
// profile. A non-empty region overrides whatever the shared config names.
func NewLookup(ctx context.Context, profile, region string) (*Lookup, error) {
	cfg, err := loadConfig(ctx, profile, region)
	if err != nil {
		return nil, err
	}
	return &Lookup{
		client: costexplorer.NewFromConfig(cfg),
		now:    time.Now,
	}, nil
}

func loadConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithSharedConfigProfile(profile),
		config.WithDefaultRegion(fallbackRegion),
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load shared AWS config for profile %q: %w", profile, err)
	}

	// Probe the credential chain now so a misconfigured profile fails at
	// startup instead of halfway through a pricing run.
	if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		return aws.Config{}, fmt.Errorf("no usable credentials in profile %q: %w", profile, err)
	}
	return cfg, nil
}

var _ costlookup.ResourceCostLookup = (*Lookup)(nil)
var _ costlookup.ServiceCostLookup = (*Lookup)(nil)

// ServiceCosts fetches the total billed cost per service for the period in
// one bulk query, credits and refunds excluded.
func (l *Lookup) ServiceCosts(
	ctx context.Context,
	period domain.Period,
) (map[string]domain.Cents, error) {
	costs := make(map[string]domain.Cents)

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(period.Start.Format(dateLayout)),
			End:   aws.String(period.End.Format(dateLayout)),
		},
		Granularity: types.GranularityMonthly,
		Metrics:     []string{costMetric},
		Filter: &types.Expression{
			Not: &types.Expression{
				Dimensions: &types.DimensionValues{
					Key:    types.DimensionRecordType,
					Values: []string{"Credit", "Refund"},
				},
			},
		},
		GroupBy: []types.GroupDefinition{
			{
				Type: types.GroupDefinitionTypeDimension,
				Key:  aws.String("SERVICE"),
			},
		},
	}

	for {
		result, err := l.client.GetCostAndUsage(ctx, input)
		if err != nil {
			if noData(err) {
				return costs, nil
			}
			return nil, mapError("get cost and usage", err)
		}

		for _, byTime := range result.ResultsByTime {
			for _, group := range byTime.Groups {
				if len(group.Keys) == 0 {
					continue
				}
				amount, err := metricCents(group.Metrics)
				if err != nil {
					return nil, fmt.Errorf("service %s: %w", group.Keys[0], err)
				}
				costs[group.Keys[0]] += amount
			}
		}

		if result.NextPageToken == nil {
			break
		}
		input.NextPageToken = result.NextPageToken
	}

	return costs, nil
}

// DailyResourceCost returns the average daily cost of one resource over the
// trailing lookback window. (0, false, nil) means the backend has no
// resource-granularity data for this resource.
func (l *Lookup) DailyResourceCost(
	ctx context.Context,
	resourceID string,
	serviceCode string,
	lookbackDays int,
) (domain.Cents, bool, error) {
	if lookbackDays <= 0 || lookbackDays > maxResourceLookbackDays {
		return 0, false, fmt.Errorf("lookback of %d days is outside the supported window", lookbackDays)
	}

	end := l.now()
	start := end.AddDate(0, 0, -lookbackDays)

	input := &costexplorer.GetCostAndUsageWithResourcesInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(start.Format(dateLayout)),
			End:   aws.String(end.Format(dateLayout)),
		},
		Granularity: types.GranularityDaily,
		Metrics:     []string{costMetric},
		Filter: &types.Expression{
			And: []types.Expression{
				{
					Dimensions: &types.DimensionValues{
						Key:    types.DimensionService,
						Values: []string{serviceCode},
					},
				},
				{
					Dimensions: &types.DimensionValues{
						Key:    types.DimensionResourceId,
						Values: []string{resourceID},
					},
				},
			},
		},
	}

	var total domain.Cents
	for {
		result, err := l.client.GetCostAndUsageWithResources(ctx, input)
		if err != nil {
			if noData(err) {
				return 0, false, nil
			}
			return 0, false, mapError("get cost and usage with resources", err)
		}

		for _, byTime := range result.ResultsByTime {
			if byTime.Total == nil {
				continue
			}
			amount, err := metricCents(byTime.Total)
			if err != nil {
				return 0, false, fmt.Errorf("resource %s: %w", resourceID, err)
			}
			total += amount
		}

		if result.NextPageToken == nil {
			break
		}
		input.NextPageToken = result.NextPageToken
	}

	if total <= 0 {
		return 0, false, nil
	}
	return total / domain.Cents(lookbackDays), true, nil
}

func metricCents(metrics map[string]types.MetricValue) (domain.Cents, error) {
	metric, ok := metrics[costMetric]
	if !ok || metric.Amount == nil {
		return 0, nil
	}
	amount, err := strconv.ParseFloat(*metric.Amount, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse cost amount %q: %w", *metric.Amount, err)
	}
	cents := domain.Cents(math.Round(amount * 100))
	if cents < 0 {
		return 0, nil
	}
	return cents, nil
}

// noData reports whether the API said the requested window simply has no
// cost data, which callers must not treat as a failure.
func noData(err error) bool {
	var unavailable *types.DataUnavailableException
	return errors.As(err, &unavailable)
}

func mapError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == accessDenied {
		return fmt.Errorf("%s: %w", op, costlookup.ErrPermissionDenied)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
