package aws_ce

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/costlookup"
)

type stubClient struct {
	usageOutputs    []*costexplorer.GetCostAndUsageOutput
	usageErr        error
	resourceOutputs []*costexplorer.GetCostAndUsageWithResourcesOutput
	resourceErr     error

	usageCalls    int
	resourceCalls int
}

func (s *stubClient) GetCostAndUsage(
	_ context.Context,
	_ *costexplorer.GetCostAndUsageInput,
	_ ...func(*costexplorer.Options),
) (*costexplorer.GetCostAndUsageOutput, error) {
	if s.usageErr != nil {
		return nil, s.usageErr
	}
	out := s.usageOutputs[s.usageCalls]
	s.usageCalls++
	return out, nil
}

func (s *stubClient) GetCostAndUsageWithResources(
	_ context.Context,
	_ *costexplorer.GetCostAndUsageWithResourcesInput,
	_ ...func(*costexplorer.Options),
) (*costexplorer.GetCostAndUsageWithResourcesOutput, error) {
	if s.resourceErr != nil {
		return nil, s.resourceErr
	}
	out := s.resourceOutputs[s.resourceCalls]
	s.resourceCalls++
	return out, nil
}

func serviceGroup(name, amount string) types.Group {
	return types.Group{
		Keys: []string{name},
		Metrics: map[string]types.MetricValue{
			costMetric: {Amount: aws.String(amount)},
		},
	}
}

func testPeriod() domain.Period {
	return domain.Period{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestServiceCosts_AggregatesAndPaginates(t *testing.T) {
	client := &stubClient{
		usageOutputs: []*costexplorer.GetCostAndUsageOutput{
			{
				ResultsByTime: []types.ResultByTime{
					{Groups: []types.Group{
						serviceGroup("Amazon Simple Storage Service", "120.50"),
						serviceGroup("EC2 - Other", "3.004"),
					}},
				},
				NextPageToken: aws.String("next"),
			},
			{
				ResultsByTime: []types.ResultByTime{
					{Groups: []types.Group{
						serviceGroup("Amazon Simple Storage Service", "10.00"),
					}},
				},
			},
		},
	}
	lookup := &Lookup{client: client, now: time.Now}

	costs, err := lookup.ServiceCosts(context.Background(), testPeriod())

	require.NoError(t, err)
	assert.Equal(t, 2, client.usageCalls)
	assert.Equal(t, domain.Cents(13050), costs["Amazon Simple Storage Service"])
	assert.Equal(t, domain.Cents(300), costs["EC2 - Other"])
}

func TestServiceCosts_NoDataYieldsEmptyMap(t *testing.T) {
	client := &stubClient{usageErr: &types.DataUnavailableException{}}
	lookup := &Lookup{client: client, now: time.Now}

	costs, err := lookup.ServiceCosts(context.Background(), testPeriod())

	require.NoError(t, err)
	assert.Empty(t, costs)
}

func TestDailyResourceCost_AveragesOverWindow(t *testing.T) {
	client := &stubClient{
		resourceOutputs: []*costexplorer.GetCostAndUsageWithResourcesOutput{
			{
				ResultsByTime: []types.ResultByTime{
					{Total: map[string]types.MetricValue{costMetric: {Amount: aws.String("1.00")}}},
					{Total: map[string]types.MetricValue{costMetric: {Amount: aws.String("2.50")}}},
				},
			},
		},
	}
	lookup := &Lookup{client: client, now: time.Now}

	daily, known, err := lookup.DailyResourceCost(context.Background(), "i-abc", "Amazon Elastic Compute Cloud - Compute", 7)

	require.NoError(t, err)
	assert.True(t, known)
	// 350 cents over 7 days
	assert.Equal(t, domain.Cents(50), daily)
}

func TestDailyResourceCost_NoUsageIsNotAnError(t *testing.T) {
	client := &stubClient{
		resourceOutputs: []*costexplorer.GetCostAndUsageWithResourcesOutput{
			{ResultsByTime: []types.ResultByTime{}},
		},
	}
	lookup := &Lookup{client: client, now: time.Now}

	daily, known, err := lookup.DailyResourceCost(context.Background(), "i-abc", "EC2 - Other", 7)

	require.NoError(t, err)
	assert.False(t, known)
	assert.Zero(t, daily)
}

func TestDailyResourceCost_LookbackOutsideWindow(t *testing.T) {
	lookup := &Lookup{client: &stubClient{}, now: time.Now}

	_, _, err := lookup.DailyResourceCost(context.Background(), "i-abc", "EC2 - Other", 30)

	assert.Error(t, err)
}

func TestMapError_AccessDenied(t *testing.T) {
	err := mapError("get cost and usage", &smithy.GenericAPIError{Code: "AccessDeniedException"})
	assert.ErrorIs(t, err, costlookup.ErrPermissionDenied)

	err = mapError("get cost and usage", errors.New("boom"))
	assert.NotErrorIs(t, err, costlookup.ErrPermissionDenied)
}
