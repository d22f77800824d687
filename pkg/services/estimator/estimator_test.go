package estimator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/arn"
	"github.com/de-tools/cost-atlas/pkg/services/costlookup"
)

// stubResourceLookup lets us simulate any lookup outcome.
type stubResourceLookup struct {
	daily domain.Cents
	known bool
	err   error
	calls int
}

func (s *stubResourceLookup) DailyResourceCost(
	_ context.Context,
	_ string,
	_ string,
	_ int,
) (domain.Cents, bool, error) {
	s.calls++
	return s.daily, s.known, s.err
}

func TestSavingsRate_Classification(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		control string
		want    float64
	}{
		{"EC2 instances with low utilization", 0.6},
		{"Idle RDS database instances", 0.6},
		{"Instances eligible for Graviton upgrade", 0.3},
		{"Buckets without lifecycle policies", 0.3},
		{"Buckets with versioning disabled", 0.3},
		{"Instances stopped for more than 30 days", 1.0},
		{"Unattached EBS volumes", 1.0},
		// idle wins over upgrade when both match
		{"Idle instances eligible for upgrade", 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.control, func(t *testing.T) {
			assert.Equal(t, tt.want, p.SavingsRate(tt.control))
		})
	}
}

func TestRawSavings_ResourceLevelCost(t *testing.T) {
	// 100 cents/day over a 30-day month, stopped instance => full rate
	lookup := &stubResourceLookup{daily: 100, known: true}
	e := New(lookup, DefaultPolicy())

	raw, err := e.RawSavings(
		context.Background(),
		domain.ResourceRef{ID: "i-abc", ServiceCode: arn.ServiceEC2Compute},
		"Instances stopped for more than 30 days",
		nil, 0,
	)

	require.NoError(t, err)
	assert.Equal(t, domain.Cents(3000), raw)
}

func TestRawSavings_IdleRateApplied(t *testing.T) {
	lookup := &stubResourceLookup{daily: 100, known: true}
	e := New(lookup, DefaultPolicy())

	raw, err := e.RawSavings(
		context.Background(),
		domain.ResourceRef{ID: "i-abc", ServiceCode: arn.ServiceEC2Compute},
		"EC2 instances with low utilization",
		nil, 0,
	)

	require.NoError(t, err)
	assert.Equal(t, domain.Cents(1800), raw)
}

func TestRawSavings_UnresolvedServiceSkipsLookup(t *testing.T) {
	lookup := &stubResourceLookup{daily: 100, known: true}
	e := New(lookup, DefaultPolicy())

	raw, err := e.RawSavings(context.Background(), domain.ResourceRef{ID: "whatever"}, "Unused thing", nil, 0)

	require.NoError(t, err)
	assert.Zero(t, raw)
	assert.Zero(t, lookup.calls)
}

func TestRawSavings_FallbackDistribution(t *testing.T) {
	serviceCosts := map[string]domain.Cents{arn.ServiceS3: 12000}
	ref := domain.ResourceRef{ID: "my-bucket", ServiceCode: arn.ServiceS3}

	t.Run("known finding count splits the bill", func(t *testing.T) {
		e := New(&stubResourceLookup{}, DefaultPolicy())

		raw, err := e.RawSavings(context.Background(), ref, "Buckets without recent access", serviceCosts, 4)

		require.NoError(t, err)
		assert.Equal(t, domain.Cents(3000), raw)
	})

	t.Run("unknown finding count uses the conservative share", func(t *testing.T) {
		e := New(&stubResourceLookup{}, DefaultPolicy())

		raw, err := e.RawSavings(context.Background(), ref, "Buckets without recent access", serviceCosts, 0)

		require.NoError(t, err)
		assert.Equal(t, domain.Cents(360), raw)
	})
}

func TestRawSavings_NoFallbackForResourceGranularServices(t *testing.T) {
	// RDS has resource-granularity billing; absence of data means zero,
	// never a share of the service bill.
	serviceCosts := map[string]domain.Cents{arn.ServiceRDS: 50000}
	e := New(&stubResourceLookup{}, DefaultPolicy())

	raw, err := e.RawSavings(
		context.Background(),
		domain.ResourceRef{ID: "mydb", ServiceCode: arn.ServiceRDS},
		"Idle RDS database instances",
		serviceCosts, 3,
	)

	require.NoError(t, err)
	assert.Zero(t, raw)
}

func TestRawSavings_LookupErrorDegradesToFallback(t *testing.T) {
	serviceCosts := map[string]domain.Cents{arn.ServiceS3: 12000}
	lookup := &stubResourceLookup{err: costlookup.ErrPermissionDenied}
	e := New(lookup, DefaultPolicy())

	raw, err := e.RawSavings(
		context.Background(),
		domain.ResourceRef{ID: "my-bucket", ServiceCode: arn.ServiceS3},
		"Buckets without lifecycle policies",
		serviceCosts, 4,
	)

	require.NoError(t, err)
	// 12000/4 at the optimize rate
	assert.Equal(t, domain.Cents(900), raw)
}

func TestRawSavings_CancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lookup := &stubResourceLookup{err: errors.New("request aborted")}
	e := New(lookup, DefaultPolicy())

	_, err := e.RawSavings(ctx, domain.ResourceRef{ID: "i-abc", ServiceCode: arn.ServiceEC2Compute}, "Idle", nil, 0)

	assert.ErrorIs(t, err, context.Canceled)
}
