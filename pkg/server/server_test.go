package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cost-atlas/pkg/models/api"
	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

type mockPricing struct {
	mock.Mock
}

func (m *mockPricing) PriceRun(
	ctx context.Context,
	period domain.Period,
	findings []domain.Finding,
) (*domain.Run, error) {
	args := m.Called(ctx, period, findings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func newTestServer(pricing *mockPricing) *httptest.Server {
	logger := zerolog.Nop()
	router := ConfigureRouter(logger, Dependencies{Pricing: pricing})
	return httptest.NewServer(router)
}

func TestPriceRun_Endpoint(t *testing.T) {
	period := domain.Period{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	priced := &domain.Run{
		Period: period,
		Findings: []domain.PricedFinding{
			{
				Finding: domain.Finding{
					Control:  "Unattached volumes",
					Status:   domain.StatusAlarm,
					Resource: "arn:aws:ec2:us-east-1:123:volume/vol-1",
				},
				ResourceID:         "vol-1",
				ServiceCode:        "EC2 - Other",
				RawSavingsCents:    500,
				CappedSavingsCents: 500,
			},
		},
		ServiceCosts:            map[string]domain.Cents{"EC2 - Other": 1000},
		TotalCappedSavingsCents: 500,
	}

	pricing := new(mockPricing)
	pricing.On("PriceRun", mock.Anything, period, mock.Anything).Return(priced, nil)

	srv := newTestServer(pricing)
	defer srv.Close()

	body := `{
		"period_start": "2026-01-01T00:00:00Z",
		"period_end": "2026-02-01T00:00:00Z",
		"findings": [
			{"control": "Unattached volumes", "status": "alarm", "resource": "arn:aws:ec2:us-east-1:123:volume/vol-1"}
		]
	}`
	resp, err := http.Post(srv.URL+"/api/v1/runs", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.PriceRunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, int64(500), got.TotalCappedSavingsCents)
	require.Len(t, got.Findings, 1)
	assert.Equal(t, "vol-1", got.Findings[0].ResourceID)
	assert.Equal(t, int64(1000), got.ServiceCosts["EC2 - Other"])
	pricing.AssertExpectations(t)
}

func TestPriceRun_InvalidPeriod(t *testing.T) {
	pricing := new(mockPricing)
	srv := newTestServer(pricing)
	defer srv.Close()

	body := `{"period_start": "2026-02-01T00:00:00Z", "period_end": "2026-01-01T00:00:00Z", "findings": []}`
	resp, err := http.Post(srv.URL+"/api/v1/runs", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	pricing.AssertNotCalled(t, "PriceRun")
}

func TestPriceRun_ControllerFailure(t *testing.T) {
	pricing := new(mockPricing)
	pricing.On("PriceRun", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("run aborted"))

	srv := newTestServer(pricing)
	defer srv.Close()

	body := `{"period_start": "2026-01-01T00:00:00Z", "period_end": "2026-02-01T00:00:00Z", "findings": []}`
	resp, err := http.Post(srv.URL+"/api/v1/runs", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestListServices_Endpoint(t *testing.T) {
	srv := newTestServer(new(mockPricing))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/services")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.ServiceList
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Contains(t, got.Services, "Amazon Elastic Compute Cloud - Compute")
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(new(mockPricing))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
