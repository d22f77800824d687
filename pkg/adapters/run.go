package adapters

import (
	"time"

	"github.com/de-tools/cost-atlas/pkg/models/api"
	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/models/store"
)

func MapFindingApiToDomain(f api.Finding) domain.Finding {
	return domain.Finding{
		Control:  f.Control,
		Status:   domain.ControlStatus(f.Status),
		Resource: f.Resource,
	}
}

func MapFindingsApiToDomain(findings []api.Finding) []domain.Finding {
	mapped := make([]domain.Finding, 0, len(findings))
	for _, f := range findings {
		mapped = append(mapped, MapFindingApiToDomain(f))
	}
	return mapped
}

func MapRunDomainToApi(run *domain.Run) api.PriceRunResponse {
	response := api.PriceRunResponse{
		PeriodStart:             run.Period.Start,
		PeriodEnd:               run.Period.End,
		Findings:                make([]api.PricedFinding, 0, len(run.Findings)),
		ServiceCosts:            make(map[string]int64, len(run.ServiceCosts)),
		TotalCappedSavingsCents: run.TotalCappedSavingsCents,
	}

	for _, f := range run.Findings {
		response.Findings = append(response.Findings, api.PricedFinding{
			Control:            f.Control,
			Status:             string(f.Status),
			Resource:           f.Resource,
			ResourceID:         f.ResourceID,
			ServiceCode:        f.ServiceCode,
			RawSavingsCents:    f.RawSavingsCents,
			CappedSavingsCents: f.CappedSavingsCents,
		})
	}
	for service, cents := range run.ServiceCosts {
		response.ServiceCosts[service] = cents
	}
	return response
}

func MapRunDomainToStore(id string, run *domain.Run, createdAt time.Time) (store.RunRecord, []store.FindingRecord) {
	record := store.RunRecord{
		ID:                      id,
		PeriodStart:             run.Period.Start,
		PeriodEnd:               run.Period.End,
		TotalCappedSavingsCents: run.TotalCappedSavingsCents,
		CreatedAt:               createdAt,
	}

	findings := make([]store.FindingRecord, 0, len(run.Findings))
	for _, f := range run.Findings {
		findings = append(findings, store.FindingRecord{
			RunID:              id,
			Control:            f.Control,
			Status:             string(f.Status),
			Resource:           f.Resource,
			ResourceID:         f.ResourceID,
			ServiceCode:        f.ServiceCode,
			RawSavingsCents:    f.RawSavingsCents,
			CappedSavingsCents: f.CappedSavingsCents,
		})
	}
	return record, findings
}
