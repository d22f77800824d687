package api

import "time"

type Finding struct {
	Control  string `json:"control"`
	Status   string `json:"status"`
	Resource string `json:"resource"`
}

type PriceRunRequest struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Findings    []Finding `json:"findings"`
}

type PricedFinding struct {
	Control            string `json:"control"`
	Status             string `json:"status"`
	Resource           string `json:"resource"`
	ResourceID         string `json:"resource_id"`
	ServiceCode        string `json:"service_code,omitempty"`
	RawSavingsCents    int64  `json:"raw_savings_cents"`
	CappedSavingsCents int64  `json:"capped_savings_cents"`
}

type PriceRunResponse struct {
	PeriodStart             time.Time        `json:"period_start"`
	PeriodEnd               time.Time        `json:"period_end"`
	Findings                []PricedFinding  `json:"findings"`
	ServiceCosts            map[string]int64 `json:"service_costs_cents"`
	TotalCappedSavingsCents int64            `json:"total_capped_savings_cents"`
}

type ServiceList struct {
	Services []string `json:"services"`
}
