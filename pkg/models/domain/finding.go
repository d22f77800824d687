package domain

// Cents is a monetary amount in minor currency units. Savings and billed
// costs are always non-negative integers; nothing downstream deals in
// fractional cents.
type Cents = int64

type ControlStatus string

const (
	StatusOK    ControlStatus = "ok"
	StatusAlarm ControlStatus = "alarm"
	StatusError ControlStatus = "error"
	StatusSkip  ControlStatus = "skip"
	StatusInfo  ControlStatus = "info"
)

// Passing reports whether the control evaluated clean for its resource.
// Only non-passing findings carry savings potential.
func (s ControlStatus) Passing() bool {
	return s == StatusOK
}

// Finding is one optimization control evaluated against one resource,
// as emitted by the infrastructure scanner.
type Finding struct {
	Control  string        // free text, drives the savings classification
	Status   ControlStatus
	Resource string // bare ID or ARN-like reference
}

// ResourceRef is a resolved resource reference. ServiceCode is empty when
// the reference could not be attributed to a known billing dimension.
type ResourceRef struct {
	ID          string
	ServiceCode string
}

// PricedFinding is a Finding enriched with its resolved identity and
// savings estimates. CappedSavingsCents never exceeds RawSavingsCents, and
// per service the capped values never sum past what the provider billed.
type PricedFinding struct {
	Finding
	ResourceID         string `json:"resource_id"`
	ServiceCode        string `json:"service_code,omitempty"`
	RawSavingsCents    Cents  `json:"raw_savings_cents"`
	CappedSavingsCents Cents  `json:"capped_savings_cents"`
}
