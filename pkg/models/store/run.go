package store

import "time"

// RunRecord is one persisted pricing run.
type RunRecord struct {
	ID                      string
	PeriodStart             time.Time
	PeriodEnd               time.Time
	TotalCappedSavingsCents int64
	CreatedAt               time.Time
}

// FindingRecord is one persisted priced finding, owned by a run.
type FindingRecord struct {
	RunID              string
	Control            string
	Status             string
	Resource           string
	ResourceID         string
	ServiceCode        string
	RawSavingsCents    int64
	CappedSavingsCents int64
}
