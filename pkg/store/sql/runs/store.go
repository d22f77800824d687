// Package runs persists priced runs and their findings. The pricing engine
// never depends on this store; it is wired only where a result consumer
// wants durable output.
package runs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/cost-atlas/pkg/adapters"
	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

const insertRun = `
	INSERT INTO pricing_runs (id, period_start, period_end, total_capped_savings_cents, created_at)
	VALUES ($1, $2, $3, $4, $5)
`

const insertFinding = `
	INSERT INTO priced_findings
		(run_id, control_name, status, resource, resource_id, service_code, raw_savings_cents, capped_savings_cents)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type Store interface {
	// SaveRun persists a run and its findings atomically, returning the
	// run ID.
	SaveRun(ctx context.Context, run *domain.Run) (string, error)
}

type runStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) Store {
	return &runStore{db: db, now: time.Now}
}

func (s *runStore) SaveRun(ctx context.Context, run *domain.Run) (string, error) {
	logger := zerolog.Ctx(ctx)
	id := uuid.NewString()

	record, findings := adapters.MapRunDomainToStore(id, run, s.now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			logger.Warn().Err(err).Msg("failed to roll back run insert")
		}
	}()

	_, err = tx.ExecContext(ctx, insertRun,
		record.ID,
		record.PeriodStart,
		record.PeriodEnd,
		record.TotalCappedSavingsCents,
		record.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range findings {
		_, err = tx.ExecContext(ctx, insertFinding,
			f.RunID,
			f.Control,
			f.Status,
			f.Resource,
			f.ResourceID,
			f.ServiceCode,
			f.RawSavingsCents,
			f.CappedSavingsCents,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert finding for %s: %w", f.Resource, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}
