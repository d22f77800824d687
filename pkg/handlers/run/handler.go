package run

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/de-tools/cost-atlas/pkg/adapters"
	"github.com/de-tools/cost-atlas/pkg/models/api"
	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/arn"
	runsvc "github.com/de-tools/cost-atlas/pkg/services/run"
	"github.com/de-tools/cost-atlas/pkg/store/sql/runs"
)

type Handler struct {
	pricing runsvc.Controller
	store   runs.Store // nil when persistence is not wired
}

func NewHandler(pricing runsvc.Controller, store runs.Store) *Handler {
	return &Handler{
		pricing: pricing,
		store:   store,
	}
}

func (h *Handler) PriceRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.PriceRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !req.PeriodEnd.After(req.PeriodStart) {
		http.Error(w, "period_end must be after period_start", http.StatusBadRequest)
		return
	}

	period := domain.Period{Start: req.PeriodStart, End: req.PeriodEnd}
	priced, err := h.pricing.PriceRun(ctx, period, adapters.MapFindingsApiToDomain(req.Findings))
	if err != nil {
		logger.Error().Err(err).Msg("pricing run failed")
		http.Error(w, "pricing run failed", http.StatusInternalServerError)
		return
	}

	if h.store != nil {
		if id, err := h.store.SaveRun(ctx, priced); err != nil {
			// The response is still served; persistence is best-effort.
			logger.Warn().Err(err).Msg("failed to persist pricing run")
		} else {
			logger.Info().Str("run_id", id).Msg("pricing run persisted")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(adapters.MapRunDomainToApi(priced)); err != nil {
		logger.Error().Err(err).Msg("failed to encode pricing run")
	}
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(api.ServiceList{Services: arn.Services()}); err != nil {
		logger.Error().Err(err).Msg("failed to encode service list")
	}
}
