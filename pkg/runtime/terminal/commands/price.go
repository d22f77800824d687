package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/cost-atlas/pkg/adapters"
	"github.com/de-tools/cost-atlas/pkg/models/api"
	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/cost-atlas/pkg/services/config"
	"github.com/de-tools/cost-atlas/pkg/services/costlookup"
	"github.com/de-tools/cost-atlas/pkg/services/estimator"
	runsvc "github.com/de-tools/cost-atlas/pkg/services/run"
)

const dateLayout = "2006-01-02"

type PriceCmd struct {
	findingsPath string
	provider     string
	profile      string
	region       string
	policyPath   string
	fixturePath  string
	periodStart  string
	periodEnd    string
	jsonOutput   bool
	registry     costlookup.Registry
	reporter     *export.Reporter
}

// costFixture mirrors the offline fixture file: billed cents per service
// and daily cents per resource.
type costFixture struct {
	Services  map[string]domain.Cents `json:"services"`
	Resources map[string]domain.Cents `json:"resources"`
}

func NewPriceCmd(registry costlookup.Registry, reporter *export.Reporter) *cobra.Command {
	pc := &PriceCmd{registry: registry, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price scanner findings into capped savings estimates",
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.findingsPath, "findings", "", "Path to the findings JSON file")
	cmd.Flags().StringVar(&pc.provider, "provider", "aws", "Billing provider used for lookups")
	cmd.Flags().StringVar(&pc.profile, "profile", "default", "Credential profile used for billing lookups")
	cmd.Flags().StringVar(&pc.region, "region", "", "Billing API region, overriding the profile's own")
	cmd.Flags().StringVar(&pc.policyPath, "policy", "", "Path to a savings policy file")
	cmd.Flags().StringVar(&pc.fixturePath, "service-costs", "", "Path to a cost fixture file (skips the billing API)")
	cmd.Flags().StringVar(&pc.periodStart, "period-start", "", "Billing period start (YYYY-MM-DD, default 30 days ago)")
	cmd.Flags().StringVar(&pc.periodEnd, "period-end", "", "Billing period end (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&pc.jsonOutput, "json", false, "Emit the priced run as JSON instead of a table")

	_ = cmd.MarkFlagRequired("findings")

	return cmd
}

func (pc *PriceCmd) run(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	period, err := pc.parsePeriod()
	if err != nil {
		return err
	}

	policy, err := config.LoadPolicy(pc.policyPath)
	if err != nil {
		return err
	}

	findings, err := pc.loadFindings()
	if err != nil {
		return err
	}

	resources, services, err := pc.buildLookups(ctx)
	if err != nil {
		return err
	}

	ctrl := runsvc.NewController(estimator.New(resources, policy), services)
	priced, err := ctrl.PriceRun(ctx, period, findings)
	if err != nil {
		return fmt.Errorf("failed to price findings: %w", err)
	}

	if pc.jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(adapters.MapRunDomainToApi(priced))
	}
	return pc.reporter.Handle(priced)
}

func (pc *PriceCmd) parsePeriod() (domain.Period, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -30)

	var err error
	if pc.periodStart != "" {
		if start, err = time.Parse(dateLayout, pc.periodStart); err != nil {
			return domain.Period{}, fmt.Errorf("invalid period-start: %w", err)
		}
	}
	if pc.periodEnd != "" {
		if end, err = time.Parse(dateLayout, pc.periodEnd); err != nil {
			return domain.Period{}, fmt.Errorf("invalid period-end: %w", err)
		}
	}
	if !end.After(start) {
		return domain.Period{}, fmt.Errorf("period end %s is not after start %s", end.Format(dateLayout), start.Format(dateLayout))
	}
	return domain.Period{Start: start, End: end}, nil
}

func (pc *PriceCmd) loadFindings() ([]domain.Finding, error) {
	data, err := os.ReadFile(pc.findingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read findings file: %w", err)
	}

	var findings []api.Finding
	if err := json.Unmarshal(data, &findings); err != nil {
		return nil, fmt.Errorf("failed to parse findings file: %w", err)
	}
	return adapters.MapFindingsApiToDomain(findings), nil
}

func (pc *PriceCmd) buildLookups(
	ctx context.Context,
) (costlookup.ResourceCostLookup, costlookup.ServiceCostLookup, error) {
	if pc.fixturePath != "" {
		data, err := os.ReadFile(pc.fixturePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read cost fixture: %w", err)
		}
		var fixture costFixture
		if err := json.Unmarshal(data, &fixture); err != nil {
			return nil, nil, fmt.Errorf("failed to parse cost fixture: %w", err)
		}
		static := &costlookup.StaticLookup{
			Services:  fixture.Services,
			Resources: fixture.Resources,
		}
		return static, static, nil
	}

	return pc.registry.Create(ctx, pc.provider, pc.profile, pc.region)
}
