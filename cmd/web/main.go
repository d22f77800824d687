package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/cost-atlas/pkg/server"
	"github.com/de-tools/cost-atlas/pkg/services/config"
	"github.com/de-tools/cost-atlas/pkg/services/costlookup"
	"github.com/de-tools/cost-atlas/pkg/services/costlookup/aws_ce"
	"github.com/de-tools/cost-atlas/pkg/services/estimator"
	runsvc "github.com/de-tools/cost-atlas/pkg/services/run"
	"github.com/de-tools/cost-atlas/pkg/store/cache"
	"github.com/de-tools/cost-atlas/pkg/store/sql/runs"
)

var (
	addr       string
	profile    string
	region     string
	policyPath string
	cacheTTL   time.Duration
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the savings pricing API server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVar(&addr, "addr", ":8080", "Address the server listens on")
	rootCmd.Flags().StringVar(&profile, "profile", "default", "AWS profile used for billing lookups")
	rootCmd.Flags().StringVar(&region, "region", "", "Billing API region, overriding the profile's own")
	rootCmd.Flags().StringVar(&policyPath, "policy", "", "Path to a savings policy file")
	rootCmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 15*time.Minute, "TTL for cached billing lookups")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	policy, err := config.LoadPolicy(policyPath)
	if err != nil {
		return fmt.Errorf("failed to load savings policy: %w", err)
	}

	lookup, err := aws_ce.NewLookup(ctx, profile, region)
	if err != nil {
		return fmt.Errorf("failed to create billing lookup: %w", err)
	}

	// Billing responses change slowly; a shared TTL cache keeps repeated
	// runs from hammering the cost API.
	billingCache := cache.NewMemory()
	resources := costlookup.NewCachedResourceLookup(lookup, billingCache, cacheTTL)
	services := costlookup.NewCachedServiceLookup(lookup, billingCache, cacheTTL)

	deps := server.Dependencies{
		Pricing: runsvc.NewController(estimator.New(resources, policy), services),
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to open run database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to reach run database: %w", err)
		}
		deps.RunStore = runs.NewStore(db)
		logger.Info().Msg("run persistence enabled")
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:            addr,
		ShutdownTimeout: 10 * time.Second,
		Dependencies:    deps,
	})

	return api.Start()
}
