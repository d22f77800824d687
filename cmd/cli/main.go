package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/cost-atlas/pkg/runtime/terminal"
	"github.com/de-tools/cost-atlas/pkg/services/costlookup"
	"github.com/de-tools/cost-atlas/pkg/services/costlookup/aws_ce"
)

func main() {
	registry := costlookup.NewRegistry()
	_ = registry.Register("aws", func(ctx context.Context, profile, region string) (
		costlookup.ResourceCostLookup,
		costlookup.ServiceCostLookup,
		error,
	) {
		lookup, err := aws_ce.NewLookup(ctx, profile, region)
		if err != nil {
			return nil, nil, err
		}
		return lookup, lookup, nil
	})

	cli := terminal.NewCLI(terminal.Options{
		Registry: registry,
		Output:   os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
