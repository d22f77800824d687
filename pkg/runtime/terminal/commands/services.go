package commands

import (
	"github.com/spf13/cobra"

	"github.com/de-tools/cost-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/cost-atlas/pkg/services/arn"
)

func NewServicesCmd(reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the billing dimensions findings can be attributed to",
		RunE: func(_ *cobra.Command, _ []string) error {
			return reporter.HandleServices(arn.Services())
		},
	}
}
