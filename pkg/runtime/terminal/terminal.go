package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/cost-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/cost-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/cost-atlas/pkg/services/costlookup"
)

// CLI represents the command-line interface
type CLI struct {
	registry costlookup.Registry
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry costlookup.Registry
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		registry: opts.Registry,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost-atlas",
		Short: "Savings estimation and capping for scanner findings",
	}

	cmd.AddCommand(commands.NewPriceCmd(cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewServicesCmd(cli.reporter))

	return cmd
}
