// Package run provides the run command, which executes a full
// reconciliation pass.
package run

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/nftrecon/internal/cmd/application"
	"github.com/agentstation/nftrecon/internal/cmd/output"
	"github.com/agentstation/nftrecon/pkg/reconcile"
)

// NewCommand creates the run command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:     "run",
		GroupID: "core",
		Short:   "Run a full reconciliation pass",
		Args:    cobra.NoArgs,
		Long: `Run executes every stage of a reconciliation pass and prints a summary.

In subgraphs mode (the default) it:
• Fetches the left and right token lists, reusing existing snapshots
• Compares tokens by id
• Groups each list into collections by name and artist
• Compares the two collection lists position by position

In contract mode it fetches one subgraph (--contract-side), groups it,
reads every collection from the contract, and compares them by
collection id. Collections the contract could not return are reported
as missing_in_contract.`,
		Example: `  nftrecon run                              # Compare the two subgraphs
  nftrecon run --mode contract              # Compare the left subgraph with the contract
  nftrecon run --force                      # Refetch instead of reusing snapshots
  nftrecon run --dry-run -o json            # Compute without writing artifacts`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var override reconcile.Mode
			if cmd.Flags().Changed("mode") {
				override = reconcile.Mode(mode)
			}

			driver, err := app.Driver(override)
			if err != nil {
				return err
			}

			summary, err := driver.Run(cmd.Context())
			if err != nil {
				return err
			}
			return output.WriteSummary(cmd.OutOrStdout(), output.Format(app.OutputFormat()), summary)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(reconcile.ModeSubgraphs), "comparison: subgraphs or contract")

	return cmd
}
