// Package contract provides the contract command, which compares a
// subgraph's collections with the on-chain contract.
package contract

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/nftrecon/internal/cmd/application"
	"github.com/agentstation/nftrecon/internal/cmd/output"
	"github.com/agentstation/nftrecon/pkg/reconcile"
)

// NewCommand creates the contract command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "contract",
		GroupID: "core",
		Short:   "Read collections from the contract and compare them",
		Args:    cobra.NoArgs,
		Long: `Contract groups the persisted token list of --contract-side, reads each
collection from the contract one at a time, and compares the results by
collection id.

A read that fails is logged and skipped; the collection then appears as
missing_in_contract. Run "nftrecon fetch" first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			driver, err := app.Driver(reconcile.ModeContract)
			if err != nil {
				return err
			}
			if err := driver.CheckConfig(reconcile.ModeContract); err != nil {
				return err
			}

			result, err := driver.FetchContract(ctx)
			if err != nil {
				return err
			}
			app.Logger().Info().
				Int("requested", result.Requested()).
				Int("failed", len(result.Failures)).
				Msg("Contract reads finished")

			report, err := driver.DiffContractResult(ctx, result)
			if err != nil {
				return err
			}
			return output.WriteReport(cmd.OutOrStdout(), output.Format(app.OutputFormat()), report, output.DescribeCollection)
		},
	}
}
