// Package diff provides the diff command and its per-stage subcommands.
package diff

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/nftrecon/internal/cmd/application"
	"github.com/agentstation/nftrecon/internal/cmd/output"
	"github.com/agentstation/nftrecon/pkg/reconcile"
)

// NewCommand creates the diff command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "diff",
		GroupID: "stages",
		Short:   "Compare persisted snapshots",
		Long: `Diff runs one comparison stage against snapshots already in the output
directory. A missing snapshot names the command to run first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newTokensCommand(app))
	cmd.AddCommand(newCollectionsCommand(app))
	cmd.AddCommand(newContractCommand(app))

	return cmd
}

func newTokensCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "Compare the left and right token lists by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver, err := app.Driver("")
			if err != nil {
				return err
			}
			report, err := driver.DiffTokens(cmd.Context())
			if err != nil {
				return err
			}
			return output.WriteReport(cmd.OutOrStdout(), output.Format(app.OutputFormat()), report, output.DescribeToken)
		},
	}
}

func newCollectionsCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "Group both token lists and compare collections by position",
		Long: `Collections groups each persisted token list into collections and compares
them index by index. One extra or reordered collection shifts every later
pair, so treat long runs of mismatches with suspicion; "nftrecon contract"
compares by collection id instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver, err := app.Driver("")
			if err != nil {
				return err
			}
			report, err := driver.DiffCollections(cmd.Context())
			if err != nil {
				return err
			}
			return output.WriteReport(cmd.OutOrStdout(), output.Format(app.OutputFormat()), report, output.DescribeCollection)
		},
	}
}

func newContractCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "contract",
		Short: "Compare grouped collections with the persisted contract dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver, err := app.Driver(reconcile.ModeContract)
			if err != nil {
				return err
			}
			report, err := driver.DiffContract(cmd.Context())
			if err != nil {
				return err
			}
			return output.WriteReport(cmd.OutOrStdout(), output.Format(app.OutputFormat()), report, output.DescribeCollection)
		},
	}
}
