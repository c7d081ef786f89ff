// Package fetch provides the fetch command, which snapshots subgraph
// token lists.
package fetch

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/nftrecon/internal/cmd/application"
	"github.com/agentstation/nftrecon/internal/cmd/output"
	"github.com/agentstation/nftrecon/pkg/constants"
)

// Result reports one fetched side.
type Result struct {
	Side     string `json:"side" yaml:"side"`
	Tokens   int    `json:"tokens" yaml:"tokens"`
	Artifact string `json:"artifact,omitempty" yaml:"artifact,omitempty"`
}

// NewCommand creates the fetch command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:       "fetch [left|right]",
		GroupID:   "stages",
		Short:     "Fetch and snapshot subgraph token lists",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{constants.SideLeft, constants.SideRight},
		Long: `Fetch pages through a subgraph and writes its token list to the output
directory. Without an argument both sides are fetched. An existing
snapshot is reused unless --force is given. With --dry-run nothing is
written and no artifact is reported.`,
		Example: `  nftrecon fetch                            # Fetch both subgraphs
  nftrecon fetch right --force              # Refetch the right subgraph`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sides := []string{constants.SideLeft, constants.SideRight}
			if len(args) == 1 {
				sides = args
			}

			driver, err := app.Driver("")
			if err != nil {
				return err
			}

			results := make([]Result, 0, len(sides))
			for _, side := range sides {
				list, err := driver.FetchTokens(cmd.Context(), side)
				if err != nil {
					return err
				}
				result := Result{Side: side, Tokens: len(list)}
				if !driver.Store().ReadOnly() {
					file := constants.LeftTokensFile
					if side == constants.SideRight {
						file = constants.RightTokensFile
					}
					result.Artifact = driver.Store().Path(file)
				}
				results = append(results, result)
			}

			return output.NewFormatter(output.Format(app.OutputFormat())).Format(cmd.OutOrStdout(), results)
		},
	}
}
