// Package man provides the hidden man page command.
package man

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/agentstation/nftrecon/internal/cmd/application"
)

// NewCommand creates the man command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "man",
		Short:       "Generate man page",
		Long:        `Generate the nftrecon(1) man page on stdout.`,
		Hidden:      true,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{application.SkipSettingsAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			header := &doc.GenManHeader{
				Title:   "NFTRECON",
				Section: "1",
				Source:  "nftrecon",
				Manual:  "nftrecon Manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}
