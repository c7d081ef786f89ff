package man

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManCommand(t *testing.T) {
	root := &cobra.Command{Use: "nftrecon", Short: "Reconcile NFT metadata"}
	root.AddCommand(&cobra.Command{Use: "run", Short: "Run every stage", Run: func(*cobra.Command, []string) {}})
	root.AddCommand(NewCommand())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"man"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), `.TH "NFTRECON" "1"`)
	assert.Contains(t, out.String(), "nftrecon\\-run(1)")
}
