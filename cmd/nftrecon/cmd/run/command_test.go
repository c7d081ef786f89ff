package run

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/nftrecon/internal/cmd/application"
	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/errors"
	"github.com/agentstation/nftrecon/pkg/reconcile"
	"github.com/agentstation/nftrecon/pkg/tokens"
)

type staticSource []tokens.Token

func (s staticSource) FetchTokens(context.Context) ([]tokens.Token, error) {
	return s, nil
}

func newMock(t *testing.T, format string, modes *[]reconcile.Mode) *application.Mock {
	t.Helper()
	dir := t.TempDir()
	return &application.Mock{
		OutputFormatFunc: func() string { return format },
		DriverFunc: func(mode reconcile.Mode) (*reconcile.Driver, error) {
			*modes = append(*modes, mode)
			cfg := reconcile.Defaults()
			cfg.OutputDir = dir
			if mode != "" {
				cfg.Mode = mode
			}
			return reconcile.New(cfg,
				reconcile.WithSource(constants.SideLeft, staticSource{{ExternalID: "1", Name: "Cat", ArtistName: "Bob", EditionCount: 1}}),
				reconcile.WithSource(constants.SideRight, staticSource{{ExternalID: "1", Name: "Cat", ArtistName: "Bob", EditionCount: 2}}),
			)
		},
	}
}

func TestRunCommand_JSON(t *testing.T) {
	var modes []reconcile.Mode
	cmd := NewCommand(newMock(t, "json", &modes))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Equal(t, []reconcile.Mode{""}, modes)

	var summary reconcile.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, reconcile.ModeSubgraphs, summary.Mode)
	require.NotNil(t, summary.TokenDifferences)
	assert.Equal(t, 1, summary.TokenDifferences.Total)
	assert.Contains(t, summary.Artifacts, filepath.Join(summary.OutputDir, constants.TokenDifferencesFile))
}

func TestRunCommand_ModeFlag(t *testing.T) {
	var modes []reconcile.Mode
	cmd := NewCommand(newMock(t, "table", &modes))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--mode", "contract"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsConfigMissing(err))
	assert.Equal(t, []reconcile.Mode{reconcile.ModeContract}, modes)
}

func TestRunCommand_Table(t *testing.T) {
	var modes []reconcile.Mode
	cmd := NewCommand(newMock(t, "table", &modes))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "Token Differences")
	assert.Contains(t, out.String(), "Editions")
}
