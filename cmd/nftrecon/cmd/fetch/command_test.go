package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/nftrecon/internal/cmd/application"
	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/reconcile"
	"github.com/agentstation/nftrecon/pkg/tokens"
)

type staticSource []tokens.Token

func (s staticSource) FetchTokens(context.Context) ([]tokens.Token, error) {
	return s, nil
}

func newMock(t *testing.T, dryRun bool) *application.Mock {
	t.Helper()
	dir := t.TempDir()
	return &application.Mock{
		OutputFormatFunc: func() string { return "json" },
		DriverFunc: func(reconcile.Mode) (*reconcile.Driver, error) {
			cfg := reconcile.Defaults()
			cfg.OutputDir = dir
			cfg.DryRun = dryRun
			return reconcile.New(cfg,
				reconcile.WithSource(constants.SideLeft, staticSource{{ExternalID: "1"}, {ExternalID: "2"}}),
				reconcile.WithSource(constants.SideRight, staticSource{{ExternalID: "1"}}),
			)
		},
	}
}

func execute(t *testing.T, args ...string) ([]Result, error) {
	t.Helper()
	return executeWith(t, newMock(t, false), args...)
}

func executeWith(t *testing.T, app application.Application, args ...string) ([]Result, error) {
	t.Helper()
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		return nil, err
	}
	var results []Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	return results, nil
}

func TestFetchCommand_BothSides(t *testing.T) {
	results, err := execute(t)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "left", results[0].Side)
	assert.Equal(t, 2, results[0].Tokens)
	assert.FileExists(t, results[0].Artifact)
	assert.Equal(t, 1, results[1].Tokens)
}

func TestFetchCommand_OneSide(t *testing.T) {
	results, err := execute(t, "right")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "right", results[0].Side)
}

func TestFetchCommand_InvalidSide(t *testing.T) {
	_, err := execute(t, "middle")
	assert.Error(t, err)
}

func TestFetchCommand_DryRunReportsNoArtifact(t *testing.T) {
	app := newMock(t, true)
	results, err := executeWith(t, app)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Empty(t, r.Artifact, r.Side)
	}
	assert.Equal(t, 2, results[0].Tokens)

	driver, err := app.Driver("")
	require.NoError(t, err)
	assert.False(t, driver.Store().Exists(constants.LeftTokensFile))
	assert.False(t, driver.Store().Exists(constants.RightTokensFile))
}
