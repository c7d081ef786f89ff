package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/errors"
	"github.com/agentstation/nftrecon/pkg/logging"
	"github.com/agentstation/nftrecon/pkg/reconcile"
)

// subgraphServer serves count tokens on the first page and nothing after.
func subgraphServer(t *testing.T, count int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		items := []map[string]any{}
		if req.Variables["skip"].(float64) == 0 {
			for i := 1; i <= count; i++ {
				items = append(items, map[string]any{
					"id":           fmt.Sprint(i),
					"name":         "Cat",
					"artistName":   "Bob",
					"editionCount": "1",
				})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"tokens": items}})
	}))
	t.Cleanup(server.Close)
	return server
}

// newTestApp isolates the environment and returns an app writing to out.
func newTestApp(t *testing.T, out *bytes.Buffer) *App {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FETCH_DELAY", "0s")
	t.Setenv("CONTRACT_DELAY", "0s")

	app, err := New("1.0.0", "abc123", "2024-01-01", "test",
		WithOutput(out),
		WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	return app
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", app.Version())
	assert.Equal(t, "abc123", app.Commit())
	assert.Equal(t, "2024-01-01", app.Date())
	assert.Equal(t, "test", app.BuiltBy())
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, app.Config())
}

func TestExecute_Version(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)
	t.Setenv("PAGE_SIZE", "0") // invalid settings do not affect version

	require.NoError(t, app.Execute(context.Background(), []string{"version", "-o", "json"}))

	var info map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, "1.0.0", info["version"])
}

func TestExecute_Run(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)
	dir := t.TempDir()

	t.Setenv("LEFT_SUBGRAPH_URL", subgraphServer(t, 2).URL)
	t.Setenv("RIGHT_SUBGRAPH_URL", subgraphServer(t, 3).URL)

	err := app.Execute(context.Background(), []string{"run", "-o", "json", "--output-dir", dir})
	require.NoError(t, err)
	require.NoError(t, app.Shutdown(context.Background()))

	var summary reconcile.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, dir, summary.OutputDir)
	assert.Equal(t, 2, summary.Left.Tokens)
	assert.Equal(t, 3, summary.Right.Tokens)
	assert.Equal(t, 1, summary.TokenDifferences.Total)
	assert.Equal(t, 1, summary.CollectionDifferences.Total)
	assert.FileExists(t, filepath.Join(dir, constants.RightTokensFile))
}

func TestExecute_MissingConfig(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)

	err := app.Execute(context.Background(), []string{"run", "--output-dir", t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.IsConfigMissing(err))
	assert.Empty(t, out.String())
}

func TestExecute_InvalidSettings(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)

	err := app.Execute(context.Background(), []string{"run", "--page-size", "5000"})
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "page_size")
}

func TestExecute_InvalidFormat(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)

	err := app.Execute(context.Background(), []string{"version", "-o", "xml"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestExecute_FetchThenDiff(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)
	dir := t.TempDir()
	t.Setenv("OUTPUT_DIR", dir)
	t.Setenv("LEFT_SUBGRAPH_URL", subgraphServer(t, 1).URL)

	err := app.Execute(context.Background(), []string{"diff", "tokens"})
	require.Error(t, err)
	assert.True(t, errors.IsMissingPrerequisite(err))

	require.NoError(t, app.Execute(context.Background(), []string{"fetch", "left", "-o", "json"}))
	assert.FileExists(t, filepath.Join(dir, constants.LeftTokensFile))

	err = app.Execute(context.Background(), []string{"diff", "tokens"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `run "fetch right" first`)
}
