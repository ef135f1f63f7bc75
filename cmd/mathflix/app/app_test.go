package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/constants"
	"github.com/ashkam58/mathflix/pkg/logging"
)

const definitions = `games:
  - id: math-1
    title: Fraction Pizza
    category: Math
    type: html
    content: "<html></html>"
  - id: code-1
    title: Loop Lab
    category: Coding
    type: url
    content: https://example.com/loops
    isPremium: true
`

func testConfig(t *testing.T, store string) *Config {
	t.Helper()
	defs := filepath.Join(t.TempDir(), "games.yaml")
	require.NoError(t, os.WriteFile(defs, []byte(definitions), 0o600))

	return &Config{
		Store:       store,
		DataDir:     t.TempDir(),
		SnapshotKey: constants.DefaultSnapshotKey,
		Definitions: defs,
		LogFormat:   "json",
		LogOutput:   "discard",
	}
}

func newTestApp(t *testing.T, config *Config) *App {
	t.Helper()
	app, err := New("1.2.3", "abc123", "2026-01-01", "test",
		WithConfig(config),
		WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	return app
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := app.createRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAppVersionInfo(t *testing.T) {
	app := newTestApp(t, testConfig(t, "memory"))

	assert.Equal(t, "1.2.3", app.Version())
	assert.Equal(t, "abc123", app.Commit())
	assert.Equal(t, "2026-01-01", app.Date())
	assert.Equal(t, "test", app.BuiltBy())

	out, err := execute(t, app, "version")
	require.NoError(t, err)
	assert.Equal(t, "mathflix 1.2.3\n", out)

	out, err = execute(t, app, "version", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "commit:   abc123")
}

func TestAppClientIsShared(t *testing.T) {
	app := newTestApp(t, testConfig(t, "memory"))

	c1, err := app.Client()
	require.NoError(t, err)
	c2, err := app.Client()
	require.NoError(t, err)
	assert.Same(t, c1, c2)
}

func TestAppClientBadStore(t *testing.T) {
	app := newTestApp(t, testConfig(t, "redis"))

	_, err := app.Client()
	assert.Error(t, err)
}

func TestAppRejectsBadFormat(t *testing.T) {
	app := newTestApp(t, testConfig(t, "memory"))

	_, err := execute(t, app, "list", "-o", "xml")
	assert.Error(t, err)
}

func TestAppEndToEnd(t *testing.T) {
	for _, store := range []string{"file", "sqlite", "pebble"} {
		t.Run(store, func(t *testing.T) {
			config := testConfig(t, store)
			app := newTestApp(t, config)

			_, err := execute(t, app, "reconcile", "-o", "json")
			require.NoError(t, err)

			out, err := execute(t, app, "view", "code-1", "-o", "json")
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":"code-1","views":1}`, out)

			out, err = execute(t, app, "add", "--title", "Shape Sorter", "--content", "<html></html>", "-o", "json")
			require.NoError(t, err)
			var created catalogs.Record
			require.NoError(t, json.Unmarshal([]byte(out), &created))

			// a fresh app over the same data dir sees the persisted snapshot
			require.NoError(t, app.Shutdown(context.Background()))
			reopened := newTestApp(t, config)

			out, err = execute(t, reopened, "list", "-o", "json")
			require.NoError(t, err)
			var records []catalogs.Record
			require.NoError(t, json.Unmarshal([]byte(out), &records))

			assert.Equal(t, []string{"math-1", "code-1", created.ID}, catalogs.IDs(records))
			assert.Equal(t, int64(1), records[1].Views)
			assert.Equal(t, catalogs.ProvenanceUser, records[2].Provenance)
		})
	}
}

func TestAppStoreFlag(t *testing.T) {
	config := testConfig(t, "file")
	app := newTestApp(t, config)

	_, err := execute(t, app, "reconcile", "--store", "memory")
	require.NoError(t, err)
	assert.Equal(t, "memory", app.Config().Store)

	entries, err := os.ReadDir(config.DataDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
