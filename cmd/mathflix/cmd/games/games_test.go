package games

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkam58/mathflix"
	"github.com/ashkam58/mathflix/cmd/application"
	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/logging"
	"github.com/ashkam58/mathflix/pkg/sources"
	"github.com/ashkam58/mathflix/pkg/store/memory"
)

func newTestApp(t *testing.T) (*application.Mock, mathflix.Client) {
	t.Helper()

	coding := catalogs.NewTestRecord("code-1", "Loop Lab")
	coding.Category = catalogs.CategoryCoding
	coding.IsPremium = true

	client, err := mathflix.New(
		mathflix.WithStore(memory.New()),
		mathflix.WithSource(sources.Static(
			catalogs.NewTestRecord("math-1", "Fraction Pizza"),
			catalogs.NewTestRecord("math-2", "Times Table Race"),
			coding,
		)),
		mathflix.WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return &application.Mock{
		ClientFunc:       func() (mathflix.Client, error) { return client, nil },
		OutputFormatFunc: func() string { return "json" },
	}, client
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeRecords(t *testing.T, s string) []catalogs.Record {
	t.Helper()
	var records []catalogs.Record
	require.NoError(t, json.Unmarshal([]byte(s), &records))
	return records
}

func TestListCommand(t *testing.T) {
	app, _ := newTestApp(t)

	out, err := execute(t, NewListCommand(app))
	require.NoError(t, err)
	assert.Equal(t, []string{"math-1", "math-2", "code-1"}, catalogs.IDs(decodeRecords(t, out)))
}

func TestListCommandFilters(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"category", []string{"--category", "coding"}, []string{"code-1"}},
		{"free only", []string{"--premium=false"}, []string{"math-1", "math-2"}},
		{"query", []string{"--query", "pizza"}, []string{"math-1"}},
		{"limit", []string{"--limit", "2"}, []string{"math-1", "math-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			out, err := execute(t, NewListCommand(app), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, catalogs.IDs(decodeRecords(t, out)))
		})
	}
}

func TestListCommandBadFilter(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := execute(t, NewListCommand(app), "--category", "Astrology")
	assert.True(t, errors.IsValidationError(err))

	_, err = execute(t, NewListCommand(app), "--premium", "maybe")
	assert.Error(t, err)
}

func TestListCommandTable(t *testing.T) {
	app, _ := newTestApp(t)
	app.OutputFormatFunc = func() string { return "table" }

	out, err := execute(t, NewListCommand(app))
	require.NoError(t, err)
	assert.Contains(t, out, "Fraction Pizza")
	assert.Contains(t, out, "Loop Lab")
}

func TestGetCommand(t *testing.T) {
	app, _ := newTestApp(t)

	out, err := execute(t, NewGetCommand(app), "math-2")
	require.NoError(t, err)

	var record catalogs.Record
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.Equal(t, "Times Table Race", record.Title)
	assert.Equal(t, catalogs.ProvenanceCanonical, record.Provenance)

	_, err = execute(t, NewGetCommand(app), "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestViewCommand(t *testing.T) {
	app, client := newTestApp(t)
	app.OutputFormatFunc = func() string { return "table" }

	for i := 0; i < 2; i++ {
		_, err := execute(t, NewViewCommand(app), "math-1")
		require.NoError(t, err)
	}
	out, err := execute(t, NewViewCommand(app), "math-1")
	require.NoError(t, err)
	assert.Equal(t, "math-1: 3 views\n", out)

	record, err := client.Game(context.Background(), "math-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), record.Views)
}

func TestAddAndDeleteCommands(t *testing.T) {
	app, client := newTestApp(t)

	out, err := execute(t, NewAddCommand(app),
		"--title", "Shape Sorter",
		"--content", "https://example.com/shapes",
		"--type", "url",
		"--topics", "Geometry,Shapes",
	)
	require.NoError(t, err)

	var created catalogs.Record
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, catalogs.ProvenanceUser, created.Provenance)
	assert.Equal(t, catalogs.CategoryMath, created.Category)
	assert.Equal(t, []string{"Geometry", "Shapes"}, created.Topics)

	records, err := client.Games(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"math-1", "math-2", "code-1", created.ID}, catalogs.IDs(records))

	out, err = execute(t, NewDeleteCommand(app), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deleted "+created.ID+"\n", out)

	records, err = client.Games(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestAddCommandFromFile(t *testing.T) {
	app, _ := newTestApp(t)

	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
title: Code Quest
category: Python
type: html
content: "<html></html>"
isPremium: true
topics: [Loops]
`), 0o600))

	out, err := execute(t, NewAddCommand(app), "--file", path, "--title", "Code Quest II")
	require.NoError(t, err)

	var created catalogs.Record
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "Code Quest II", created.Title)
	assert.Equal(t, catalogs.CategoryPython, created.Category)
	assert.True(t, created.IsPremium)
	assert.Equal(t, []string{"Loops"}, created.Topics)
}

func TestAddCommandRequiresTitle(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := execute(t, NewAddCommand(app), "--content", "<html></html>")
	assert.True(t, errors.IsValidationError(err))
}

func TestDeleteCommandRefusesDefinedGame(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := execute(t, NewDeleteCommand(app), "math-1")
	assert.ErrorIs(t, err, errors.ErrReadOnly)
}

func TestCommandsWithoutClient(t *testing.T) {
	app := &application.Mock{}
	_, err := execute(t, NewListCommand(app))
	assert.Error(t, err)
}
