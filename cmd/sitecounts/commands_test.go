package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = `{
  "types": [{"slug": "post", "name": "Posts"}, {"slug": "page", "name": "Pages"}],
  "items": [
    {"id": 1, "type": "post", "title": "Morning", "published_at": "2024-03-12T09:15:00Z", "categories": ["baz"], "tags": ["foo"]},
    {"id": 2, "type": "post", "title": "Noon", "published_at": "2024-03-12T12:00:00Z", "categories": ["baz"], "tags": ["foo"]},
    {"id": 3, "type": "page", "title": "About", "published_at": "2024-03-12T12:00:00Z"}
  ]
}`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(testSeed), 0o644))
	return path
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "testing")
	t.Setenv("DATABASE_URL", "")

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCmd(t *testing.T) {
	out, err := run(t, renderCmd(), "--seed", writeSeed(t), "--current-item-id", "2", "--anchor", "counts")
	require.NoError(t, err)

	assert.Equal(t,
		`<div class="wp-block-site-counts" id="counts"><ul><li>There are 2 Posts.</li><li>There are 1 Pages.</li></ul>`+
			`<p>The current post ID is 2</p>`+
			`<h2>5 posts with the tag of foo and the category of baz</h2><ul><li> Morning </li></ul></div>`+"\n",
		out)
}

func TestRenderCmd_Locale(t *testing.T) {
	out, err := run(t, renderCmd(), "--seed", writeSeed(t), "--locale", "fr")
	require.NoError(t, err)
	assert.Contains(t, out, "<li>Il y a 2 Posts.</li>")
}

func TestRenderCmd_NegativeID(t *testing.T) {
	_, err := run(t, renderCmd(), "--current-item-id", "-4")
	assert.Error(t, err)
}

func TestTypesCmd(t *testing.T) {
	color.NoColor = true

	out, err := run(t, typesCmd(), "--seed", writeSeed(t))
	require.NoError(t, err)
	assert.Contains(t, out, "post")
	assert.Contains(t, out, "Posts")
	assert.Contains(t, out, "Pages")
}

func TestMigrateCmd_RequiresDatabase(t *testing.T) {
	_, err := run(t, migrateCmd())
	assert.Error(t, err)
}

func TestMigrateCmd_SQLite(t *testing.T) {
	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "content.db")

	out, err := run(t, migrateCmd(), "--database-url", dbURL, "--seed", writeSeed(t))
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite repository is up to date")

	out, err = run(t, typesCmd(), "--database-url", dbURL)
	require.NoError(t, err)
	assert.Contains(t, out, "Pages")
}

func TestEnvCmd(t *testing.T) {
	out, err := run(t, envCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "DATABASE_URL")
}
