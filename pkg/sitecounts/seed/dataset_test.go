package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/site-counts/pkg/sitecounts"
	"github.com/tendant/site-counts/pkg/sitecounts/repo/memory"
	"github.com/tendant/site-counts/pkg/sitecounts/seed"
)

func TestDecode(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "site.json"))
	require.NoError(t, err)
	defer f.Close()

	ds, err := seed.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, []sitecounts.ContentType{
		{Slug: "post", Name: "Posts", Public: true},
		{Slug: "revision", Name: "Revisions", Public: false},
		{Slug: "page", Name: "Pages", Public: true},
	}, ds.Types)

	require.Len(t, ds.Items, 4)
	assert.Equal(t, sitecounts.ItemStatusPublished, ds.Items[0].Status)
	assert.Equal(t, sitecounts.ItemStatusDraft, ds.Items[2].Status)
	assert.Equal(t, time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC), ds.Items[0].PublishedAt.UTC())
	assert.Equal(t, []string{"foo"}, ds.Items[1].Tags)
}

func TestDecode_Defaults(t *testing.T) {
	ds, err := seed.Decode(strings.NewReader(`{"types":[{"slug":"note"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []sitecounts.ContentType{{Slug: "note", Name: "note", Public: true}}, ds.Types)
	assert.Empty(t, ds.Items)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"types": [`},
		{"type without slug", `{"types":[{"name":"Posts"}]}`},
		{"unknown status", `{"items":[{"id":1,"type":"post","status":"future"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seed.Decode(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}

	_, err := seed.Decode(strings.NewReader(`{"items":[{"id":1,"type":"post","status":"future"}]}`))
	assert.ErrorIs(t, err, sitecounts.ErrInvalidItemStatus)
}

func TestLoad_File(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	ds, err := seed.Load(ctx, filepath.Join("testdata", "site.json"), seed.S3Config{}, repo)
	require.NoError(t, err)
	assert.Len(t, ds.Items, 4)

	types, err := repo.ListPublicTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 2)

	n, err := repo.CountItems(ctx, "post", sitecounts.ItemStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := repo.QueryItems(ctx, sitecounts.DefaultListQuery())
	require.NoError(t, err)
	assert.Equal(t, []sitecounts.ContentItem{{ID: 2, Title: "Second"}, {ID: 1, Title: "Hello"}}, items)
}

func TestLoad_UnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"items":[{"id":1,"type":"post","title":"x"}]}`), 0o644))

	_, err := seed.Load(context.Background(), path, seed.S3Config{}, memory.New())
	assert.ErrorIs(t, err, sitecounts.ErrUnknownContentType)
}
