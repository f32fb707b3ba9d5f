// Package repotest holds the behavior every sitecounts.Repository
// implementation is tested against.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/site-counts/pkg/sitecounts"
)

// Store is a repository that can be populated by the tests.
type Store interface {
	sitecounts.Repository
	RegisterType(ctx context.Context, t sitecounts.ContentType) error
	PutItem(ctx context.Context, item sitecounts.Item) error
}

// Factory returns an empty store. Publish hours must be read in UTC.
type Factory func(t *testing.T) Store

var base = time.Date(2024, time.March, 12, 16, 30, 0, 0, time.UTC)

func post(id int64, minutesAgo int) sitecounts.Item {
	return sitecounts.Item{
		ID:          sitecounts.ItemID(id),
		Type:        "post",
		Title:       fmt.Sprintf("Post %d", id),
		Status:      sitecounts.ItemStatusPublished,
		PublishedAt: base.Add(-time.Duration(minutesAgo) * time.Minute),
		Categories:  []string{"baz"},
		Tags:        []string{"foo"},
	}
}

func populate(t *testing.T, s Store, items ...sitecounts.Item) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.RegisterType(ctx, sitecounts.ContentType{Slug: "post", Name: "Posts", Public: true}))
	require.NoError(t, s.RegisterType(ctx, sitecounts.ContentType{Slug: "revision", Name: "Revisions", Public: false}))
	require.NoError(t, s.RegisterType(ctx, sitecounts.ContentType{Slug: "page", Name: "Pages", Public: true}))
	for _, item := range items {
		require.NoError(t, s.PutItem(ctx, item))
	}
}

func ids(items []sitecounts.ContentItem) []sitecounts.ItemID {
	out := make([]sitecounts.ItemID, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

// Run runs the repository conformance tests.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("ListPublicTypes keeps registration order", func(t *testing.T) {
		s := newStore(t)
		populate(t, s)

		types, err := s.ListPublicTypes(ctx)
		require.NoError(t, err)
		assert.Equal(t, []sitecounts.ContentType{
			{Slug: "post", Name: "Posts", Public: true},
			{Slug: "page", Name: "Pages", Public: true},
		}, types)
	})

	t.Run("RegisterType updates in place", func(t *testing.T) {
		s := newStore(t)
		populate(t, s)
		require.NoError(t, s.RegisterType(ctx, sitecounts.ContentType{Slug: "post", Name: "Articles", Public: true}))
		require.NoError(t, s.RegisterType(ctx, sitecounts.ContentType{Slug: "revision", Name: "Revisions", Public: true}))

		types, err := s.ListPublicTypes(ctx)
		require.NoError(t, err)
		require.Len(t, types, 3)
		assert.Equal(t, "Articles", types[0].Name)
		assert.Equal(t, "revision", types[1].Slug)
		assert.Equal(t, "page", types[2].Slug)
	})

	t.Run("PutItem rejects unknown types", func(t *testing.T) {
		s := newStore(t)
		populate(t, s)

		err := s.PutItem(ctx, sitecounts.Item{ID: 1, Type: "product", Title: "x", Status: sitecounts.ItemStatusPublished, PublishedAt: base})
		assert.ErrorIs(t, err, sitecounts.ErrUnknownContentType)
	})

	t.Run("CountItems counts by type and status", func(t *testing.T) {
		draft := post(3, 3)
		draft.Status = sitecounts.ItemStatusDraft
		page := post(4, 4)
		page.Type = "page"
		s := newStore(t)
		populate(t, s, post(1, 1), post(2, 2), draft, page)

		n, err := s.CountItems(ctx, "post", sitecounts.ItemStatusPublished)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = s.CountItems(ctx, "post", sitecounts.ItemStatusDraft)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = s.CountItems(ctx, "page", sitecounts.ItemStatusPublished)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = s.CountItems(ctx, "revision", sitecounts.ItemStatusPublished)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("PutItem replaces by id", func(t *testing.T) {
		s := newStore(t)
		populate(t, s, post(1, 1))

		updated := post(1, 1)
		updated.Title = "Renamed"
		updated.Tags = []string{"bar"}
		require.NoError(t, s.PutItem(ctx, updated))

		n, err := s.CountItems(ctx, "post", sitecounts.ItemStatusPublished)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		items, err := s.QueryItems(ctx, sitecounts.ListQuery{MaxResults: 5, ItemType: "post"})
		require.NoError(t, err)
		assert.Equal(t, []sitecounts.ContentItem{{ID: 1, Title: "Renamed"}}, items)

		items, err = s.QueryItems(ctx, sitecounts.DefaultListQuery())
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("QueryItems orders newest first and limits", func(t *testing.T) {
		s := newStore(t)
		// 7 and 8 share a publish time; the higher id comes first
		populate(t, s, post(1, 50), post(2, 10), post(3, 30), post(4, 20), post(5, 40), post(6, 60), post(7, 5), post(8, 5))

		items, err := s.QueryItems(ctx, sitecounts.DefaultListQuery())
		require.NoError(t, err)
		assert.Equal(t, []sitecounts.ItemID{8, 7, 2, 4, 3, 5}, ids(items))
		assert.Equal(t, "Post 8", items[0].Title)
	})

	t.Run("QueryItems applies every predicate", func(t *testing.T) {
		at := func(id int64, hour, minute int) sitecounts.Item {
			item := post(id, 0)
			item.PublishedAt = time.Date(2024, time.March, 12, hour, minute, 0, 0, time.UTC)
			return item
		}
		wrongCategory := at(5, 12, 0)
		wrongCategory.Categories = []string{"qux", "bar"}
		wrongTag := at(6, 12, 1)
		wrongTag.Tags = nil
		manyTerms := at(7, 12, 2)
		manyTerms.Categories = []string{"a", "baz", "z"}
		manyTerms.Tags = []string{"foo", "bar"}
		draft := at(8, 12, 3)
		draft.Status = sitecounts.ItemStatusDraft
		page := at(9, 12, 4)
		page.Type = "page"

		s := newStore(t)
		populate(t, s,
			at(1, 8, 59), at(2, 9, 0), at(3, 17, 59), at(4, 18, 0),
			wrongCategory, wrongTag, manyTerms, draft, page,
		)

		items, err := s.QueryItems(ctx, sitecounts.DefaultListQuery())
		require.NoError(t, err)
		assert.Equal(t, []sitecounts.ItemID{3, 7, 2}, ids(items))
	})

	t.Run("QueryItems returns nothing when nothing matches", func(t *testing.T) {
		s := newStore(t)
		populate(t, s)

		items, err := s.QueryItems(ctx, sitecounts.DefaultListQuery())
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
