package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/site-counts/pkg/sitecounts"
)

func TestBuildListQuery(t *testing.T) {
	t.Run("default query", func(t *testing.T) {
		query, args := buildListQuery(sitecounts.DefaultListQuery(), "Europe/Berlin")

		assert.Equal(t,
			"SELECT id, title FROM content_items WHERE type = $1 AND status = $2"+
				" AND EXTRACT(HOUR FROM published_at AT TIME ZONE $3) >= $4"+
				" AND EXTRACT(HOUR FROM published_at AT TIME ZONE $3) <= $5"+
				" AND $6 = ANY(categories) AND $7 = ANY(tags)"+
				" ORDER BY published_at DESC, id DESC LIMIT $8",
			query)
		assert.Equal(t, []interface{}{"post", "published", "Europe/Berlin", 9, 17, "baz", "foo", 6}, args)
	})

	t.Run("empty predicates", func(t *testing.T) {
		query, args := buildListQuery(sitecounts.ListQuery{MaxResults: 3}, "UTC")

		assert.Equal(t, "SELECT id, title FROM content_items ORDER BY published_at DESC, id DESC LIMIT $1", query)
		assert.Equal(t, []interface{}{3}, args)
	})
}
