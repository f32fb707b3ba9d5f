package sitecounts_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/site-counts/pkg/sitecounts"
)

func TestTimeWindow_Contains(t *testing.T) {
	w := sitecounts.TimeWindow{StartHour: 9, EndHour: 17}

	tests := []struct {
		hour int
		want bool
	}{
		{0, false},
		{8, false},
		{9, true},
		{12, true},
		{17, true},
		{18, false},
		{23, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.Contains(tt.hour), "hour %d", tt.hour)
	}
}

func TestTimeWindow_Validate(t *testing.T) {
	assert.NoError(t, sitecounts.TimeWindow{StartHour: 0, EndHour: 23}.Validate())
	assert.NoError(t, sitecounts.TimeWindow{StartHour: 17, EndHour: 9}.Validate())
	assert.ErrorIs(t, sitecounts.TimeWindow{StartHour: -1, EndHour: 5}.Validate(), sitecounts.ErrInvalidTimeWindow)
	assert.ErrorIs(t, sitecounts.TimeWindow{StartHour: 3, EndHour: 24}.Validate(), sitecounts.ErrInvalidTimeWindow)
}

func TestListQuery_Matches(t *testing.T) {
	q := sitecounts.DefaultListQuery()
	match := fooBazPost(1, "match")

	tests := []struct {
		name   string
		mutate func(*sitecounts.Item)
		want   bool
	}{
		{"all predicates hold", func(*sitecounts.Item) {}, true},
		{"wrong type", func(i *sitecounts.Item) { i.Type = "page" }, false},
		{"draft", func(i *sitecounts.Item) { i.Status = sitecounts.ItemStatusDraft }, false},
		{"before window", func(i *sitecounts.Item) {
			i.PublishedAt = time.Date(2024, 1, 1, 8, 59, 59, 0, time.UTC)
		}, false},
		{"last minute of window", func(i *sitecounts.Item) {
			i.PublishedAt = time.Date(2024, 1, 1, 17, 59, 59, 0, time.UTC)
		}, true},
		{"missing category", func(i *sitecounts.Item) { i.Categories = []string{"bar", "qux"} }, false},
		{"extra categories", func(i *sitecounts.Item) { i.Categories = []string{"qux", "baz"} }, true},
		{"missing tag", func(i *sitecounts.Item) { i.Tags = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := match
			item.Categories = append([]string(nil), match.Categories...)
			item.Tags = append([]string(nil), match.Tags...)
			tt.mutate(&item)
			assert.Equal(t, tt.want, q.Matches(item, time.UTC))
		})
	}
}

func TestListQuery_MatchesReadsHourInLocation(t *testing.T) {
	q := sitecounts.DefaultListQuery()
	item := fooBazPost(1, "tz")
	// 07:30 UTC is 09:30 in Berlin summer time
	item.PublishedAt = time.Date(2024, time.July, 1, 7, 30, 0, 0, time.UTC)

	berlin := time.FixedZone("CEST", 2*60*60)
	assert.False(t, q.Matches(item, time.UTC))
	assert.True(t, q.Matches(item, berlin))
	assert.False(t, q.Matches(item, nil))
}

func TestListQuery_EmptyPredicatesAreSkipped(t *testing.T) {
	q := sitecounts.ListQuery{MaxResults: 1}
	assert.NoError(t, q.Validate())
	assert.True(t, q.Matches(sitecounts.Item{ID: 1, Type: "anything", Status: sitecounts.ItemStatusTrash}, time.UTC))
}

func TestItemStatus_IsValid(t *testing.T) {
	assert.True(t, sitecounts.ItemStatusPublished.IsValid())
	assert.True(t, sitecounts.ItemStatusTrash.IsValid())
	assert.False(t, sitecounts.ItemStatus("future").IsValid())
	assert.False(t, sitecounts.ItemStatus("").IsValid())
}
