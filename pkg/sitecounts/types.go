package sitecounts

import (
	"fmt"
	"time"
)

// ItemID identifies a content item. The zero value means "no item".
type ItemID int64

// IsZero reports whether the id is absent.
func (id ItemID) IsZero() bool { return id == 0 }

// ItemStatus is the publication status of a content item.
type ItemStatus string

const (
	ItemStatusPublished ItemStatus = "published"
	ItemStatusDraft     ItemStatus = "draft"
	ItemStatusPrivate   ItemStatus = "private"
	ItemStatusTrash     ItemStatus = "trash"
)

// IsValid reports whether the status is one of the known values.
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusPublished, ItemStatusDraft, ItemStatusPrivate, ItemStatusTrash:
		return true
	}
	return false
}

// ContentType describes a registered content type. Name is the plural label
// shown to readers ("Posts", "Pages").
type ContentType struct {
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// CountResult is the number of published items of one content type.
type CountResult struct {
	TypeSlug string `json:"type_slug"`
	TypeName string `json:"type_name"`
	Count    int    `json:"count"`
}

// Item is a content item as stored by a repository.
type Item struct {
	ID          ItemID     `json:"id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Status      ItemStatus `json:"status"`
	PublishedAt time.Time  `json:"published_at"`
	Categories  []string   `json:"categories,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// ContentItem is the projection returned by list queries.
type ContentItem struct {
	ID    ItemID `json:"id"`
	Title string `json:"title"`
}

// TimeWindow restricts items to a range of publish hours. Both bounds are
// inclusive.
type TimeWindow struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// Contains reports whether hour falls inside the window.
func (w TimeWindow) Contains(hour int) bool {
	return hour >= w.StartHour && hour <= w.EndHour
}

// Validate checks that both bounds are valid hours of the day.
func (w TimeWindow) Validate() error {
	if w.StartHour < 0 || w.StartHour > 23 || w.EndHour < 0 || w.EndHour > 23 {
		return fmt.Errorf("%w: %d-%d", ErrInvalidTimeWindow, w.StartHour, w.EndHour)
	}
	return nil
}

// ListQuery is the filtered list query issued once per render. A nil Window
// or an empty Category or Tag leaves that predicate out.
type ListQuery struct {
	MaxResults int         `json:"max_results"`
	ItemType   string      `json:"item_type"`
	Status     ItemStatus  `json:"status"`
	Window     *TimeWindow `json:"window,omitempty"`
	Category   string      `json:"category,omitempty"`
	Tag        string      `json:"tag,omitempty"`
}

// DefaultListQuery returns the query the block ships with: six published
// posts written between 9:00 and 17:59, in category "baz" with tag "foo".
// One more than the five advertised items is fetched so the current item can
// be skipped.
func DefaultListQuery() ListQuery {
	return ListQuery{
		MaxResults: 6,
		ItemType:   "post",
		Status:     ItemStatusPublished,
		Window:     &TimeWindow{StartHour: 9, EndHour: 17},
		Category:   "baz",
		Tag:        "foo",
	}
}

// Validate checks the query bounds.
func (q ListQuery) Validate() error {
	if q.MaxResults < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxResults, q.MaxResults)
	}
	if q.Window != nil {
		if err := q.Window.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Matches reports whether item satisfies every predicate of the query, with
// the publish hour read in loc. The result limit is not considered.
func (q ListQuery) Matches(item Item, loc *time.Location) bool {
	if q.ItemType != "" && item.Type != q.ItemType {
		return false
	}
	if q.Status != "" && item.Status != q.Status {
		return false
	}
	if q.Window != nil {
		if loc == nil {
			loc = time.UTC
		}
		if !q.Window.Contains(item.PublishedAt.In(loc).Hour()) {
			return false
		}
	}
	if q.Category != "" && !containsString(item.Categories, q.Category) {
		return false
	}
	if q.Tag != "" && !containsString(item.Tags, q.Tag) {
		return false
	}
	return true
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// StyleContext carries the color and font size values shared with the block
// by its surroundings. Named values are palette slugs; Custom values are raw
// CSS values.
type StyleContext struct {
	TextColor             string `json:"text_color,omitempty"`
	CustomTextColor       string `json:"custom_text_color,omitempty"`
	BackgroundColor       string `json:"background_color,omitempty"`
	CustomBackgroundColor string `json:"custom_background_color,omitempty"`
	FontSize              string `json:"font_size,omitempty"`
	CustomFontSize        string `json:"custom_font_size,omitempty"`
}

// RenderContext is supplied by the caller for every render.
type RenderContext struct {
	CurrentItemID ItemID       `json:"current_item_id"`
	Style         StyleContext `json:"style"`
}

// Attributes are the block attributes saved with the block. They are not
// validated.
type Attributes struct {
	ClassName string `json:"class_name,omitempty"`
	Anchor    string `json:"anchor,omitempty"`
}

// Presentation is the set of CSS classes and inline styles derived from a
// StyleContext.
type Presentation struct {
	CSSClasses   []string
	InlineStyles string
}

// Fragments are the four values substituted into the wrapper template, in
// slot order.
type Fragments struct {
	WrapperAttributes string
	Counts            string
	CurrentItem       string
	List              string
}

// RenderResult is the output of a render.
type RenderResult struct {
	Markup string `json:"markup"`
}
