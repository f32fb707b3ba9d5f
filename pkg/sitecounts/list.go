package sitecounts

import (
	"context"
	"strings"
)

// fetchList runs the filtered list query and renders the matching titles.
// The current item is skipped without backfilling its slot. When the query
// returns nothing the fragment is empty; otherwise the heading is always
// written, even if the only match was the current item.
func (b *block) fetchList(ctx context.Context, current ItemID) (string, error) {
	items, err := b.repository.QueryItems(ctx, b.query)
	if err != nil {
		return "", &RenderError{Op: "query", Err: err}
	}
	if len(items) == 0 {
		return "", nil
	}

	var entries strings.Builder
	for _, item := range items {
		if !current.IsZero() && item.ID == current {
			continue
		}
		entries.WriteString("<li> ")
		entries.WriteString(b.escape(item.Title))
		entries.WriteString(" </li>")
	}

	return "<h2>" + b.translator.ListHeading() + "</h2><ul>" + entries.String() + "</ul>", nil
}
