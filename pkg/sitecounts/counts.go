package sitecounts

import (
	"context"
	"fmt"
	"strings"
)

// countPublished issues one count query per public content type, in the
// repository's type order.
func (b *block) countPublished(ctx context.Context) ([]CountResult, error) {
	types, err := b.repository.ListPublicTypes(ctx)
	if err != nil {
		return nil, &RenderError{Op: "list_types", Err: err}
	}

	results := make([]CountResult, 0, len(types))
	for _, t := range types {
		n, err := b.repository.CountItems(ctx, t.Slug, ItemStatusPublished)
		if err != nil {
			return nil, &RenderError{Op: "count", Err: fmt.Errorf("type %s: %w", t.Slug, err)}
		}
		if n < 0 {
			n = 0
		}
		results = append(results, CountResult{TypeSlug: t.Slug, TypeName: t.Name, Count: n})
	}
	return results, nil
}

// countsMarkup renders one list entry per count.
func (b *block) countsMarkup(results []CountResult) string {
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString("<li>")
		sb.WriteString(b.translator.CountLine(r.Count, b.escape(r.TypeName)))
		sb.WriteString("</li>")
	}
	return sb.String()
}
