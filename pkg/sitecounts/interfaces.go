package sitecounts

import (
	"context"
	"html"
)

// Repository answers the read queries a render needs. Implementations must be
// safe for concurrent use.
type Repository interface {
	// ListPublicTypes returns the public content types in registration order.
	ListPublicTypes(ctx context.Context) ([]ContentType, error)

	// CountItems returns how many items of the given type have the given status.
	CountItems(ctx context.Context, typeSlug string, status ItemStatus) (int, error)

	// QueryItems returns at most q.MaxResults items matching every predicate
	// of q, newest publish date first, ties broken by descending id.
	QueryItems(ctx context.Context, q ListQuery) ([]ContentItem, error)
}

// PresentationBuilder derives CSS classes and inline styles from the shared
// style context.
type PresentationBuilder interface {
	BuildPresentation(style StyleContext) Presentation
}

// PresentationBuilderFunc adapts a function to PresentationBuilder.
type PresentationBuilderFunc func(style StyleContext) Presentation

func (f PresentationBuilderFunc) BuildPresentation(style StyleContext) Presentation {
	return f(style)
}

// Translator produces the human readable strings of the block. Arguments are
// already escaped; implementations must not escape them again.
type Translator interface {
	CountLine(count int, typeName string) string
	CurrentItemLine(id ItemID) string
	ListHeading() string
}

// Escaper escapes text for inclusion in HTML content or attribute values.
type Escaper func(s string) string

// HTMLEscaper is the default Escaper.
func HTMLEscaper(s string) string {
	return html.EscapeString(s)
}
