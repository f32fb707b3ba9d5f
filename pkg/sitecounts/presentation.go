package sitecounts

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
)

// BlockClassName is always the first class of the wrapper element.
const BlockClassName = "wp-block-site-counts"

// DefaultPresentation builds classes and styles the same way the host's page
// list block does: palette slugs become has-*-color classes, custom values
// become inline styles.
type DefaultPresentation struct{}

func (DefaultPresentation) BuildPresentation(style StyleContext) Presentation {
	var (
		classes []string
		inline  strings.Builder
	)

	if style.TextColor != "" || style.CustomTextColor != "" {
		classes = append(classes, "has-text-color")
	}
	if style.TextColor != "" {
		classes = append(classes, fmt.Sprintf("has-%s-color", strcase.ToKebab(style.TextColor)))
	} else if style.CustomTextColor != "" {
		fmt.Fprintf(&inline, "color: %s;", style.CustomTextColor)
	}

	if style.BackgroundColor != "" || style.CustomBackgroundColor != "" {
		classes = append(classes, "has-background")
	}
	if style.BackgroundColor != "" {
		classes = append(classes, fmt.Sprintf("has-%s-background-color", strcase.ToKebab(style.BackgroundColor)))
	} else if style.CustomBackgroundColor != "" {
		fmt.Fprintf(&inline, "background-color: %s;", style.CustomBackgroundColor)
	}

	if style.FontSize != "" {
		classes = append(classes, fmt.Sprintf("has-%s-font-size", strcase.ToKebab(style.FontSize)))
	} else if style.CustomFontSize != "" {
		fmt.Fprintf(&inline, "font-size: %s;", style.CustomFontSize)
	}

	return Presentation{
		CSSClasses:   classes,
		InlineStyles: inline.String(),
	}
}

// wrapperAttributes renders the attribute string of the wrapper element.
func wrapperAttributes(attrs Attributes, p Presentation, escape Escaper) string {
	classes := append([]string{BlockClassName}, p.CSSClasses...)
	classes = append(classes, strings.Fields(attrs.ClassName)...)

	var b strings.Builder
	fmt.Fprintf(&b, `class="%s"`, escape(strings.Join(classes, " ")))
	if style := strings.TrimSpace(p.InlineStyles); style != "" {
		fmt.Fprintf(&b, ` style="%s"`, escape(style))
	}
	if anchor := strings.TrimSpace(attrs.Anchor); anchor != "" {
		fmt.Fprintf(&b, ` id="%s"`, escape(anchor))
	}
	return b.String()
}
