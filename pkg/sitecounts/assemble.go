package sitecounts

import (
	"strconv"
	"strings"
)

// DefaultTemplate is the wrapper template. Slots: wrapper attributes, count
// lines, current item line, filtered list.
const DefaultTemplate = `<div %[1]s><ul>%[2]s</ul><p>%[3]s</p>%[4]s</div>`

// assemble runs the template chain, substitutes the fragments and runs the
// output chain.
func assemble(hooks Hooks, base *HookContext, tmpl string, f Fragments) (string, error) {
	tmpl, err := hooks.executeTemplate(base, tmpl, f)
	if err != nil {
		return "", &RenderError{Op: "template_hook", Err: err}
	}

	markup := substitute(tmpl, f.WrapperAttributes, f.Counts, f.CurrentItem, f.List)

	markup, err = hooks.executeOutput(base, markup)
	if err != nil {
		return "", &RenderError{Op: "output_hook", Err: err}
	}
	return markup, nil
}

// substitute fills the slots of tmpl with values. A slot is written as %s
// (next value), %[n]s or %n$s (value n, 1-based), and %% is a literal percent
// sign. Values a template does not reference are dropped, slots past the last
// value are left empty, and any other verb is copied through unchanged.
func substitute(tmpl string, values ...string) string {
	var (
		sb   strings.Builder
		next int
	)
	slot := func(n int) {
		if n >= 1 && n <= len(values) {
			sb.WriteString(values[n-1])
		}
	}

	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' || i+1 == len(tmpl) {
			sb.WriteByte(tmpl[i])
			continue
		}
		rest := tmpl[i+1:]
		switch {
		case rest[0] == '%':
			sb.WriteByte('%')
			i++
		case rest[0] == 's':
			next++
			slot(next)
			i++
		case rest[0] == '[':
			end := strings.Index(rest, "]s")
			n, err := strconv.Atoi(rest[1:max(end, 1)])
			if end < 0 || err != nil {
				sb.WriteByte('%')
				continue
			}
			slot(n)
			i += end + 2
		default:
			end := strings.Index(rest, "$s")
			n, err := strconv.Atoi(rest[:max(end, 0)])
			if end <= 0 || err != nil {
				sb.WriteByte('%')
				continue
			}
			slot(n)
			i += end + 2
		}
	}
	return sb.String()
}
