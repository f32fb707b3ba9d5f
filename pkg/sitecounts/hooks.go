package sitecounts

import (
	"context"

	"github.com/google/uuid"
)

// HookContext carries information through a hook chain
type HookContext struct {
	Context       context.Context
	RenderID      uuid.UUID
	Attributes    Attributes
	RenderContext RenderContext
	Metadata      map[string]interface{} // shared by both chains of one render
	StopChain     bool                   // set to true to skip the remaining hooks of the chain
}

// TemplateHook may replace the wrapper template before substitution. It
// receives the four fragments that will be substituted.
type TemplateHook func(hctx *HookContext, tmpl string, f Fragments) (string, error)

// OutputHook may rewrite the assembled markup.
type OutputHook func(hctx *HookContext, markup string) (string, error)

// Hooks holds the registered hook chains
type Hooks struct {
	Template []TemplateHook
	Output   []OutputHook
}

func (h Hooks) clone() Hooks {
	return Hooks{
		Template: append([]TemplateHook(nil), h.Template...),
		Output:   append([]OutputHook(nil), h.Output...),
	}
}

// executeTemplate runs all template hooks, each receiving the previous result
func (h Hooks) executeTemplate(base *HookContext, tmpl string, f Fragments) (string, error) {
	if len(h.Template) == 0 {
		return tmpl, nil
	}

	hctx := *base
	current := tmpl
	for _, hook := range h.Template {
		next, err := hook(&hctx, current, f)
		if err != nil {
			return "", err
		}
		current = next
		if hctx.StopChain {
			break
		}
	}
	return current, nil
}

// executeOutput runs all output hooks, each receiving the previous result
func (h Hooks) executeOutput(base *HookContext, markup string) (string, error) {
	if len(h.Output) == 0 {
		return markup, nil
	}

	hctx := *base
	current := markup
	for _, hook := range h.Output {
		next, err := hook(&hctx, current)
		if err != nil {
			return "", err
		}
		current = next
		if hctx.StopChain {
			break
		}
	}
	return current, nil
}

// Common hook implementations

// ReplaceTemplate returns a template hook that swaps in tmpl. Slots 1 to 4
// are the wrapper attributes, counts, current item line and list; they may be
// written %s in order or as %[n]s / %n$s, and unused slots are dropped.
func ReplaceTemplate(tmpl string) TemplateHook {
	return func(hctx *HookContext, _ string, _ Fragments) (string, error) {
		return tmpl, nil
	}
}

// AppendOutput returns an output hook that appends suffix to the markup.
func AppendOutput(suffix string) OutputHook {
	return func(hctx *HookContext, markup string) (string, error) {
		return markup + suffix, nil
	}
}
