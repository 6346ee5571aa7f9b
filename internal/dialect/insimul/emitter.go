package insimul

import (
	"strings"

	"github.com/rs/zerolog/log"

	"ruleforge/internal/dialect"
	"ruleforge/internal/rules"
)

// Emitter renders canonical rules as insimul blocks.
type Emitter struct{}

func NewEmitter() *Emitter { return &Emitter{} }

var syntax = dialect.CondSyntax{
	And:        " and ",
	Or:         " or ",
	Not:        "not ",
	Var:        func(name string) string { return "?" + name },
	BareSymbol: dialect.BareIdentSymbol,
}

func (e *Emitter) Render(rs []*rules.Rule, opts dialect.RenderOptions) string {
	log.Debug().Str("dialect", "insimul").Int("rules", len(rs)).Msg("rendering document")

	var b strings.Builder
	for i, r := range rs {
		if i > 0 {
			b.WriteString("\n")
		}
		if len(opts.Bindings) > 0 && len(r.Effects) > 0 {
			b.WriteString("// e.g. " + syntax.ExampleCall(r.Effects[0], opts.Bindings) + "\n")
		}
		b.WriteString(renderRule(r, opts.Pretty))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRule(r *rules.Rule, pretty bool) string {
	if !pretty {
		if cached, ok := r.CachedOutput(string(dialect.Insimul)); ok {
			return cached
		}
	}

	var parts []string
	if r.Conditions != nil {
		parts = append(parts, "when ("+syntax.RenderCondition(r.Conditions)+")")
	}
	if len(r.Effects) > 0 {
		var effs []string
		for _, eff := range r.Effects {
			effs = append(effs, renderEffect(eff))
		}
		if pretty {
			parts = append(parts, "then {\n    "+strings.Join(effs, "\n    ")+"\n  }")
		} else {
			parts = append(parts, "then { "+strings.Join(effs, " ")+" }")
		}
	}
	if r.RuleType != "" {
		parts = append(parts, "type: "+r.RuleType)
	}
	parts = append(parts, "priority: "+dialect.FormatNumber(float64(r.Priority)))
	parts = append(parts, "likelihood: "+dialect.FormatNumber(r.Likelihood))
	if len(r.Tags) > 0 {
		parts = append(parts, "tags: ["+strings.Join(r.Tags, ", ")+"]")
	}
	if len(r.Dependencies) > 0 {
		parts = append(parts, "requires: ["+strings.Join(r.Dependencies, ", ")+"]")
	}
	if !r.IsActive {
		parts = append(parts, "active: false")
	}

	var text string
	if pretty {
		text = "rule " + r.Name + " {\n  " + strings.Join(parts, "\n  ") + "\n}"
	} else {
		text = "rule " + r.Name + " { " + strings.Join(parts, " ") + " }"
		r.CacheOutput(string(dialect.Insimul), text)
	}
	return text
}

func renderEffect(e rules.Effect) string {
	call := syntax.RenderCall(e.Action, e.Args)
	switch e.Kind {
	case rules.EffectEvent:
		return "emit " + call
	case rules.EffectCreate:
		return "create " + call
	case rules.EffectNarrate:
		return "narrate " + call
	}
	return call
}
