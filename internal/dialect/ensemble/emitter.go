package ensemble

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"ruleforge/internal/dialect"
	"ruleforge/internal/rules"
)

// Emitter renders canonical rules as ensemble trait declarations.
type Emitter struct{}

func NewEmitter() *Emitter { return &Emitter{} }

var syntax = dialect.CondSyntax{
	And:        " and ",
	Or:         " or ",
	Not:        "not ",
	Var:        func(name string) string { return "$" + name },
	BareSymbol: dialect.BareIdentSymbol,
}

func (e *Emitter) Render(rs []*rules.Rule, opts dialect.RenderOptions) string {
	log.Debug().Str("dialect", "ensemble").Int("rules", len(rs)).Msg("rendering document")

	var b strings.Builder
	for i, r := range rs {
		if i > 0 {
			b.WriteString("\n")
		}
		if len(opts.Bindings) > 0 && len(r.Effects) > 0 {
			b.WriteString("-- e.g. " + syntax.ExampleCall(r.Effects[0], opts.Bindings) + "\n")
		}
		b.WriteString(renderTrait(r, opts.Pretty))
	}
	return b.String()
}

func renderTrait(r *rules.Rule, pretty bool) string {
	if cached, ok := r.CachedOutput(string(dialect.Ensemble)); ok && !pretty {
		return cached
	}

	indent := ""
	if pretty {
		indent = "  "
	}

	var b strings.Builder
	// Ensemble has no native priority or active flag; both ride on carrier
	// annotations the parser reads back.
	b.WriteString("-- @priority " + strconv.Itoa(r.Priority) + "\n")
	if !r.IsActive {
		b.WriteString("-- @inactive\n")
	}
	b.WriteString("trait " + r.Name)
	if r.RuleType != "" {
		b.WriteString(" is " + r.RuleType)
	}
	b.WriteString(" {\n")
	b.WriteString(indent + "likelihood " + dialect.FormatNumber(r.Likelihood) + "\n")
	if r.Conditions != nil {
		b.WriteString(indent + "volition: " + syntax.RenderCondition(r.Conditions) + "\n")
	}
	for _, eff := range r.Effects {
		b.WriteString(indent + "response: " + renderResponse(eff) + "\n")
	}
	if len(r.Tags) > 0 {
		b.WriteString(indent + "tags: " + strings.Join(r.Tags, ", ") + "\n")
	}
	if len(r.Dependencies) > 0 {
		b.WriteString(indent + "needs: " + strings.Join(r.Dependencies, ", ") + "\n")
	}
	b.WriteString("}\n")

	text := b.String()
	if !pretty {
		r.CacheOutput(string(dialect.Ensemble), text)
	}
	return text
}

func renderResponse(e rules.Effect) string {
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
