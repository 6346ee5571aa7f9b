package tott

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"ruleforge/internal/dialect"
	"ruleforge/internal/rules"
)

// Emitter renders canonical rules as tott rule definitions.
type Emitter struct{}

func NewEmitter() *Emitter { return &Emitter{} }

var syntax = dialect.CondSyntax{
	And: " and ",
	Or:  " or ",
	Not: "not ",
	Var: func(name string) string { return name },
	Bool: func(v bool) string {
		if v {
			return "True"
		}
		return "False"
	},
	// Bare identifiers are variables in tott, so string constants are always
	// quoted; BareSymbol stays nil.
}

func (e *Emitter) Render(rs []*rules.Rule, opts dialect.RenderOptions) string {
	log.Debug().Str("dialect", "tott").Int("rules", len(rs)).Msg("rendering document")

	var b strings.Builder
	for i, r := range rs {
		if i > 0 {
			b.WriteString("\n")
		}
		if len(opts.Bindings) > 0 && len(r.Effects) > 0 {
			b.WriteString("# e.g. " + syntax.ExampleCall(r.Effects[0], opts.Bindings) + "\n")
		}
		b.WriteString(renderDef(r, opts.Pretty))
	}
	return b.String()
}

func renderDef(r *rules.Rule, pretty bool) string {
	if cached, ok := r.CachedOutput(string(dialect.Tott)); ok && !pretty {
		return cached
	}

	indent := "  "
	if pretty {
		indent = "    "
	}

	var b strings.Builder
	// Likelihood, dependencies, and the inactive flag have no def-header
	// syntax; they ride on carrier annotations above the definition.
	b.WriteString("# @likelihood " + dialect.FormatNumber(r.Likelihood) + "\n")
	if len(r.Dependencies) > 0 {
		b.WriteString("# @requires " + strings.Join(r.Dependencies, ",") + "\n")
	}
	if !r.IsActive {
		b.WriteString("# @inactive\n")
	}

	params := []string{}
	if r.RuleType != "" {
		params = append(params, "type="+r.RuleType)
	}
	params = append(params, "priority="+strconv.Itoa(r.Priority))
	b.WriteString("def rule " + r.Name + "(" + strings.Join(params, ", ") + "):\n")

	effIndent := indent
	if r.Conditions != nil {
		b.WriteString(indent + "if " + syntax.RenderCondition(r.Conditions) + ":\n")
		effIndent = indent + indent
	}
	for _, eff := range r.Effects {
		b.WriteString(effIndent + renderEffect(eff) + "\n")
	}
	if len(r.Tags) > 0 {
		b.WriteString(indent + "tags: " + strings.Join(r.Tags, ", ") + "\n")
	}
	if r.Conditions == nil && len(r.Effects) == 0 && len(r.Tags) == 0 {
		b.WriteString(indent + "pass\n")
	}

	text := b.String()
	if !pretty {
		r.CacheOutput(string(dialect.Tott), text)
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
