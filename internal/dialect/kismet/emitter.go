package kismet

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"ruleforge/internal/dialect"
	"ruleforge/internal/rules"
)

// Emitter renders canonical rules as kismet clauses.
type Emitter struct{}

func NewEmitter() *Emitter { return &Emitter{} }

var syntax = dialect.CondSyntax{
	And:        ", ",
	Or:         "; ",
	Not:        `\+ `,
	Var:        emitVar,
	BareSymbol: bareAtom,
}

// emitVar writes a canonical variable in the Prolog spelling. Lowercase-leading
// names capitalize their first letter. Names the capitalization rule cannot
// represent — already uppercase-leading, or underscore-leading where the parser
// would strip the underscore — gain one leading underscore as a recoverable
// escape; canonicalVar strips it back off.
func emitVar(name string) string {
	if name == "" {
		return "_"
	}
	c := name[0]
	switch {
	case c >= 'a' && c <= 'z':
		return string(c+'A'-'a') + name[1:]
	case c >= 'A' && c <= 'Z':
		return "_" + name
	case c == '_':
		if len(name) > 1 && (name[1] == '_' || (name[1] >= 'A' && name[1] <= 'Z')) {
			return "_" + name
		}
		return name
	}
	return "_" + name
}

// bareAtom allows unquoted emission only for atoms the parser will read back
// as constants: lowercase-leading identifiers that are not boolean literals.
func bareAtom(s string) bool {
	if !dialect.IsIdent(s) || s == "true" || s == "false" {
		return false
	}
	return s[0] >= 'a' && s[0] <= 'z'
}

func (e *Emitter) Render(rs []*rules.Rule, opts dialect.RenderOptions) string {
	log.Debug().Str("dialect", "kismet").Int("rules", len(rs)).Msg("rendering document")

	var b strings.Builder
	for i, r := range rs {
		if i > 0 {
			b.WriteString("\n")
		}
		if len(opts.Bindings) > 0 && len(r.Effects) > 0 {
			b.WriteString("% e.g. " + syntax.ExampleCall(r.Effects[0], opts.Bindings) + "\n")
		}
		b.WriteString(metaLine(r))
		b.WriteString(renderClause(r, opts.Pretty))
		b.WriteString("\n")
	}
	return b.String()
}

// metaLine carries every canonical field kismet has no clause syntax for.
func metaLine(r *rules.Rule) string {
	parts := []string{"% @meta"}
	if r.RuleType != "" {
		parts = append(parts, "type="+r.RuleType)
	}
	parts = append(parts, "priority="+strconv.Itoa(r.Priority))
	parts = append(parts, "likelihood="+dialect.FormatNumber(r.Likelihood))
	if len(r.Tags) > 0 {
		parts = append(parts, "tags="+strings.Join(r.Tags, ","))
	}
	if len(r.Dependencies) > 0 {
		parts = append(parts, "requires="+strings.Join(r.Dependencies, ","))
	}
	if !r.IsActive {
		parts = append(parts, "inactive")
	}
	return strings.Join(parts, " ") + "\n"
}

func renderClause(r *rules.Rule, pretty bool) string {
	if cached, ok := r.CachedOutput(string(dialect.Kismet)); ok && !pretty {
		return cached
	}

	var effs []string
	for _, eff := range r.Effects {
		effs = append(effs, renderEffect(eff))
	}

	var text string
	if pretty {
		var b strings.Builder
		b.WriteString(r.Name)
		if r.Conditions != nil {
			b.WriteString(" :-\n    " + syntax.RenderCondition(r.Conditions))
		}
		if len(effs) > 0 {
			b.WriteString("\n    => " + strings.Join(effs, ", "))
		}
		b.WriteString(".")
		text = b.String()
	} else {
		var b strings.Builder
		b.WriteString(r.Name)
		if r.Conditions != nil {
			b.WriteString(" :- " + syntax.RenderCondition(r.Conditions))
		}
		if len(effs) > 0 {
			b.WriteString(" => " + strings.Join(effs, ", "))
		}
		b.WriteString(".")
		text = b.String()
		r.CacheOutput(string(dialect.Kismet), text)
	}
	return text
}

func renderEffect(e rules.Effect) string {
	call := syntax.RenderCall(e.Action, e.Args)
	switch e.Kind {
	case rules.EffectEvent:
		return "emit(" + call + ")"
	case rules.EffectCreate:
		return "create(" + call + ")"
	case rules.EffectNarrate:
		return "narrate(" + call + ")"
	}
	return call
}
