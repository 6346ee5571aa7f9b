// Package kismet implements the Prolog-style clause dialect. A rule is one
// clause `name :- body => effects.` with `,` for conjunction, `;` for
// disjunction, and `\+` for negation. Capitalized identifiers are variables,
// following logic-programming tradition; lowercase atoms are constants.
// Kismet has no native syntax for rule metadata at all, so type, priority,
// likelihood, tags, dependencies, and the inactive flag all travel on a
// `% @meta` annotation the emitter writes and this parser reads back.
package kismet

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"ruleforge/internal/dialect"
	"ruleforge/internal/rules"
)

// Parser parses kismet source into canonical rules.
type Parser struct{}

func NewParser() *Parser { return &Parser{} }

var exprSyntax = dialect.ExprSyntax{
	And:  ",",
	Or:   ";",
	Not:  `\+`,
	Term: parseTerm,
}

type meta struct {
	fields map[string]string
	flags  map[string]bool
}

func (p *Parser) Parse(text string) ([]*rules.Rule, []rules.Diagnostic) {
	log.Debug().Str("dialect", "kismet").Msg("parsing document")

	lines := strings.Split(text, "\n")
	var parsed []*rules.Rule
	var diags []rules.Diagnostic
	var pending *meta

	clauseStart := -1
	var clause []string

	flush := func() {
		src := strings.Join(clause, "\n")
		r, err := parseClause(src, clauseStart+1, pending)
		if err != nil {
			diags = append(diags, clauseDiag(err, src, clauseStart+1))
		} else {
			parsed = append(parsed, r)
			diags = append(diags, dialect.ClampRule(r)...)
		}
		pending = nil
		clause = nil
		clauseStart = -1
	}

	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			if clauseStart >= 0 {
				clause = append(clause, "")
			}
			continue
		}
		if strings.HasPrefix(trimmed, "%") {
			if m := readMeta(trimmed); m != nil {
				pending = m
			}
			continue
		}
		content := strings.TrimRight(dialect.StripLineComments(raw, "%"), " \t\r")
		if clauseStart < 0 {
			clauseStart = i
		}
		clause = append(clause, content)
		if strings.HasSuffix(strings.TrimSpace(content), ".") {
			flush()
		}
	}
	if clauseStart >= 0 {
		diags = append(diags, rules.Errf(rules.CodeParse, "", clauseStart+1, "unterminated clause: expected '.'"))
	}
	return parsed, diags
}

func clauseDiag(err error, src string, fallbackLine int) rules.Diagnostic {
	line := fallbackLine
	if se, ok := err.(*dialect.SyntaxError); ok && se.Line > 0 {
		line = se.Line
	}
	name, _ := dialect.NewScanner(src, fallbackLine).Ident()
	return rules.Errf(rules.CodeParse, name, line, "%s", err.Error())
}

// readMeta parses `% @meta key=value ... flag ...`; any other comment returns nil.
func readMeta(line string) *meta {
	body := strings.TrimSpace(strings.TrimLeft(line, "% \t"))
	if !strings.HasPrefix(body, "@meta") {
		return nil
	}
	m := &meta{fields: map[string]string{}, flags: map[string]bool{}}
	for _, f := range strings.Fields(body)[1:] {
		if k, v, ok := strings.Cut(f, "="); ok {
			m.fields[k] = v
		} else {
			m.flags[f] = true
		}
	}
	return m
}

func parseClause(src string, startLine int, pending *meta) (*rules.Rule, error) {
	sc := dialect.NewScanner(src, startLine)
	name, ok := sc.Ident()
	if !ok {
		return nil, dialect.SyntaxErrf(sc, "expected a rule name")
	}
	r := rules.NewRule(name)
	r.SourceDialect = string(dialect.Kismet)

	if sc.EatPunct(":-") {
		cond, err := exprSyntax.ParseExpr(sc)
		if err != nil {
			return nil, err
		}
		r.Conditions = cond
	}
	if sc.EatPunct("=>") {
		effects, err := parseEffects(sc)
		if err != nil {
			return nil, err
		}
		r.Effects = effects
	}
	if !sc.Eat('.') {
		return nil, dialect.SyntaxErrf(sc, "expected '.' terminating the clause")
	}
	if sc.SkipSpace(); !sc.EOF() {
		return nil, dialect.SyntaxErrf(sc, "unexpected content after clause terminator")
	}

	if pending != nil {
		applyMeta(r, pending)
	}
	return r, nil
}

func applyMeta(r *rules.Rule, m *meta) {
	if v, ok := m.fields["type"]; ok {
		r.RuleType = v
	}
	if v, ok := m.fields["priority"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			r.Priority = n
		}
	}
	if v, ok := m.fields["likelihood"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			r.Likelihood = f
		}
	}
	if v, ok := m.fields["tags"]; ok {
		for _, t := range strings.Split(v, ",") {
			if t != "" {
				r.AddTag(t)
			}
		}
	}
	if v, ok := m.fields["requires"]; ok {
		for _, d := range strings.Split(v, ",") {
			if d != "" {
				r.Dependencies = append(r.Dependencies, d)
			}
		}
	}
	if m.flags["inactive"] {
		r.IsActive = false
	}
}

var effectWrappers = map[string]rules.EffectKind{
	"emit":    rules.EffectEvent,
	"create":  rules.EffectCreate,
	"narrate": rules.EffectNarrate,
}

func parseEffects(sc *dialect.Scanner) ([]rules.Effect, error) {
	var effects []rules.Effect
	for {
		eff, err := parseEffect(sc)
		if err != nil {
			return nil, err
		}
		effects = append(effects, eff)
		if !sc.Eat(',') {
			return effects, nil
		}
	}
}

func parseEffect(sc *dialect.Scanner) (rules.Effect, error) {
	functor, ok := sc.Ident()
	if !ok {
		return rules.Effect{}, dialect.SyntaxErrf(sc, "expected an effect call")
	}
	if kind, isWrapper := effectWrappers[functor]; isWrapper {
		// A wrapper always holds a full inner call. Without one, e.g. a bare
		// emit(X), this is a plain mutation whose action is spelled like a
		// wrapper name.
		save := *sc
		if sc.Eat('(') {
			if inner, ok := sc.Ident(); ok {
				if sc.SkipSpace(); sc.Peek() == '(' {
					args, err := exprSyntax.ParseArgs(sc, inner)
					if err != nil {
						return rules.Effect{}, err
					}
					if !sc.Eat(')') {
						return rules.Effect{}, dialect.SyntaxErrf(sc, "expected ')' closing %q", functor)
					}
					return rules.Effect{Action: inner, Args: args, Kind: kind}, nil
				}
			}
		}
		*sc = save
	}
	args, err := exprSyntax.ParseArgs(sc, functor)
	if err != nil {
		return rules.Effect{}, err
	}
	return rules.Effect{Action: functor, Args: args, Kind: rules.EffectMutation}, nil
}

func parseTerm(sc *dialect.Scanner) (rules.Term, error) {
	if s, ok := sc.Quoted(); ok {
		return rules.Str(s), nil
	}
	if v, ok := sc.Number(); ok {
		return rules.Num(v), nil
	}
	ident, ok := sc.Ident()
	if !ok {
		return rules.Term{}, dialect.SyntaxErrf(sc, "expected a term")
	}
	switch ident {
	case "true":
		return rules.Bool(true), nil
	case "false":
		return rules.Bool(false), nil
	}
	if isVariableName(ident) {
		return dialect.FieldChain(sc, rules.Var(canonicalVar(ident)))
	}
	return rules.Str(ident), nil
}

// isVariableName follows the Prolog convention: variables start with an
// uppercase letter or underscore.
func isVariableName(ident string) bool {
	c := ident[0]
	return c == '_' || (c >= 'A' && c <= 'Z')
}

// canonicalVar recovers the canonical spelling of a source variable. A
// capitalized name lowercases its first letter, matching the sigil dialects'
// namespace. A leading underscore before an uppercase letter or a second
// underscore is the emitter's escape for names that are uppercase- or
// underscore-leading canonically, and is stripped; other underscore-leading
// names pass through unchanged.
func canonicalVar(ident string) string {
	c := ident[0]
	if c >= 'A' && c <= 'Z' {
		return string(c+'a'-'A') + ident[1:]
	}
	if c == '_' && len(ident) > 1 && (ident[1] == '_' || (ident[1] >= 'A' && ident[1] <= 'Z')) {
		return ident[1:]
	}
	return ident
}
