// Package tott implements the Talk-of-the-Town genealogy-predicate dialect:
// rules are `def rule name(...):` blocks with an indented `if` precondition
// and effect lines. Bare identifiers in argument position are variables, the
// genealogy convention (`parent_of(lord, heir)` relates two free variables);
// constants are quoted strings, numbers, or True/False. Fields the dialect
// has no native syntax for ride on `# @key` annotations above the def.
package tott

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"ruleforge/internal/dialect"
	"ruleforge/internal/rules"
)

// Parser parses tott source into canonical rules.
type Parser struct{}

func NewParser() *Parser { return &Parser{} }

var exprSyntax = dialect.ExprSyntax{
	And:  "and",
	Or:   "or",
	Not:  "not",
	Term: parseTerm,
}

type carried struct {
	likelihood *float64
	priority   *int
	requires   []string
	inactive   bool
}

func (p *Parser) Parse(text string) ([]*rules.Rule, []rules.Diagnostic) {
	log.Debug().Str("dialect", "tott").Msg("parsing document")

	lines := strings.Split(text, "\n")
	var parsed []*rules.Rule
	var diags []rules.Diagnostic
	var pending carried

	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case trimmed == "":
			i++
		case strings.HasPrefix(trimmed, "#"):
			readAnnotation(strings.TrimSpace(strings.TrimLeft(trimmed, "# \t")), &pending)
			i++
		case strings.HasPrefix(trimmed, "def"):
			end := blockEnd(lines, i)
			r, err := parseDef(lines[i:end], i+1, pending)
			pending = carried{}
			if err != nil {
				diags = append(diags, defDiag(err, lines[i], i+1))
			} else {
				parsed = append(parsed, r)
				diags = append(diags, dialect.ClampRule(r)...)
			}
			i = end
		default:
			diags = append(diags, rules.Errf(rules.CodeParse, "", i+1, "expected a rule definition"))
			i = blockEnd(lines, i)
		}
	}
	return parsed, diags
}

// blockEnd returns the index after the def block starting at start: the block
// runs while lines are indented, blank, or comments.
func blockEnd(lines []string, start int) int {
	j := start + 1
	for j < len(lines) {
		line := lines[j]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			j++
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			j++
			continue
		}
		break
	}
	return j
}

func defDiag(err error, header string, fallbackLine int) rules.Diagnostic {
	line := fallbackLine
	if se, ok := err.(*dialect.SyntaxError); ok && se.Line > 0 {
		line = se.Line
	}
	name := ""
	if sc := dialect.NewScanner(header, 1); sc.EatWord("def") && sc.EatWord("rule") {
		name, _ = sc.Ident()
	}
	return rules.Errf(rules.CodeParse, name, line, "%s", err.Error())
}

func readAnnotation(body string, pending *carried) {
	if !strings.HasPrefix(body, "@") {
		return
	}
	fields := strings.Fields(body)
	switch fields[0] {
	case "@likelihood":
		if len(fields) > 1 {
			if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
				pending.likelihood = &v
			}
		}
	case "@priority":
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil {
				pending.priority = &v
			}
		}
	case "@requires":
		if len(fields) > 1 {
			for _, d := range strings.Split(fields[1], ",") {
				if d != "" {
					pending.requires = append(pending.requires, d)
				}
			}
		}
	case "@inactive":
		pending.inactive = true
	}
}

func parseDef(lines []string, startLine int, pending carried) (*rules.Rule, error) {
	header := dialect.NewScanner(lines[0], startLine)
	if !header.EatWord("def") || !header.EatWord("rule") {
		return nil, dialect.SyntaxErrf(header, "expected 'def rule'")
	}
	name, ok := header.Ident()
	if !ok {
		return nil, dialect.SyntaxErrf(header, "expected rule name after 'def rule'")
	}
	r := rules.NewRule(name)
	r.SourceDialect = string(dialect.Tott)

	if header.Eat('(') {
		if err := parseParams(header, r); err != nil {
			return nil, err
		}
	}
	if !header.Eat(':') {
		return nil, dialect.SyntaxErrf(header, "expected ':' ending the def header")
	}

	if pending.likelihood != nil {
		r.Likelihood = *pending.likelihood
	}
	if pending.priority != nil {
		r.Priority = *pending.priority
	}
	r.Dependencies = append(r.Dependencies, pending.requires...)
	if pending.inactive {
		r.IsActive = false
	}

	for off := 1; off < len(lines); off++ {
		lineNo := startLine + off
		trimmed := strings.TrimSpace(lines[off])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		trimmed = strings.TrimSpace(dialect.StripLineComments(trimmed, "#"))
		if trimmed == "" || trimmed == "pass" {
			continue
		}
		sc := dialect.NewScanner(trimmed, lineNo)
		switch {
		case strings.HasPrefix(trimmed, "if "):
			sc.EatWord("if")
			cond, err := exprSyntax.ParseExpr(sc)
			if err != nil {
				return nil, err
			}
			if !sc.Eat(':') {
				return nil, dialect.SyntaxErrf(sc, "expected ':' ending the if line")
			}
			r.Conditions = cond
		case strings.HasPrefix(trimmed, "tags:"):
			sc.EatWord("tags")
			sc.Eat(':')
			for {
				tag, ok := dialect.DashedIdent(sc)
				if !ok {
					return nil, dialect.SyntaxErrf(sc, "expected an identifier in the tags list")
				}
				r.AddTag(tag)
				if !sc.Eat(',') {
					break
				}
			}
		default:
			eff, err := parseEffect(sc)
			if err != nil {
				return nil, err
			}
			r.Effects = append(r.Effects, eff)
		}
	}
	return r, nil
}

func parseParams(sc *dialect.Scanner, r *rules.Rule) error {
	if sc.Eat(')') {
		return nil
	}
	for {
		key, ok := sc.Ident()
		if !ok {
			return dialect.SyntaxErrf(sc, "expected a parameter name in the def header")
		}
		if !sc.Eat('=') {
			return dialect.SyntaxErrf(sc, "expected '=' after parameter %q", key)
		}
		switch key {
		case "type":
			v, ok := dialect.DashedIdent(sc)
			if !ok {
				return dialect.SyntaxErrf(sc, "expected a rule type")
			}
			r.RuleType = v
		case "priority":
			v, ok := sc.Number()
			if !ok {
				return dialect.SyntaxErrf(sc, "expected a numeric priority")
			}
			r.Priority = int(v)
		default:
			return dialect.SyntaxErrf(sc, "unknown def parameter %q", key)
		}
		if sc.Eat(')') {
			return nil
		}
		if !sc.Eat(',') {
			return dialect.SyntaxErrf(sc, "expected ',' or ')' in the def header")
		}
	}
}

func parseEffect(sc *dialect.Scanner) (rules.Effect, error) {
	kind := rules.EffectMutation
	switch {
	case sc.EatKeyword("emit"):
		kind = rules.EffectEvent
	case sc.EatKeyword("create"):
		kind = rules.EffectCreate
	case sc.EatKeyword("narrate"):
		kind = rules.EffectNarrate
	}
	action, args, err := exprSyntax.ParseCall(sc)
	if err != nil {
		return rules.Effect{}, err
	}
	if sc.SkipSpace(); !sc.EOF() {
		return rules.Effect{}, dialect.SyntaxErrf(sc, "unexpected content after effect call")
	}
	return rules.Effect{Action: action, Args: args, Kind: kind}, nil
}

func parseTerm(sc *dialect.Scanner) (rules.Term, error) {
	if s, ok := sc.Quoted(); ok {
		return rules.Str(s), nil
	}
	if v, ok := sc.Number(); ok {
		return rules.Num(v), nil
	}
	if sc.EatWord("True") {
		return rules.Bool(true), nil
	}
	if sc.EatWord("False") {
		return rules.Bool(false), nil
	}
	ident, ok := sc.Ident()
	if !ok {
		return rules.Term{}, dialect.SyntaxErrf(sc, "expected a term")
	}
	return dialect.FieldChain(sc, rules.Var(ident))
}
