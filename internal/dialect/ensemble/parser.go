// Package ensemble implements the trait/likelihood declaration dialect:
// rules are `trait name is type { ... }` blocks with $-sigil variables,
// `--` comments, and `-- @key` carrier annotations for the fields the
// dialect has no native syntax for (priority, the inactive flag).
package ensemble

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"ruleforge/internal/dialect"
	"ruleforge/internal/rules"
)

// Parser parses ensemble source into canonical rules.
type Parser struct{}

func NewParser() *Parser { return &Parser{} }

var exprSyntax = dialect.ExprSyntax{
	And:  "and",
	Or:   "or",
	Not:  "not",
	Term: parseTerm,
}

// carried holds annotation values waiting for the next trait declaration.
type carried struct {
	priority   *int
	likelihood *float64
	inactive   bool
}

func (p *Parser) Parse(text string) ([]*rules.Rule, []rules.Diagnostic) {
	log.Debug().Str("dialect", "ensemble").Msg("parsing document")

	lines := strings.Split(text, "\n")
	var parsed []*rules.Rule
	var diags []rules.Diagnostic
	var pending carried

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == "":
			i++
		case strings.HasPrefix(line, "--"):
			readAnnotation(strings.TrimSpace(strings.TrimPrefix(line, "--")), &pending)
			i++
		case strings.HasPrefix(line, "trait"):
			end := findBlockEnd(lines, i)
			if end < 0 {
				diags = append(diags, rules.Errf(rules.CodeParse, traitName(line), i+1, "unterminated trait block"))
				return parsed, diags
			}
			r, err := parseTrait(lines[i:end+1], i+1, pending)
			pending = carried{}
			if err != nil {
				diags = append(diags, traitDiag(err, line, i+1))
			} else {
				parsed = append(parsed, r)
				diags = append(diags, dialect.ClampRule(r)...)
			}
			i = end + 1
		default:
			diags = append(diags, rules.Errf(rules.CodeParse, "", i+1, "expected a trait declaration"))
			i = skipToNextTrait(lines, i+1)
		}
	}
	return parsed, diags
}

func traitDiag(err error, header string, fallbackLine int) rules.Diagnostic {
	line := fallbackLine
	if se, ok := err.(*dialect.SyntaxError); ok && se.Line > 0 {
		line = se.Line
	}
	return rules.Errf(rules.CodeParse, traitName(header), line, "%s", err.Error())
}

func traitName(header string) string {
	sc := dialect.NewScanner(header, 1)
	if !sc.EatWord("trait") {
		return ""
	}
	name, _ := sc.Ident()
	return name
}

// findBlockEnd locates the line holding the closing brace of a trait block
// opened at start. Braces sit on their own depth track per line; trait bodies
// never nest blocks.
func findBlockEnd(lines []string, start int) int {
	for j := start; j < len(lines); j++ {
		content := strings.TrimSpace(dialect.StripLineComments(lines[j], "--"))
		if strings.HasSuffix(content, "}") {
			return j
		}
	}
	return -1
}

func skipToNextTrait(lines []string, from int) int {
	for j := from; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j])
		if strings.HasPrefix(t, "trait") || strings.HasPrefix(t, "--") {
			return j
		}
	}
	return len(lines)
}

func readAnnotation(body string, pending *carried) {
	if !strings.HasPrefix(body, "@") {
		return
	}
	fields := strings.Fields(body)
	switch fields[0] {
	case "@priority":
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil {
				pending.priority = &v
			}
		}
	case "@likelihood":
		if len(fields) > 1 {
			if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
				pending.likelihood = &v
			}
		}
	case "@inactive":
		pending.inactive = true
	}
}

func parseTrait(lines []string, startLine int, pending carried) (*rules.Rule, error) {
	header := dialect.NewScanner(lines[0], startLine)
	if !header.EatWord("trait") {
		return nil, dialect.SyntaxErrf(header, "expected 'trait'")
	}
	name, ok := header.Ident()
	if !ok {
		return nil, dialect.SyntaxErrf(header, "expected trait name after 'trait'")
	}
	r := rules.NewRule(name)
	r.SourceDialect = string(dialect.Ensemble)
	if header.EatWord("is") {
		ruleType, ok := dialect.DashedIdent(header)
		if !ok {
			return nil, dialect.SyntaxErrf(header, "expected a rule type after 'is'")
		}
		r.RuleType = ruleType
	}
	if !header.Eat('{') {
		return nil, dialect.SyntaxErrf(header, "expected '{' in trait header")
	}

	if len(lines) == 1 {
		// Lone `trait name {}` on one line; bodies are otherwise one
		// declaration per line.
		if header.Eat('}') {
			if header.SkipSpace(); header.EOF() {
				applyCarried(r, pending)
				return r, nil
			}
		}
		return nil, dialect.SyntaxErrf(header, "trait body must be one declaration per line")
	}

	applyCarried(r, pending)

	body := lines[1 : len(lines)-1]
	for off, raw := range body {
		lineNo := startLine + 1 + off
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		line = strings.TrimSpace(dialect.StripLineComments(line, "--"))
		if line == "" {
			continue
		}
		sc := dialect.NewScanner(line, lineNo)
		switch {
		case sc.EatWord("likelihood"):
			v, ok := sc.Number()
			if !ok {
				return nil, dialect.SyntaxErrf(sc, "expected a numeric likelihood")
			}
			r.Likelihood = v
		case sc.EatWord("volition"):
			if !sc.Eat(':') {
				return nil, dialect.SyntaxErrf(sc, "expected ':' after 'volition'")
			}
			cond, err := exprSyntax.ParseExpr(sc)
			if err != nil {
				return nil, err
			}
			if sc.SkipSpace(); !sc.EOF() {
				return nil, dialect.SyntaxErrf(sc, "unexpected content after volition expression")
			}
			r.Conditions = cond
		case sc.EatWord("response"):
			if !sc.Eat(':') {
				return nil, dialect.SyntaxErrf(sc, "expected ':' after 'response'")
			}
			eff, err := parseResponse(sc)
			if err != nil {
				return nil, err
			}
			r.Effects = append(r.Effects, eff)
		case sc.EatWord("tags"):
			vals, err := commaList(sc, "tags")
			if err != nil {
				return nil, err
			}
			for _, t := range vals {
				r.AddTag(t)
			}
		case sc.EatWord("needs"):
			vals, err := commaList(sc, "needs")
			if err != nil {
				return nil, err
			}
			r.Dependencies = append(r.Dependencies, vals...)
		default:
			return nil, dialect.SyntaxErrf(sc, "unexpected line in trait body")
		}
	}
	return r, nil
}

func applyCarried(r *rules.Rule, pending carried) {
	if pending.priority != nil {
		r.Priority = *pending.priority
	}
	if pending.likelihood != nil {
		r.Likelihood = *pending.likelihood
	}
	if pending.inactive {
		r.IsActive = false
	}
}

func parseResponse(sc *dialect.Scanner) (rules.Effect, error) {
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
	return rules.Effect{Action: action, Args: args, Kind: kind}, nil
}

func commaList(sc *dialect.Scanner, key string) ([]string, error) {
	if !sc.Eat(':') {
		return nil, dialect.SyntaxErrf(sc, "expected ':' after '%s'", key)
	}
	var vals []string
	for {
		tok, ok := dialect.DashedIdent(sc)
		if !ok {
			return nil, dialect.SyntaxErrf(sc, "expected an identifier in the %s list", key)
		}
		vals = append(vals, tok)
		if !sc.Eat(',') {
			return vals, nil
		}
	}
}

func parseTerm(sc *dialect.Scanner) (rules.Term, error) {
	if sc.Eat('$') {
		name, ok := sc.Ident()
		if !ok {
			return rules.Term{}, dialect.SyntaxErrf(sc, "expected a variable name after '$'")
		}
		return dialect.FieldChain(sc, rules.Var(name))
	}
	if s, ok := sc.Quoted(); ok {
		return rules.Str(s), nil
	}
	if v, ok := sc.Number(); ok {
		return rules.Num(v), nil
	}
	if sc.EatWord("true") {
		return rules.Bool(true), nil
	}
	if sc.EatWord("false") {
		return rules.Bool(false), nil
	}
	if sym, ok := sc.Ident(); ok {
		return rules.Str(sym), nil
	}
	return rules.Term{}, dialect.SyntaxErrf(sc, "expected a term")
}
