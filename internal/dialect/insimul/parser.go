// Package insimul implements the predicate-logic block dialect: rules are
// `rule name { when (...) then { ... } ... }` blocks and variables carry a
// leading ? sigil.
package insimul

import (
	"strings"

	"github.com/rs/zerolog/log"

	"ruleforge/internal/dialect"
	"ruleforge/internal/rules"
)

// Parser parses insimul source into canonical rules.
type Parser struct{}

func NewParser() *Parser { return &Parser{} }

var exprSyntax = dialect.ExprSyntax{
	And:  "and",
	Or:   "or",
	Not:  "not",
	Term: parseTerm,
}

func (p *Parser) Parse(text string) ([]*rules.Rule, []rules.Diagnostic) {
	log.Debug().Str("dialect", "insimul").Msg("parsing document")

	stripped := dialect.StripLineComments(text, "//")
	blocks, diags := splitBlocks(stripped)

	var parsed []*rules.Rule
	for _, b := range blocks {
		r, err := parseBlock(b.src, b.line)
		if err != nil {
			diags = append(diags, blockDiag(err, b))
			continue
		}
		parsed = append(parsed, r)
		diags = append(diags, dialect.ClampRule(r)...)
	}
	return parsed, diags
}

type block struct {
	src  string
	line int
}

func blockDiag(err error, b block) rules.Diagnostic {
	line := b.line
	if se, ok := err.(*dialect.SyntaxError); ok && se.Line > 0 {
		line = se.Line
	}
	name := ""
	if sc := dialect.NewScanner(b.src, b.line); sc.EatWord("rule") {
		name, _ = sc.Ident()
	}
	return rules.Errf(rules.CodeParse, name, line, "%s", err.Error())
}

// splitBlocks cuts the document at top-level `rule` keywords. Brace depth and
// string literals are tracked so a `rule` inside a block body cannot start a
// new block.
func splitBlocks(src string) ([]block, []rules.Diagnostic) {
	var blocks []block
	var diags []rules.Diagnostic
	line := 1
	depth := 0
	inString := false
	start := -1
	startLine := 0
	sawJunk := false
	junkLine := 0

	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\n' {
			line++
			inString = false
			continue
		}
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 && wordAt(src, i, "rule") {
				if start >= 0 {
					blocks = append(blocks, block{src: src[start:i], line: startLine})
				}
				start = i
				startLine = line
				i += len("rule") - 1
				continue
			}
			if depth == 0 && start < 0 && !sawJunk && c != ' ' && c != '\t' && c != '\r' {
				sawJunk = true
				junkLine = line
			}
		}
	}
	if start >= 0 {
		blocks = append(blocks, block{src: src[start:], line: startLine})
	}
	if sawJunk {
		diags = append(diags, rules.Errf(rules.CodeParse, "", junkLine, "expected a rule declaration"))
	}
	return blocks, diags
}

func wordAt(src string, i int, word string) bool {
	if !strings.HasPrefix(src[i:], word) {
		return false
	}
	if i > 0 && isWordByte(src[i-1]) {
		return false
	}
	end := i + len(word)
	return end >= len(src) || !isWordByte(src[end])
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func parseBlock(src string, startLine int) (*rules.Rule, error) {
	sc := dialect.NewScanner(src, startLine)
	if !sc.EatWord("rule") {
		return nil, dialect.SyntaxErrf(sc, "expected 'rule'")
	}
	name, ok := sc.Ident()
	if !ok {
		return nil, dialect.SyntaxErrf(sc, "expected rule name after 'rule'")
	}
	r := rules.NewRule(name)
	r.SourceDialect = string(dialect.Insimul)

	if !sc.Eat('{') {
		return nil, dialect.SyntaxErrf(sc, "expected '{' after rule name")
	}
	for {
		if sc.Eat('}') {
			break
		}
		if sc.EOF() {
			return nil, dialect.SyntaxErrf(sc, "unterminated rule block")
		}
		switch {
		case sc.EatWord("when"):
			if !sc.Eat('(') {
				return nil, dialect.SyntaxErrf(sc, "expected '(' after 'when'")
			}
			cond, err := exprSyntax.ParseExpr(sc)
			if err != nil {
				return nil, err
			}
			if !sc.Eat(')') {
				return nil, dialect.SyntaxErrf(sc, "expected ')' closing the when clause")
			}
			r.Conditions = cond
		case sc.EatWord("then"):
			if !sc.Eat('{') {
				return nil, dialect.SyntaxErrf(sc, "expected '{' after 'then'")
			}
			effects, err := parseEffects(sc)
			if err != nil {
				return nil, err
			}
			r.Effects = effects
		case sc.EatWord("type"):
			if !sc.Eat(':') {
				return nil, dialect.SyntaxErrf(sc, "expected ':' after 'type'")
			}
			tok, ok := dialect.DashedIdent(sc)
			if !ok {
				return nil, dialect.SyntaxErrf(sc, "expected a rule type")
			}
			r.RuleType = tok
		case sc.EatWord("priority"):
			if !sc.Eat(':') {
				return nil, dialect.SyntaxErrf(sc, "expected ':' after 'priority'")
			}
			v, ok := sc.Number()
			if !ok {
				return nil, dialect.SyntaxErrf(sc, "expected a numeric priority")
			}
			r.Priority = int(v)
		case sc.EatWord("likelihood"):
			if !sc.Eat(':') {
				return nil, dialect.SyntaxErrf(sc, "expected ':' after 'likelihood'")
			}
			v, ok := sc.Number()
			if !ok {
				return nil, dialect.SyntaxErrf(sc, "expected a numeric likelihood")
			}
			r.Likelihood = v
		case sc.EatWord("tags"):
			vals, err := bracketList(sc, "tags")
			if err != nil {
				return nil, err
			}
			for _, t := range vals {
				r.AddTag(t)
			}
		case sc.EatWord("requires"):
			vals, err := bracketList(sc, "requires")
			if err != nil {
				return nil, err
			}
			r.Dependencies = append(r.Dependencies, vals...)
		case sc.EatWord("active"):
			if !sc.Eat(':') {
				return nil, dialect.SyntaxErrf(sc, "expected ':' after 'active'")
			}
			switch {
			case sc.EatWord("true"):
				r.IsActive = true
			case sc.EatWord("false"):
				r.IsActive = false
			default:
				return nil, dialect.SyntaxErrf(sc, "expected true or false after 'active:'")
			}
		default:
			return nil, dialect.SyntaxErrf(sc, "unexpected token in rule body")
		}
	}
	return r, nil
}

func bracketList(sc *dialect.Scanner, key string) ([]string, error) {
	if !sc.Eat(':') {
		return nil, dialect.SyntaxErrf(sc, "expected ':' after '%s'", key)
	}
	if !sc.Eat('[') {
		return nil, dialect.SyntaxErrf(sc, "expected '[' after '%s:'", key)
	}
	var vals []string
	if sc.Eat(']') {
		return vals, nil
	}
	for {
		tok, ok := dialect.DashedIdent(sc)
		if !ok {
			return nil, dialect.SyntaxErrf(sc, "expected an identifier in the %s list", key)
		}
		vals = append(vals, tok)
		if sc.Eat(']') {
			return vals, nil
		}
		if !sc.Eat(',') {
			return nil, dialect.SyntaxErrf(sc, "expected ',' or ']' in the %s list", key)
		}
	}
}

func parseTerm(sc *dialect.Scanner) (rules.Term, error) {
	if sc.Eat('?') {
		name, ok := sc.Ident()
		if !ok {
			return rules.Term{}, dialect.SyntaxErrf(sc, "expected a variable name after '?'")
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

func parseEffects(sc *dialect.Scanner) ([]rules.Effect, error) {
	var effects []rules.Effect
	for {
		if sc.Eat('}') {
			return effects, nil
		}
		if sc.EOF() {
			return nil, dialect.SyntaxErrf(sc, "unterminated effect block")
		}
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
			return nil, err
		}
		effects = append(effects, rules.Effect{Action: action, Args: args, Kind: kind})
	}
}
