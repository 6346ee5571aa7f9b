package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruleforge/internal/rules"
)

func TestScanner_Primitives(t *testing.T) {
	sc := NewScanner(`  greet ( "hello there", 42, -0.5 )`, 1)
	word, ok := sc.Ident()
	require.True(t, ok)
	assert.Equal(t, "greet", word)
	assert.True(t, sc.Eat('('))

	s, ok := sc.Quoted()
	require.True(t, ok)
	assert.Equal(t, "hello there", s)
	assert.True(t, sc.Eat(','))

	n, ok := sc.Number()
	require.True(t, ok)
	assert.Equal(t, 42.0, n)
	assert.True(t, sc.Eat(','))

	n, ok = sc.Number()
	require.True(t, ok)
	assert.Equal(t, -0.5, n)
	assert.True(t, sc.Eat(')'))
	sc.SkipSpace()
	assert.True(t, sc.EOF())
}

func TestScanner_QuotedDecodesEscapes(t *testing.T) {
	sc := NewScanner(`"line1\nline2\tend \"q\" back\\slash"`, 1)
	s, ok := sc.Quoted()
	require.True(t, ok)
	assert.Equal(t, "line1\nline2\tend \"q\" back\\slash", s)

	sc = NewScanner(QuoteConstant("a\nb\tc"), 1)
	s, ok = sc.Quoted()
	require.True(t, ok)
	assert.Equal(t, "a\nb\tc", s)
}

func TestScanner_EatKeywordNeedsFollowingIdent(t *testing.T) {
	sc := NewScanner("emit foo(1)", 1)
	assert.True(t, sc.EatKeyword("emit"))

	sc = NewScanner("emit(1)", 1)
	assert.False(t, sc.EatKeyword("emit"))
	word, ok := sc.Ident()
	require.True(t, ok)
	assert.Equal(t, "emit", word)
}

func TestScanner_EatWordRespectsBoundaries(t *testing.T) {
	sc := NewScanner("ruler", 1)
	assert.False(t, sc.EatWord("rule"))
	assert.True(t, sc.EatWord("ruler"))
}

func TestScanner_LineTracking(t *testing.T) {
	sc := NewScanner("a\nb\nc", 1)
	sc.Ident()
	sc.Ident()
	assert.Equal(t, 2, sc.Line())
	sc.Ident()
	assert.Equal(t, 3, sc.Line())
}

func TestDashedIdent(t *testing.T) {
	tok, ok := DashedIdent(NewScanner("default-trait rest", 1))
	require.True(t, ok)
	assert.Equal(t, "default-trait", tok)

	tok, ok = DashedIdent(NewScanner("plain", 1))
	require.True(t, ok)
	assert.Equal(t, "plain", tok)
}

func TestStripLineComments_PreservesStringsAndNewlines(t *testing.T) {
	src := "say(\"not // a comment\") // trailing\nnext"
	out := StripLineComments(src, "//")
	assert.Contains(t, out, `"not // a comment"`)
	assert.NotContains(t, out, "trailing")
	assert.Contains(t, out, "\nnext")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1", FormatNumber(1.0))
	assert.Equal(t, "0.85", FormatNumber(0.85))
	assert.Equal(t, "-3", FormatNumber(-3.0))
}

func testTerm(sc *Scanner) (rules.Term, error) {
	if sc.Eat('?') {
		name, ok := sc.Ident()
		if !ok {
			return rules.Term{}, SyntaxErrf(sc, "expected a variable name")
		}
		return rules.Var(name), nil
	}
	if s, ok := sc.Quoted(); ok {
		return rules.Str(s), nil
	}
	if v, ok := sc.Number(); ok {
		return rules.Num(v), nil
	}
	if sym, ok := sc.Ident(); ok {
		return rules.Str(sym), nil
	}
	return rules.Term{}, SyntaxErrf(sc, "expected a term")
}

var wordSyntax = ExprSyntax{And: "and", Or: "or", Not: "not", Term: testTerm}
var punctSyntax = ExprSyntax{And: ",", Or: ";", Not: `\+`, Term: testTerm}

func TestParseExpr_FlattensSameLevelChains(t *testing.T) {
	cond, err := wordSyntax.ParseExpr(NewScanner("a(?x) and b(?x) and c(?x)", 1))
	require.NoError(t, err)
	assert.Equal(t, rules.CombAnd, cond.Comb)
	assert.Len(t, cond.Children, 3)
}

func TestParseExpr_Precedence(t *testing.T) {
	cond, err := wordSyntax.ParseExpr(NewScanner("a(?x) or b(?x) and not c(?x)", 1))
	require.NoError(t, err)
	assert.Equal(t, rules.CombOr, cond.Comb)
	require.Len(t, cond.Children, 2)
	right := cond.Children[1]
	assert.Equal(t, rules.CombAnd, right.Comb)
	assert.Equal(t, rules.CombNot, right.Children[1].Comb)
}

func TestParseExpr_PunctuationOperators(t *testing.T) {
	cond, err := punctSyntax.ParseExpr(NewScanner(`a(?x), (b(?x); \+ c(?x))`, 1))
	require.NoError(t, err)
	assert.Equal(t, rules.CombAnd, cond.Comb)
	require.Len(t, cond.Children, 2)
	assert.Equal(t, rules.CombOr, cond.Children[1].Comb)
}

func TestParseCall_ZeroArity(t *testing.T) {
	functor, args, err := wordSyntax.ParseCall(NewScanner("raining()", 1))
	require.NoError(t, err)
	assert.Equal(t, "raining", functor)
	assert.Empty(t, args)
}

func TestRenderCondition_ParenthesizesNestedCombinators(t *testing.T) {
	syn := CondSyntax{
		And:        " and ",
		Or:         " or ",
		Not:        "not ",
		Var:        func(name string) string { return "?" + name },
		BareSymbol: BareIdentSymbol,
	}
	cond := rules.And(
		rules.Leaf("a", rules.Var("x")),
		rules.Or(rules.Leaf("b", rules.Var("x")), rules.Leaf("c", rules.Var("x"))),
		rules.Not(rules.Leaf("d", rules.Var("x"))),
	)
	out := syn.RenderCondition(cond)
	assert.Equal(t, "a(?x) and (b(?x) or c(?x)) and not d(?x)", out)
}

func TestRenderTerm_ConstantForms(t *testing.T) {
	syn := CondSyntax{Var: func(name string) string { return "?" + name }, BareSymbol: BareIdentSymbol}
	assert.Equal(t, "tavern", syn.RenderTerm(rules.Str("tavern")))
	assert.Equal(t, `"two words"`, syn.RenderTerm(rules.Str("two words")))
	assert.Equal(t, "true", syn.RenderTerm(rules.Bool(true)))
	assert.Equal(t, "0.85", syn.RenderTerm(rules.Num(0.85)))
	assert.Equal(t, "?p.home.owner", syn.RenderTerm(rules.FieldOf(rules.FieldOf(rules.Var("p"), "home"), "owner")))
}

func TestClampRule_WarnsOncePerField(t *testing.T) {
	r := rules.NewRule("eager")
	r.Priority = 99
	r.Likelihood = 2.5
	diags := ClampRule(r)
	require.Len(t, diags, 2)
	assert.Equal(t, 10, r.Priority)
	assert.Equal(t, 1.0, r.Likelihood)
	for _, d := range diags {
		assert.Equal(t, rules.SeverityWarning, d.Severity)
		assert.Equal(t, rules.CodeRange, d.Code)
	}
}

func TestFromString(t *testing.T) {
	d, err := FromString("kismet")
	require.NoError(t, err)
	assert.Equal(t, Kismet, d)

	_, err = FromString("prolog")
	var ude *UnknownDialectError
	require.ErrorAs(t, err, &ude)
	assert.Equal(t, "prolog", ude.Tag)
}
