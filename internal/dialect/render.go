package dialect

import (
	"strings"

	"ruleforge/internal/rules"
)

// CondSyntax captures the lexical choices a dialect makes for condition
// trees: combinator spellings and the variable-naming convention. The
// convention itself stays local to the dialect that supplies the funcs.
type CondSyntax struct {
	And string // infix conjunction, e.g. " and " or ", "
	Or  string // infix disjunction
	Not string // prefix negation, e.g. "not " or "\\+ "

	// Var renders a canonical variable name in the dialect's convention.
	Var func(name string) string
	// BareSymbol reports whether a string constant may be emitted unquoted.
	BareSymbol func(s string) bool
	// Bool renders boolean constants; nil means true/false.
	Bool func(v bool) string
}

// RenderTerm renders one term.
func (syn CondSyntax) RenderTerm(t rules.Term) string {
	switch t.Kind {
	case rules.TermVariable:
		return syn.Var(t.Name)
	case rules.TermField:
		base := ""
		if t.Base != nil {
			base = syn.RenderTerm(*t.Base)
		}
		return base + "." + t.Field
	case rules.TermConstant:
		if s, ok := t.Value.(string); ok && syn.BareSymbol != nil && syn.BareSymbol(s) {
			return s
		}
		if b, ok := t.Value.(bool); ok && syn.Bool != nil {
			return syn.Bool(b)
		}
		return QuoteConstant(t.Value)
	}
	return ""
}

// RenderCall renders functor(arg, arg, ...).
func (syn CondSyntax) RenderCall(functor string, args []rules.Term) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = syn.RenderTerm(a)
	}
	return functor + "(" + strings.Join(parts, ", ") + ")"
}

// RenderCondition renders a condition tree. Combinator children of
// combinators are parenthesized so the matching parser recovers the same
// shape; a degenerate single-child and/or collapses to its child.
func (syn CondSyntax) RenderCondition(c *rules.Condition) string {
	if c == nil {
		return ""
	}
	if c.IsLeaf() {
		return syn.RenderCall(c.Pred.Functor, c.Pred.Args)
	}
	if c.Comb == rules.CombNot {
		child := ""
		if len(c.Children) > 0 {
			child = syn.renderChild(c.Children[0])
		}
		return syn.Not + child
	}
	if len(c.Children) == 1 {
		return syn.RenderCondition(c.Children[0])
	}
	sep := syn.And
	if c.Comb == rules.CombOr {
		sep = syn.Or
	}
	parts := make([]string, len(c.Children))
	for i, child := range c.Children {
		parts[i] = syn.renderChild(child)
	}
	return strings.Join(parts, sep)
}

func (syn CondSyntax) renderChild(c *rules.Condition) string {
	if c.IsLeaf() || c.Comb == rules.CombNot {
		return syn.RenderCondition(c)
	}
	return "(" + syn.RenderCondition(c) + ")"
}

// ExampleCall renders an effect call with bound character names substituted
// for its variables: the illustrative text emitters attach as a comment.
// Unbound variables keep their dialect spelling. The result is commentary
// only and never parsed back.
func (syn CondSyntax) ExampleCall(e rules.Effect, bindings rules.NameContext) string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = syn.exampleTerm(a, bindings)
	}
	return e.Action + "(" + strings.Join(parts, ", ") + ")"
}

func (syn CondSyntax) exampleTerm(t rules.Term, bindings rules.NameContext) string {
	switch t.Kind {
	case rules.TermVariable:
		if name, ok := bindings.Lookup(t.Name); ok {
			return name
		}
	case rules.TermField:
		if t.Base != nil {
			return syn.exampleTerm(*t.Base, bindings) + "." + t.Field
		}
	}
	return syn.RenderTerm(t)
}

// BareIdentSymbol is the shared bare-symbol rule for sigil dialects: any
// identifier except the boolean literals may appear unquoted.
func BareIdentSymbol(s string) bool {
	return IsIdent(s) && s != "true" && s != "false"
}
