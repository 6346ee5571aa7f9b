package dialect

import (
	"fmt"

	"ruleforge/internal/rules"
)

// SyntaxError is the recoverable per-block parse failure. Parsers convert it
// into one error diagnostic for the offending rule and keep going.
type SyntaxError struct {
	Msg  string
	Line int
}

func (e *SyntaxError) Error() string { return e.Msg }

// SyntaxErrf builds a SyntaxError at the scanner's current line.
func SyntaxErrf(sc *Scanner, format string, args ...any) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Line: sc.Line()}
}

// ExprSyntax parses condition expressions with dialect-specific combinator
// spellings and a dialect-supplied term parser. Combinators given as
// identifiers are matched on word boundaries; anything else is matched as
// punctuation. Precedence is conventional: not binds tightest, then the
// conjunction, then the disjunction; parentheses group.
type ExprSyntax struct {
	And string
	Or  string
	Not string

	// Term parses one argument according to the dialect's variable-naming
	// convention. The convention stays local to the dialect supplying it.
	Term func(sc *Scanner) (rules.Term, error)
}

func (x ExprSyntax) eatOp(sc *Scanner, op string) bool {
	if op == "" {
		return false
	}
	if IsIdent(op) {
		return sc.EatWord(op)
	}
	return sc.EatPunct(op)
}

// ParseExpr parses a full condition tree. Same-level chains flatten into one
// combinator node: a and b and c is a single three-child conjunction.
func (x ExprSyntax) ParseExpr(sc *Scanner) (*rules.Condition, error) {
	first, err := x.parseAnd(sc)
	if err != nil {
		return nil, err
	}
	children := []*rules.Condition{first}
	for x.eatOp(sc, x.Or) {
		next, err := x.parseAnd(sc)
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return rules.Or(children...), nil
}

func (x ExprSyntax) parseAnd(sc *Scanner) (*rules.Condition, error) {
	first, err := x.parseUnary(sc)
	if err != nil {
		return nil, err
	}
	children := []*rules.Condition{first}
	for x.eatOp(sc, x.And) {
		next, err := x.parseUnary(sc)
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return rules.And(children...), nil
}

func (x ExprSyntax) parseUnary(sc *Scanner) (*rules.Condition, error) {
	if x.eatOp(sc, x.Not) {
		child, err := x.parseUnary(sc)
		if err != nil {
			return nil, err
		}
		return rules.Not(child), nil
	}
	if sc.Eat('(') {
		inner, err := x.ParseExpr(sc)
		if err != nil {
			return nil, err
		}
		if !sc.Eat(')') {
			return nil, SyntaxErrf(sc, "expected ')' closing a condition group")
		}
		return inner, nil
	}
	functor, args, err := x.ParseCall(sc)
	if err != nil {
		return nil, err
	}
	return &rules.Condition{Pred: &rules.Predicate{Functor: functor, Args: args}}, nil
}

// ParseCall parses functor(arg, ...). A zero-argument call still needs its
// parentheses; arity is never checked here.
func (x ExprSyntax) ParseCall(sc *Scanner) (string, []rules.Term, error) {
	functor, ok := sc.Ident()
	if !ok {
		return "", nil, SyntaxErrf(sc, "expected a predicate call")
	}
	args, err := x.ParseArgs(sc, functor)
	if err != nil {
		return "", nil, err
	}
	return functor, args, nil
}

// ParseArgs parses the parenthesized argument list following a functor.
func (x ExprSyntax) ParseArgs(sc *Scanner, functor string) ([]rules.Term, error) {
	if !sc.Eat('(') {
		return nil, SyntaxErrf(sc, "expected '(' after %q", functor)
	}
	var args []rules.Term
	if sc.Eat(')') {
		return args, nil
	}
	for {
		t, err := x.Term(sc)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
		if sc.Eat(')') {
			return args, nil
		}
		if !sc.Eat(',') {
			return nil, SyntaxErrf(sc, "expected ',' or ')' in arguments of %q", functor)
		}
	}
}

// FieldChain extends base with .field accesses while they are present.
func FieldChain(sc *Scanner, base rules.Term) (rules.Term, error) {
	t := base
	for sc.Eat('.') {
		field, ok := sc.Ident()
		if !ok {
			return rules.Term{}, SyntaxErrf(sc, "expected a field name after '.'")
		}
		t = rules.FieldOf(t, field)
	}
	return t, nil
}
