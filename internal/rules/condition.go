package rules

// Predicate is a call to a named relation with ordered term arguments.
// Arity is never checked at parse time; unknown functors are legal and only
// surface as suggestions during validation.
type Predicate struct {
	Functor string
	Args    []Term
}

func (p *Predicate) Equal(o *Predicate) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.Functor != o.Functor || len(p.Args) != len(o.Args) {
		return false
	}
	for i := range p.Args {
		if !p.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Combinator joins child conditions in a condition tree.
type Combinator string

const (
	CombAnd Combinator = "and"
	CombOr  Combinator = "or"
	CombNot Combinator = "not"
)

// Condition is either a leaf predicate call (Pred set, Children nil) or a
// combinator node (Comb set, Children non-empty). Not takes exactly one child.
type Condition struct {
	Pred     *Predicate
	Comb     Combinator
	Children []*Condition
}

func Leaf(functor string, args ...Term) *Condition {
	return &Condition{Pred: &Predicate{Functor: functor, Args: args}}
}

func And(children ...*Condition) *Condition {
	return &Condition{Comb: CombAnd, Children: children}
}

func Or(children ...*Condition) *Condition {
	return &Condition{Comb: CombOr, Children: children}
}

func Not(child *Condition) *Condition {
	return &Condition{Comb: CombNot, Children: []*Condition{child}}
}

func (c *Condition) IsLeaf() bool {
	return c != nil && c.Pred != nil
}

func (c *Condition) Equal(o *Condition) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.IsLeaf() != o.IsLeaf() {
		return false
	}
	if c.IsLeaf() {
		return c.Pred.Equal(o.Pred)
	}
	if c.Comb != o.Comb || len(c.Children) != len(o.Children) {
		return false
	}
	for i := range c.Children {
		if !c.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Leaves returns every predicate call in the tree, left to right.
func (c *Condition) Leaves() []*Predicate {
	if c == nil {
		return nil
	}
	if c.IsLeaf() {
		return []*Predicate{c.Pred}
	}
	var out []*Predicate
	for _, child := range c.Children {
		out = append(out, child.Leaves()...)
	}
	return out
}
