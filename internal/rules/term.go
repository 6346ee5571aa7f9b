package rules

// TermKind discriminates the three term shapes.
type TermKind string

const (
	TermVariable TermKind = "variable"
	TermConstant TermKind = "constant"
	TermField    TermKind = "field"
)

// Term is one argument of a predicate call or effect. It is a tagged value:
// exactly one of the variable, constant, or field-access shapes is populated,
// selected by Kind. Variables are stored without any dialect sigil.
type Term struct {
	Kind  TermKind
	Name  string // variable name, when Kind == TermVariable
	Value any    // string, float64, or bool, when Kind == TermConstant
	Base  *Term  // receiver, when Kind == TermField
	Field string // field name, when Kind == TermField
}

func Var(name string) Term {
	return Term{Kind: TermVariable, Name: name}
}

func Str(v string) Term {
	return Term{Kind: TermConstant, Value: v}
}

func Num(v float64) Term {
	return Term{Kind: TermConstant, Value: v}
}

func Bool(v bool) Term {
	return Term{Kind: TermConstant, Value: v}
}

// FieldOf builds a field access like ?lord.title. Chained accesses nest.
func FieldOf(base Term, field string) Term {
	b := base
	return Term{Kind: TermField, Base: &b, Field: field}
}

func (t Term) Equal(o Term) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case TermVariable:
		return t.Name == o.Name
	case TermConstant:
		return t.Value == o.Value
	case TermField:
		if t.Field != o.Field {
			return false
		}
		if t.Base == nil || o.Base == nil {
			return t.Base == o.Base
		}
		return t.Base.Equal(*o.Base)
	}
	return false
}

// RootVariable returns the variable name at the base of a term, if any.
// For ?lord.title it returns "lord"; constants return "".
func (t Term) RootVariable() string {
	switch t.Kind {
	case TermVariable:
		return t.Name
	case TermField:
		if t.Base != nil {
			return t.Base.RootVariable()
		}
	}
	return ""
}
