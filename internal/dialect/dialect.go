// Package dialect defines the four supported surface syntaxes and the
// parsing/rendering contracts each one implements. The implementations live
// in subpackages; pkg/compiler holds the enum-keyed registry that selects
// them, so adding a fifth dialect is an additive change.
package dialect

import (
	"fmt"

	"ruleforge/internal/rules"
)

// Dialect tags one of the supported surface syntaxes.
type Dialect string

const (
	// Insimul expresses rules as predicate-logic blocks with ?-sigil variables.
	Insimul Dialect = "insimul"
	// Ensemble expresses rules as trait/likelihood declarations with $-sigil variables.
	Ensemble Dialect = "ensemble"
	// Kismet expresses rules as Prolog-style clauses; capitalized identifiers
	// are variables, following logic-programming convention.
	Kismet Dialect = "kismet"
	// Tott expresses rules as genealogy-predicate definitions in the
	// Talk-of-the-Town style; bare lowercase arguments are variables.
	Tott Dialect = "tott"
)

// All lists the supported dialects in a stable order.
var All = []Dialect{Insimul, Ensemble, Kismet, Tott}

func (d Dialect) Valid() bool {
	switch d {
	case Insimul, Ensemble, Kismet, Tott:
		return true
	}
	return false
}

func (d Dialect) String() string { return string(d) }

// UnknownDialectError reports caller misuse: an unsupported dialect tag.
// Unlike malformed content, this is a fatal Go error, not a diagnostic.
type UnknownDialectError struct {
	Tag string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("unknown dialect %q (supported: insimul, ensemble, kismet, tott)", e.Tag)
}

// FromString resolves a dialect tag or returns an UnknownDialectError.
func FromString(tag string) (Dialect, error) {
	d := Dialect(tag)
	if !d.Valid() {
		return "", &UnknownDialectError{Tag: tag}
	}
	return d, nil
}

// Parser turns source text in one dialect into canonical rules. Parsing is
// fault-isolated per rule: a malformed block contributes one error diagnostic
// and is skipped, and the remainder of the document still parses. A document
// with zero valid rules yields an empty slice, never an error.
type Parser interface {
	Parse(text string) ([]*rules.Rule, []rules.Diagnostic)
}

// RenderOptions tune rendering without changing logical structure.
type RenderOptions struct {
	// Pretty selects the indented multi-line form; otherwise emitters use
	// their most compact legal layout.
	Pretty bool
	// Bindings substitutes illustrative character names into example comments
	// attached to exported rules.
	Bindings rules.NameContext
}

// Emitter renders canonical rules as source text in one dialect. Every
// emitter satisfies the round-trip contract with its matching Parser:
// Parse(Render(R)) is structurally equal to R. Fields the dialect has no
// native syntax for are carried as embedded annotations the parser reads back.
type Emitter interface {
	Render(rs []*rules.Rule, opts RenderOptions) string
}

// ClampRule forces priority and likelihood into their conventional ranges,
// emitting one range warning per clamped field. Out-of-range input is never a
// parse failure; every parser runs this on each rule it accepts.
func ClampRule(r *rules.Rule) []rules.Diagnostic {
	var out []rules.Diagnostic
	if v, clamped := rules.ClampPriority(r.Priority); clamped {
		out = append(out, rules.Warnf(rules.CodeRange, r.Name, 0,
			"priority %d outside [%d,%d], clamped to %d", r.Priority, rules.MinPriority, rules.MaxPriority, v))
		r.Priority = v
	}
	if v, clamped := rules.ClampLikelihood(r.Likelihood); clamped {
		out = append(out, rules.Warnf(rules.CodeRange, r.Name, 0,
			"likelihood %g outside [%g,%g], clamped to %g", r.Likelihood, rules.MinLikelihood, rules.MaxLikelihood, v))
		r.Likelihood = v
	}
	return out
}
