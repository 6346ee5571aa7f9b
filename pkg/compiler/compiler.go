// Package compiler is the unified rule compiler: it parses any supported
// dialect into the canonical rule model, validates it, and re-emits it as any
// dialect. All operations are synchronous, pure, and CPU-bound; independent
// documents may be compiled in parallel without coordination.
package compiler

import (
	"github.com/rs/zerolog/log"

	"ruleforge/internal/dialect"
	"ruleforge/internal/dialect/ensemble"
	"ruleforge/internal/dialect/insimul"
	"ruleforge/internal/dialect/kismet"
	"ruleforge/internal/dialect/tott"
	"ruleforge/internal/rules"
	"ruleforge/internal/validator"
)

// The enum-keyed registries below are the only place dialects are selected;
// a fifth dialect is one parser, one emitter, and two entries here.
var parsers = map[dialect.Dialect]dialect.Parser{
	dialect.Insimul:  insimul.NewParser(),
	dialect.Ensemble: ensemble.NewParser(),
	dialect.Kismet:   kismet.NewParser(),
	dialect.Tott:     tott.NewParser(),
}

var emitters = map[dialect.Dialect]dialect.Emitter{
	dialect.Insimul:  insimul.NewEmitter(),
	dialect.Ensemble: ensemble.NewEmitter(),
	dialect.Kismet:   kismet.NewEmitter(),
	dialect.Tott:     tott.NewEmitter(),
}

// CompileResult pairs parsed rules with parse diagnostics. Zero rules with
// diagnostics is a legitimate, inspectable outcome, not a failure.
type CompileResult struct {
	Rules       []*rules.Rule
	Diagnostics []rules.Diagnostic
}

// Compile parses content in the given dialect. The only error is an unknown
// dialect tag; malformed content surfaces as diagnostics.
func Compile(content string, d dialect.Dialect) (*CompileResult, error) {
	p, ok := parsers[d]
	if !ok {
		return nil, &dialect.UnknownDialectError{Tag: string(d)}
	}
	rs, diags := p.Parse(content)
	return &CompileResult{Rules: rs, Diagnostics: diags}, nil
}

// ExportOptions tune rendering; neither field alters logical structure.
type ExportOptions struct {
	PrettyPrint bool
	Bindings    rules.NameContext
}

// Export renders canonical rules as source text in the given dialect.
func Export(rs []*rules.Rule, d dialect.Dialect, opts ExportOptions) (string, error) {
	e, ok := emitters[d]
	if !ok {
		return "", &dialect.UnknownDialectError{Tag: string(d)}
	}
	return e.Render(rs, dialect.RenderOptions{Pretty: opts.PrettyPrint, Bindings: opts.Bindings}), nil
}

// Validate compiles content and runs the validator over the result. Parse
// diagnostics fold into the report: parse errors join the error list, so a
// document that does not parse is not valid.
func Validate(content string, d dialect.Dialect, opts validator.Options) (*validator.Report, error) {
	res, err := Compile(content, d)
	if err != nil {
		return nil, err
	}
	rep := validator.Validate(res.Rules, opts)
	for _, diag := range res.Diagnostics {
		switch diag.Severity {
		case rules.SeverityError:
			rep.Errors = append(rep.Errors, diag)
		case rules.SeverityWarning:
			rep.Warnings = append(rep.Warnings, diag)
		default:
			rep.Suggestions = append(rep.Suggestions, diag)
		}
	}
	rep.IsValid = len(rep.Errors) == 0
	return &rep, nil
}

// SwitchResult is the outcome of a dialect switch. When the switch fails
// closed, Content and Dialect echo the input and Warning explains why.
type SwitchResult struct {
	Content string
	Dialect dialect.Dialect
	Warning *rules.Diagnostic
}

// SwitchDialect converts a document from one dialect to another. If nothing
// parses under the source dialect the operation fails closed: the original
// text and dialect come back unchanged with a warning, so a mis-declared
// source can never silently destroy content. Conversion happens only through
// this explicit call; nothing re-triggers it reactively on edits.
func SwitchDialect(content string, from, to dialect.Dialect) (*SwitchResult, error) {
	if _, ok := parsers[from]; !ok {
		return nil, &dialect.UnknownDialectError{Tag: string(from)}
	}
	if _, ok := emitters[to]; !ok {
		return nil, &dialect.UnknownDialectError{Tag: string(to)}
	}

	res, err := Compile(content, from)
	if err != nil {
		return nil, err
	}
	if len(res.Rules) == 0 {
		log.Warn().Str("from", string(from)).Str("to", string(to)).
			Msg("dialect switch failed closed: no rules parsed")
		warning := rules.Warnf(rules.CodeParse, "", 0,
			"conversion from %s to %s left unapplied: no rules parsed under %s; document unchanged",
			from, to, from)
		return &SwitchResult{Content: content, Dialect: from, Warning: &warning}, nil
	}

	for _, r := range res.Rules {
		r.SourceDialect = string(to)
	}
	text, err := Export(res.Rules, to, ExportOptions{PrettyPrint: true})
	if err != nil {
		return nil, err
	}
	return &SwitchResult{Content: text, Dialect: to}, nil
}

// Dialects lists the supported dialect tags in a stable order.
func Dialects() []dialect.Dialect {
	return append([]dialect.Dialect(nil), dialect.All...)
}
