package rules

import "fmt"

// Severity ranks a diagnostic. Only errors affect validity; warnings and
// suggestions are advisory.
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// Diagnostic codes. These name the error taxonomy, not Go error types:
// malformed content is always reported through diagnostics, never panics.
const (
	CodeParse          = "parse"           // malformed rule block, isolated per rule
	CodeUnknownDialect = "unknown-dialect" // caller misuse, also a fatal Go error
	CodeReference      = "reference"       // unknown dependency name
	CodeRange          = "range"           // numeric field outside convention, clamped
	CodeCycle          = "cycle"           // dependency cycle
	CodeDuplicate      = "duplicate"       // duplicate rule name
	CodeTag            = "tag"             // empty or duplicate tag entries
	CodeVocab          = "vocab"           // name absent from the external vocabulary
)

// Diagnostic is a structured finding from parsing or validation.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Rule     string   `json:"rule,omitempty"`
	Line     int      `json:"line,omitempty"` // 1-based; 0 means unknown
}

func (d Diagnostic) String() string {
	loc := ""
	if d.Line > 0 {
		loc = fmt.Sprintf(" (line %d)", d.Line)
	}
	if d.Rule != "" {
		return fmt.Sprintf("%s [%s] %s: %s%s", d.Severity, d.Code, d.Rule, d.Message, loc)
	}
	return fmt.Sprintf("%s [%s] %s%s", d.Severity, d.Code, d.Message, loc)
}

func Errf(code, rule string, line int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: code, Rule: rule, Line: line, Message: fmt.Sprintf(format, args...)}
}

func Warnf(code, rule string, line int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: code, Rule: rule, Line: line, Message: fmt.Sprintf(format, args...)}
}

func Suggestf(code, rule string, line int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeveritySuggestion, Code: code, Rule: rule, Line: line, Message: fmt.Sprintf(format, args...)}
}
