package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// Scanner provides convention-free lexical primitives over a source fragment.
// Each dialect parser layers its own variable-naming and delimiter rules on
// top; nothing here assumes a sigil or capitalization convention.
type Scanner struct {
	src  string
	pos  int
	line int
}

// NewScanner starts scanning src, numbering its first line startLine.
func NewScanner(src string, startLine int) *Scanner {
	if startLine < 1 {
		startLine = 1
	}
	return &Scanner{src: src, line: startLine}
}

func (s *Scanner) Line() int { return s.line }

func (s *Scanner) EOF() bool {
	return s.pos >= len(s.src)
}

// SkipSpace consumes whitespace, including newlines.
func (s *Scanner) SkipSpace() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\n' {
			s.line++
		} else if c != ' ' && c != '\t' && c != '\r' {
			return
		}
		s.pos++
	}
}

// Peek returns the next byte without consuming it, or 0 at EOF.
func (s *Scanner) Peek() byte {
	if s.EOF() {
		return 0
	}
	return s.src[s.pos]
}

// Eat consumes ch if it is next (after whitespace).
func (s *Scanner) Eat(ch byte) bool {
	s.SkipSpace()
	if s.Peek() == ch {
		s.pos++
		return true
	}
	return false
}

// EatPunct consumes tok if it is next (after whitespace), with no boundary
// check. Used for punctuation operators.
func (s *Scanner) EatPunct(tok string) bool {
	s.SkipSpace()
	if !strings.HasPrefix(s.src[s.pos:], tok) {
		return false
	}
	s.pos += len(tok)
	return true
}

// EatWord consumes word if it is next and ends on an identifier boundary.
func (s *Scanner) EatWord(word string) bool {
	s.SkipSpace()
	if !strings.HasPrefix(s.src[s.pos:], word) {
		return false
	}
	end := s.pos + len(word)
	if end < len(s.src) && isIdentByte(s.src[end]) {
		return false
	}
	s.pos = end
	return true
}

// EatKeyword consumes word only when an identifier follows, so a keyword
// prefix stays distinguishable from a call to a functor spelled the same way:
// `emit foo(x)` starts with the keyword, `emit(x)` is a plain call.
func (s *Scanner) EatKeyword(word string) bool {
	save := *s
	if !s.EatWord(word) {
		return false
	}
	s.SkipSpace()
	if s.EOF() || !isIdentStart(s.src[s.pos]) {
		*s = save
		return false
	}
	return true
}

// Ident consumes an identifier: [A-Za-z_][A-Za-z0-9_]*.
func (s *Scanner) Ident() (string, bool) {
	s.SkipSpace()
	start := s.pos
	if s.EOF() || !isIdentStart(s.src[s.pos]) {
		return "", false
	}
	for s.pos < len(s.src) && isIdentByte(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos], true
}

// Number consumes a decimal literal with optional sign and fraction.
func (s *Scanner) Number() (float64, bool) {
	s.SkipSpace()
	start := s.pos
	i := s.pos
	if i < len(s.src) && (s.src[i] == '-' || s.src[i] == '+') {
		i++
	}
	digits := 0
	for i < len(s.src) && s.src[i] >= '0' && s.src[i] <= '9' {
		i++
		digits++
	}
	if i < len(s.src) && s.src[i] == '.' && i+1 < len(s.src) && s.src[i+1] >= '0' && s.src[i+1] <= '9' {
		i++
		for i < len(s.src) && s.src[i] >= '0' && s.src[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s.src[start:i], 64)
	if err != nil {
		return 0, false
	}
	s.pos = i
	return v, true
}

// Quoted consumes a double-quoted string literal. The standard escapes
// \n, \t, \r, \\ and \" decode to their values, matching what QuoteConstant
// emits; any other escaped byte is taken literally.
func (s *Scanner) Quoted() (string, bool) {
	s.SkipSpace()
	if s.Peek() != '"' {
		return "", false
	}
	var b strings.Builder
	i := s.pos + 1
	for i < len(s.src) {
		c := s.src[i]
		switch c {
		case '\\':
			if i+1 < len(s.src) {
				switch e := s.src[i+1]; e {
				case 'n':
					b.WriteByte('\n')
				case 't':
					b.WriteByte('\t')
				case 'r':
					b.WriteByte('\r')
				default:
					b.WriteByte(e)
				}
				i += 2
				continue
			}
			return "", false
		case '"':
			s.pos = i + 1
			return b.String(), true
		case '\n':
			return "", false
		}
		b.WriteByte(c)
		i++
	}
	return "", false
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// DashedIdent reads an identifier that may contain interior dashes, such as
// the open-enumeration rule type "default-trait" or a dashed tag.
func DashedIdent(s *Scanner) (string, bool) {
	tok, ok := s.Ident()
	if !ok {
		return "", false
	}
	for s.Eat('-') {
		next, ok := s.Ident()
		if !ok {
			return "", false
		}
		tok += "-" + next
	}
	return tok, true
}

// IsIdent reports whether s is a well-formed bare identifier.
func IsIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

// StripLineComments blanks out everything from marker to end of line,
// preserving newlines so line numbers stay stable. Markers inside
// double-quoted literals are left alone.
func StripLineComments(src, marker string) string {
	out := []byte(src)
	inString := false
	for i := 0; i < len(out); i++ {
		c := out[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' || c == '\n' {
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			continue
		}
		if strings.HasPrefix(string(out[i:]), marker) {
			for i < len(out) && out[i] != '\n' {
				out[i] = ' '
				i++
			}
		}
	}
	return string(out)
}

// QuoteConstant renders a constant value for dialects that share the
// double-quoted string / bare number / bare boolean lexical family.
func QuoteConstant(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case float64:
		return FormatNumber(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(x)
	default:
		return strconv.Quote(fmt.Sprint(x))
	}
}

// FormatNumber renders a float without a spurious fraction for whole values.
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
