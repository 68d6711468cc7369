// Package format implements the compact textual grammars spoken at the LLM
// boundary: JSON plus two denser alternatives (TOON and ZON).
//
// Each grammar is an independent, swappable codec. Decoders produce an untyped
// document tree (map[string]any / []any / scalars); encoders serialize such
// trees for outbound prompts. The decode pipeline treats decoders as opaque:
// a failed decode means "this grammar doesn't apply", not an error condition.
package format

import "fmt"

// Format is one compact textual grammar.
type Format interface {
	// Name returns the grammar identifier ("json", "toon", "zon").
	Name() string

	// Encode serializes a document tree to grammar text.
	Encode(v any) (string, error)

	// Decode parses grammar text into a document tree. The returned tree is
	// built from map[string]any, []any, string, int64/float64, bool, and nil.
	Decode(text string) (any, error)

	// DecodeScalar applies the grammar's scalar rule to a single captured
	// token. Used by per-field recovery; may still return a container if the
	// token denotes one (callers must check).
	DecodeScalar(text string) (any, error)
}

// SyntaxError reports that text does not conform to a grammar.
type SyntaxError struct {
	Format  string
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Format, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Format, e.Message)
}

func syntaxErr(format string, line int, msg string, args ...any) *SyntaxError {
	return &SyntaxError{Format: format, Line: line, Message: fmt.Sprintf(msg, args...)}
}

// Get returns the format registered under name.
func Get(name string) (Format, error) {
	switch name {
	case NameJSON:
		return JSON(), nil
	case NameTOON:
		return TOON(), nil
	case NameZON:
		return ZON(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", name)
	}
}

// All returns every supported format in default priority order.
func All() []Format {
	return []Format{JSON(), TOON(), ZON()}
}
