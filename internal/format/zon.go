package format

import (
	"strconv"
	"strings"
)

// NameZON is the identifier of the ZON (Zero Overhead Notation) grammar:
// top-level fields as `key: value` with no outer braces, `{...}` only for
// nested objects, `[...]` for arrays, #-comments, and unquoted keys and
// strings where unambiguous.
//
// ZON's lexical rules form a superset of JSON's: a braced JSON object strips
// to a field list ZON will happily parse, with the quote characters retained
// inside the keys. That leniency is the root of the grammar-misclassification
// failure mode the decode orchestrator guards against.
const NameZON = "zon"

type zonFormat struct{}

// ZON returns the ZON grammar codec.
func ZON() Format { return zonFormat{} }

func (zonFormat) Name() string { return NameZON }

func (zonFormat) DecodeScalar(text string) (any, error) {
	return decodeScalarToken(text), nil
}

// ---------------------------------------------------------------------------
// Decoding

func (zonFormat) Decode(text string) (any, error) {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = stripLineComment(l)
	}
	text = strings.TrimSpace(strings.Join(lines, "\n"))
	if text == "" {
		return nil, syntaxErr(NameZON, 0, "empty input")
	}

	// ZON has no top-level braces; a fully braced document is treated as a
	// wrapped field list and unwrapped before parsing.
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}

	s := &zonScanner{src: []rune(text), line: 1}
	fields, err := s.parseFields(0)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

type zonScanner struct {
	src  []rune
	pos  int
	line int
}

func (s *zonScanner) eof() bool { return s.pos >= len(s.src) }

func (s *zonScanner) peek() rune {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *zonScanner) next() rune {
	r := s.src[s.pos]
	s.pos++
	if r == '\n' {
		s.line++
	}
	return r
}

// skipSeparators consumes whitespace, newlines, and field-separating commas.
func (s *zonScanner) skipSeparators() {
	for !s.eof() {
		switch s.peek() {
		case ' ', '\t', '\r', '\n', ',':
			s.next()
		default:
			return
		}
	}
}

func (s *zonScanner) skipInlineSpace() {
	for !s.eof() && (s.peek() == ' ' || s.peek() == '\t') {
		s.next()
	}
}

// parseFields parses `key: value` pairs until the end rune (0 for EOF).
func (s *zonScanner) parseFields(end rune) (map[string]any, error) {
	out := make(map[string]any)
	for {
		s.skipSeparators()
		if s.eof() {
			if end != 0 {
				return nil, syntaxErr(NameZON, s.line, "unterminated object")
			}
			break
		}
		if end != 0 && s.peek() == end {
			s.next()
			break
		}

		key, err := s.scanKey()
		if err != nil {
			return nil, err
		}

		value, err := s.parseValue()
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil, syntaxErr(NameZON, s.line, "no fields")
	}
	return out, nil
}

// scanKey reads a field name up to the colon. The raw token is preserved:
// a quote-wrapped key (as produced by feeding JSON text through this decoder)
// keeps its literal quote characters.
func (s *zonScanner) scanKey() (string, error) {
	var b strings.Builder
	if s.peek() == '"' {
		raw, err := s.scanQuoted()
		if err != nil {
			return "", err
		}
		b.WriteString(raw)
	}
	for !s.eof() {
		r := s.peek()
		if r == ':' {
			s.next()
			key := strings.TrimSpace(b.String())
			if key == "" {
				return "", syntaxErr(NameZON, s.line, "empty key")
			}
			if strings.ContainsAny(key, " \t") {
				return "", syntaxErr(NameZON, s.line, "key %q contains whitespace", key)
			}
			return key, nil
		}
		if r == '\n' || r == '{' || r == '[' || r == '}' || r == ']' || r == ',' {
			return "", syntaxErr(NameZON, s.line, "expected ':' after key")
		}
		b.WriteRune(s.next())
	}
	return "", syntaxErr(NameZON, s.line, "expected ':' after key")
}

func (s *zonScanner) parseValue() (any, error) {
	s.skipInlineSpace()
	if s.eof() {
		return "", nil
	}
	switch s.peek() {
	case '{':
		s.next()
		return s.parseFields('}')
	case '[':
		s.next()
		return s.parseArray()
	case '"':
		raw, err := s.scanQuoted()
		if err != nil {
			return nil, err
		}
		return decodeScalarToken(raw), nil
	case '\n':
		return "", nil
	default:
		return s.scanBare(), nil
	}
}

func (s *zonScanner) parseArray() (any, error) {
	out := []any{}
	for {
		s.skipSeparators()
		if s.eof() {
			return nil, syntaxErr(NameZON, s.line, "unterminated array")
		}
		if s.peek() == ']' {
			s.next()
			return out, nil
		}
		elem, err := s.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, elem)
	}
}

// scanBare reads an unquoted scalar token. It stops at any structural
// delimiter; bare strings containing delimiters must be quoted.
func (s *zonScanner) scanBare() any {
	var b strings.Builder
	for !s.eof() {
		r := s.peek()
		if r == ',' || r == '\n' || r == '}' || r == ']' {
			break
		}
		b.WriteRune(s.next())
	}
	return decodeScalarToken(b.String())
}

// scanQuoted returns a quoted string token including its surrounding quotes.
func (s *zonScanner) scanQuoted() (string, error) {
	var b strings.Builder
	b.WriteRune(s.next()) // opening quote
	escaped := false
	for !s.eof() {
		r := s.next()
		b.WriteRune(r)
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			return b.String(), nil
		case r == '\n':
			return "", syntaxErr(NameZON, s.line, "unterminated string")
		}
	}
	return "", syntaxErr(NameZON, s.line, "unterminated string")
}

// ---------------------------------------------------------------------------
// Encoding

func (zonFormat) Encode(v any) (string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return encodeZonValue(v), nil
	}
	lines := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		lines = append(lines, encodeZonKey(k)+": "+encodeZonValue(m[k]))
	}
	return strings.Join(lines, "\n"), nil
}

func encodeZonValue(v any) string {
	switch t := v.(type) {
	case map[string]any:
		pairs := make([]string, 0, len(t))
		for _, k := range sortedKeys(t) {
			pairs = append(pairs, encodeZonKey(k)+": "+encodeZonValue(t[k]))
		}
		return "{" + strings.Join(pairs, ", ") + "}"
	case []any:
		elems := make([]string, 0, len(t))
		for _, e := range t {
			elems = append(elems, encodeZonValue(e))
		}
		return "[" + strings.Join(elems, ", ") + "]"
	default:
		return encodeScalarToken(v)
	}
}

func encodeZonKey(k string) string {
	if k != "" && !strings.ContainsAny(k, " \t,:{}[]#\"\n") {
		return k
	}
	return strconv.Quote(k)
}
