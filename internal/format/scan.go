package format

import (
	"fmt"
	"strconv"
	"strings"
)

// decodeScalarToken converts a bare token into its scalar value using the
// lexical rules shared by the dense grammars: quoted strings are unquoted,
// the literals true/false/null map to bool/nil, numeric tokens become
// int64/float64, and everything else stays a string.
func decodeScalarToken(tok string) any {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return ""
	}
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		if s, err := strconv.Unquote(tok); err == nil {
			return s
		}
		// Unbalanced escapes: keep the inner text rather than failing.
		return tok[1 : len(tok)-1]
	}
	switch tok {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f
	}
	return tok
}

// encodeScalarToken renders a scalar with minimal quoting. Strings are quoted
// only when leaving them bare would be ambiguous under the dense grammars.
func encodeScalarToken(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		if bareStringSafe(t) {
			return t
		}
		return strconv.Quote(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return strconv.Quote(fmt.Sprintf("%v", t))
	}
}

// bareStringSafe reports whether a string can be emitted without quotes.
func bareStringSafe(s string) bool {
	if s == "" {
		return false
	}
	if s != strings.TrimSpace(s) {
		return false
	}
	switch s {
	case "true", "false", "null":
		return false
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return false
	}
	return !strings.ContainsAny(s, ",:{}[]#\"\n")
}

// splitTop splits s on sep at bracket depth zero, respecting quoted strings.
func splitTop(s string, sep rune) []string {
	var (
		parts    []string
		depth    int
		inQuote  bool
		escaped  bool
		start    int
		asBytes  = []rune(s)
		appendAt = func(end int) {
			parts = append(parts, string(asBytes[start:end]))
		}
	)
	for i, r := range asBytes {
		if inQuote {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inQuote = false
			}
			continue
		}
		switch r {
		case '"':
			inQuote = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case sep:
			if depth == 0 {
				appendAt(i)
				start = i + 1
			}
		}
	}
	appendAt(len(asBytes))
	return parts
}

// indexTop returns the index of the first occurrence of c at bracket depth
// zero outside quotes, or -1.
func indexTop(s string, c rune) int {
	var (
		depth   int
		inQuote bool
		escaped bool
	)
	for i, r := range s {
		if inQuote {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inQuote = false
			}
			continue
		}
		switch r {
		case '"':
			inQuote = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case c:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// stripLineComment removes a trailing #-comment outside quoted strings.
func stripLineComment(s string) string {
	var (
		inQuote bool
		escaped bool
	)
	for i, r := range s {
		if inQuote {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inQuote = false
			}
			continue
		}
		switch r {
		case '"':
			inQuote = true
		case '#':
			return s[:i]
		}
	}
	return s
}
