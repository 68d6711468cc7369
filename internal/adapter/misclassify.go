package adapter

import "strings"

// jsonShapeFields are field names known to co-occur only in the JSON-shaped
// RAG response of this domain. Their joint presence under quote-wrapped keys
// marks a dense-grammar decode of what was actually JSON text.
//
// This heuristic is a guard against one observed failure mode, narrow and
// schema-specific by construction. It is not a general disambiguation
// algorithm; do not widen it without evidence.
var jsonShapeFields = [...]string{"answer", "recommendations"}

// looksLikeMisclassifiedJSON reports whether a dense-grammar decode is a
// false positive: every top-level key wrapped in literal quote characters and
// the known JSON-shape field names present among them.
func looksLikeMisclassifiedJSON(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	bare := make(map[string]struct{}, len(m))
	for k := range m {
		if len(k) < 2 || k[0] != '"' || k[len(k)-1] != '"' {
			return false
		}
		bare[strings.Trim(k, `"`)] = struct{}{}
	}
	for _, f := range jsonShapeFields {
		if _, ok := bare[f]; !ok {
			return false
		}
	}
	return true
}

// normalizeKeys strips quote wrapping from mapping keys recursively. The ZON
// decoder preserves literal quotes when it swallows JSON text; field lookup
// needs the bare names.
func normalizeKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[strings.Trim(k, `"`)] = normalizeKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeKeys(item)
		}
		return out
	default:
		return v
	}
}
