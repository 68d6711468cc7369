package adapter

import (
	"regexp"
	"strings"
	"sync"

	"github.com/jackzampolin/optbench/internal/format"
)

var (
	fieldPatternMu    sync.Mutex
	fieldPatternCache = make(map[string]*regexp.Regexp)
)

func fieldLinePattern(name string) *regexp.Regexp {
	fieldPatternMu.Lock()
	defer fieldPatternMu.Unlock()
	if re, ok := fieldPatternCache[name]; ok {
		return re
	}
	re := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(name) + `[ \t]*:[ \t]*(.+)$`)
	fieldPatternCache[name] = re
	return re
}

// extractField attempts cheap line-based recovery of one scalar field from
// the normalized completion: the first line of the form `name:<rest>`.
//
// Structural values (rest starting with a brace or bracket) are rejected so
// they go through full-document decoding instead. The captured substring is
// decoded under the grammar's scalar rule and accepted only if it is a true
// scalar; otherwise the raw substring itself is the candidate value.
func extractField(text, name string, f format.Format) (any, bool) {
	m := fieldLinePattern(name).FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	raw := strings.TrimSpace(m[1])
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		return nil, false
	}
	if v, err := f.DecodeScalar(raw); err == nil && isScalar(v) {
		return v, true
	}
	return raw, true
}

func isScalar(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return false
	}
	return true
}
