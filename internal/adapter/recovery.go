package adapter

import (
	"strings"

	"github.com/jackzampolin/optbench/internal/format"
)

// parseJSONLenient is the best-effort JSON recovery path. It never fails
// loudly: (a) strict-parse the normalized text, (b) on failure re-extract a
// tagged or generic fenced block from the original completion and retry,
// (c) on failure return nil. Its only job is to maximize recovery odds when
// the model ignored formatting instructions.
func parseJSONLenient(raw string) map[string]any {
	jsonFmt := format.JSON()

	if m := tryJSONMapping(jsonFmt, Normalize(raw)); m != nil {
		return m
	}

	trimmed := strings.TrimSpace(raw)
	if block, ok := taggedFencedBlock(trimmed, "json"); ok {
		if m := tryJSONMapping(jsonFmt, block); m != nil {
			return m
		}
	}
	if block, ok := firstFencedBlock(trimmed); ok {
		if m := tryJSONMapping(jsonFmt, block); m != nil {
			return m
		}
	}
	return nil
}

func tryJSONMapping(f format.Format, text string) map[string]any {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	doc, err := f.Decode(text)
	if err != nil {
		return nil
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	return m
}
