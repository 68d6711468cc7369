package adapter

import (
	"fmt"
	"strings"
)

// ParseError is the single caller-visible failure of the decode pipeline.
// It is emitted only when required fields remain missing after scalar
// extraction, fallback decoding, and recovery have all been exhausted.
//
// Callers should treat it as a signal to regenerate the completion: it almost
// always means the producer emitted malformed or incomplete structured text,
// not that the pipeline is defective.
type ParseError struct {
	// Grammars lists the grammar names attempted, in priority order.
	Grammars []string
	// Missing lists the required field names that were never populated.
	Missing []string
	// Partial holds whatever field values were assembled before failing.
	Partial map[string]any
	// RawPreview is the first RawPreviewLimit bytes of the raw completion.
	RawPreview string
	// Diagnostics carries the per-attempt decode record for this call.
	Diagnostics *Diagnostics
}

func (e *ParseError) Error() string {
	return fmt.Sprintf(
		"incomplete structured output: missing fields [%s] after trying grammars [%s]",
		strings.Join(e.Missing, ", "),
		strings.Join(e.Grammars, ", "),
	)
}
