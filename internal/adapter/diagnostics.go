package adapter

import "fmt"

// RawPreviewLimit bounds the completion excerpt carried in diagnostics and
// ParseError values.
const RawPreviewLimit = 500

// Attempt records the outcome of one grammar decode attempt.
type Attempt struct {
	Grammar       string `json:"grammar"`
	Err           string `json:"error,omitempty"`
	RootIsMapping bool   `json:"root_is_mapping"`
	Misclassified bool   `json:"misclassified,omitempty"`
}

// Diagnostics is the explicit accumulator threaded through one decode call.
// It replaces ambient debug logging: the pipeline is pure, so everything a
// developer would want from a log line is collected here and attached to the
// ParseError on failure.
type Diagnostics struct {
	Preview         string          `json:"completion_preview"`
	ScalarExtracted map[string]bool `json:"scalar_extracted"`
	Attempts        []Attempt       `json:"attempts,omitempty"`
	Notes           []string        `json:"notes,omitempty"`
}

func newDiagnostics(raw string) *Diagnostics {
	return &Diagnostics{
		Preview:         truncate(raw, RawPreviewLimit),
		ScalarExtracted: make(map[string]bool),
	}
}

func (d *Diagnostics) recordExtraction(field string, ok bool) {
	d.ScalarExtracted[field] = ok
}

func (d *Diagnostics) recordAttempt(grammar string, err error, rootIsMapping, misclassified bool) {
	a := Attempt{Grammar: grammar, RootIsMapping: rootIsMapping, Misclassified: misclassified}
	if err != nil {
		a.Err = err.Error()
	}
	d.Attempts = append(d.Attempts, a)
}

func (d *Diagnostics) note(format string, args ...any) {
	d.Notes = append(d.Notes, fmt.Sprintf(format, args...))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
