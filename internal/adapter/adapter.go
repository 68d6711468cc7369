// Package adapter turns an untrusted, frequently malformed LLM completion
// into a type-checked mapping of named output fields.
//
// The pipeline is a pure, synchronous function of (signature, completion):
// normalize fencing noise, attempt cheap per-field scalar recovery, run a
// deterministic fallback chain across grammars (with a guard for one known
// grammar-misclassification failure mode), lean on a best-effort JSON
// recovery path, and recursively coerce decoded values into the declared
// schema. It holds no shared mutable state, so concurrent calls need no
// coordination, and it exposes no internal suspension points — callers bound
// latency around the call as a whole.
package adapter

import (
	"fmt"

	"github.com/jackzampolin/optbench/internal/format"
	"github.com/jackzampolin/optbench/internal/signature"
)

// Adapter decodes completions under a configured, ordered list of grammars.
type Adapter struct {
	formats  []format.Format
	recovery bool
}

// New builds an adapter that tries the given grammars in priority order and
// falls back to the JSON recovery path when none yields a usable mapping.
func New(formats ...format.Format) (*Adapter, error) {
	if len(formats) == 0 {
		return nil, fmt.Errorf("adapter requires at least one format")
	}
	return &Adapter{formats: formats, recovery: true}, nil
}

// NewStrict builds a single-grammar adapter with the JSON recovery path
// disabled. Used to measure how a format performs when the model must comply
// with it outright.
func NewStrict(f format.Format) *Adapter {
	return &Adapter{formats: []format.Format{f}}
}

// Primary returns the first-priority grammar.
func (a *Adapter) Primary() format.Format { return a.formats[0] }

// Grammars returns the configured grammar names in priority order.
func (a *Adapter) Grammars() []string {
	names := make([]string, len(a.formats))
	for i, f := range a.formats {
		names[i] = f.Name()
	}
	return names
}

// Parse decodes a completion against the signature. It returns either a
// field map whose key set equals exactly the signature's required fields, or
// a *ParseError — never a partial map.
func (a *Adapter) Parse(sig *signature.Signature, completion string) (map[string]any, error) {
	raw := completion
	norm := Normalize(raw)
	diag := newDiagnostics(raw)
	result := make(map[string]any, sig.Len())

	// Cheap path: per-field scalar extraction from `field: value` lines.
	// The common case when a model emits loosely structured lines rather
	// than one well-formed document.
	primary := a.formats[0]
	for _, f := range sig.Fields() {
		v, ok := extractField(norm, f.Name, primary)
		diag.recordExtraction(f.Name, ok)
		if ok {
			result[f.Name] = Cast(v, f.Spec)
		}
	}
	if missingFields(sig, result) == nil {
		return result, nil
	}

	// Fallback chain: first grammar whose decode yields a mapping root wins.
	// A decoded document is accepted whole or thrown away; decode errors are
	// expected traffic, not error states.
	accepted := false
	for _, f := range a.formats {
		doc, err := f.Decode(norm)
		if err != nil {
			diag.recordAttempt(f.Name(), err, false, false)
			continue
		}
		m, ok := doc.(map[string]any)
		if !ok {
			diag.recordAttempt(f.Name(), nil, false, false)
			continue
		}

		misclassified := f.Name() != format.NameJSON && looksLikeMisclassifiedJSON(m)
		diag.recordAttempt(f.Name(), nil, true, misclassified)
		if misclassified {
			// The dense grammar swallowed JSON text. Force a retry under the
			// JSON grammar against the original, un-normalized completion.
			if jm := parseJSONLenient(raw); jm != nil {
				diag.note("misclassification guard: result re-sourced from %s decode", format.NameJSON)
				m = jm
			}
		}

		m = normalizeKeys(m).(map[string]any)
		populate(sig, result, m)
		accepted = true
		break
	}

	// Recovery path: only when no grammar yielded a usable mapping.
	if !accepted && a.recovery {
		if jm := parseJSONLenient(raw); jm != nil {
			diag.note("json recovery path produced a mapping")
			populate(sig, result, normalizeKeys(jm).(map[string]any))
		}
	}

	missing := missingFields(sig, result)
	if missing == nil {
		return result, nil
	}
	return nil, &ParseError{
		Grammars:    a.Grammars(),
		Missing:     missing,
		Partial:     result,
		RawPreview:  truncate(raw, RawPreviewLimit),
		Diagnostics: diag,
	}
}

// populate copies declared fields from a decoded mapping into the result,
// casting each. Full-document values overwrite scalar-extracted candidates.
func populate(sig *signature.Signature, result map[string]any, m map[string]any) {
	for _, f := range sig.Fields() {
		if v, ok := m[f.Name]; ok {
			result[f.Name] = Cast(v, f.Spec)
		}
	}
}

// missingFields returns the required field names absent from result, in
// declaration order, or nil when the result is complete.
func missingFields(sig *signature.Signature, result map[string]any) []string {
	var missing []string
	for _, name := range sig.Names() {
		if _, ok := result[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
