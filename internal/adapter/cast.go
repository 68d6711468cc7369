package adapter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackzampolin/optbench/internal/signature"
)

// Cast coerces an untyped decoded value into its declared FieldSpec shape.
//
// Cast is pure and never fails: when a conversion does not apply, the
// original value is returned unchanged. This is deliberate leniency, not
// strict validation — completeness checking happens elsewhere, and keeping
// the raw value beats dropping a field the model did produce.
//
// Known limitation, preserved deliberately: optional and union specs cast
// into the first non-absent variant only; when that inner cast does not
// apply, later variants are never tried.
func Cast(v any, spec *signature.FieldSpec) any {
	switch spec.Kind {
	case signature.KindString:
		return castString(v)
	case signature.KindInt:
		return castInt(v)
	case signature.KindFloat:
		return castFloat(v)
	case signature.KindBool:
		return castBool(v)
	case signature.KindOptional:
		if v == nil {
			return nil
		}
		return Cast(v, spec.Inner)
	case signature.KindUnion:
		if len(spec.Variants) == 0 {
			return v
		}
		return Cast(v, spec.Variants[0])
	case signature.KindSequence:
		return castSequence(v, spec.Inner)
	case signature.KindRecord:
		return castRecord(v, spec.Record)
	default:
		return v
	}
}

func castString(v any) any {
	switch v.(type) {
	case string:
		return v
	case nil:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func castInt(v any) any {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		// Decoded JSON numbers arrive as float64; truncate like a numeric cast.
		return int64(t)
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return i
		}
		return v
	default:
		return v
	}
}

func castFloat(v any) any {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
		return v
	default:
		return v
	}
}

func castBool(v any) any {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
		return v
	default:
		return v
	}
}

// castSequence casts each element independently. Output length always equals
// input length: an element that fails nested validation is kept as its raw
// value rather than dropped.
func castSequence(v any, elem *signature.FieldSpec) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]any, len(list))
	for i, item := range list {
		out[i] = Cast(item, elem)
	}
	return out
}

// castRecord validates a mapping against the nested record signature.
// Validation requires every non-optional field to be present; on failure the
// raw mapping is kept as the value. On success the record is rebuilt from the
// declared fields, each cast recursively.
func castRecord(v any, rec *signature.Signature) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for _, f := range rec.Fields() {
		if _, present := m[f.Name]; !present && f.Spec.Kind != signature.KindOptional {
			return m
		}
	}
	out := make(map[string]any, rec.Len())
	for _, f := range rec.Fields() {
		val, present := m[f.Name]
		if !present {
			continue
		}
		out[f.Name] = Cast(val, f.Spec)
	}
	return out
}
