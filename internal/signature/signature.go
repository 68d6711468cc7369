// Package signature declares the output schema an LLM response must satisfy.
//
// A Signature is an ordered set of named fields, each described by a FieldSpec.
// FieldSpec is a closed tagged union built explicitly by the caller; the decode
// pipeline consumes it with a recursive visitor and never reflects over caller
// types at decode time.
package signature

import "fmt"

// Kind identifies which variant of the FieldSpec union a spec is.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindOptional
	KindUnion
	KindSequence
	KindRecord
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindOptional:
		return "optional"
	case KindUnion:
		return "union"
	case KindSequence:
		return "sequence"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// FieldSpec describes the declared type of one output field.
//
// Exactly one of Inner, Variants, or Record is populated, depending on Kind.
// Description is human-readable prompt material and has no effect on decoding.
type FieldSpec struct {
	Kind        Kind
	Description string

	Inner    *FieldSpec   // optional, sequence
	Variants []*FieldSpec // union, in declared order
	Record   *Signature   // record
}

// String returns a string FieldSpec.
func String() *FieldSpec { return &FieldSpec{Kind: KindString} }

// Int returns an int FieldSpec.
func Int() *FieldSpec { return &FieldSpec{Kind: KindInt} }

// Float returns a float FieldSpec.
func Float() *FieldSpec { return &FieldSpec{Kind: KindFloat} }

// Bool returns a bool FieldSpec.
func Bool() *FieldSpec { return &FieldSpec{Kind: KindBool} }

// Optional wraps a spec, permitting an absent value.
func Optional(inner *FieldSpec) *FieldSpec {
	return &FieldSpec{Kind: KindOptional, Inner: inner}
}

// Union declares an ordered set of alternative specs.
func Union(variants ...*FieldSpec) *FieldSpec {
	return &FieldSpec{Kind: KindUnion, Variants: variants}
}

// Sequence declares a homogeneous list of elements.
func Sequence(elem *FieldSpec) *FieldSpec {
	return &FieldSpec{Kind: KindSequence, Inner: elem}
}

// Record declares a nested object with its own signature.
func Record(sig *Signature) *FieldSpec {
	return &FieldSpec{Kind: KindRecord, Record: sig}
}

// Describe attaches a human-readable description and returns the spec.
func (s *FieldSpec) Describe(desc string) *FieldSpec {
	s.Description = desc
	return s
}

// TypeString renders the spec as a short schema type string for prompts.
func (s *FieldSpec) TypeString() string {
	switch s.Kind {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindOptional:
		return s.Inner.TypeString() + " | null"
	case KindUnion:
		out := ""
		for i, v := range s.Variants {
			if i > 0 {
				out += " | "
			}
			out += v.TypeString()
		}
		return out
	case KindSequence:
		return "list[" + s.Inner.TypeString() + "]"
	case KindRecord:
		return s.Record.typeString()
	default:
		return "any"
	}
}

// Field pairs a name with its spec.
type Field struct {
	Name string
	Spec *FieldSpec
}

// Signature is an ordered mapping of field name to FieldSpec. It is immutable
// once built and safe to share across concurrent decode calls.
type Signature struct {
	fields []Field
	index  map[string]int
}

// New builds a signature from fields in declaration order.
// Field names must be unique.
func New(fields ...Field) (*Signature, error) {
	sig := &Signature{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("signature field with empty name")
		}
		if f.Spec == nil {
			return nil, fmt.Errorf("signature field %q has nil spec", f.Name)
		}
		if _, dup := sig.index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate signature field %q", f.Name)
		}
		sig.index[f.Name] = len(sig.fields)
		sig.fields = append(sig.fields, f)
	}
	return sig, nil
}

// MustNew is New that panics on invalid input. For static declarations.
func MustNew(fields ...Field) *Signature {
	sig, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return sig
}

// Fields returns the fields in declaration order.
func (s *Signature) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the field names in declaration order.
func (s *Signature) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Get returns the spec for a field name.
func (s *Signature) Get(name string) (*FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i].Spec, true
}

// Len returns the number of declared fields.
func (s *Signature) Len() int {
	return len(s.fields)
}

func (s *Signature) typeString() string {
	out := "{"
	for i, f := range s.fields {
		if i > 0 {
			out += ", "
		}
		out += f.Name + ": " + f.Spec.TypeString()
	}
	return out + "}"
}
