package signature

import (
	"encoding/json"
	"fmt"
)

// JSONSchema renders the signature as a provider response_format payload:
// {"name": ..., "strict": true, "schema": {...}}. The inner document is a
// standard JSON Schema object with all fields required and no additional
// properties, matching what OpenAI-compatible providers expect.
func (s *Signature) JSONSchema(name string) (json.RawMessage, error) {
	wrapper := map[string]any{
		"name":   name,
		"strict": true,
		"schema": s.schemaObject(),
	}
	raw, err := json.Marshal(wrapper)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize signature schema: %w", err)
	}
	return raw, nil
}

func (s *Signature) schemaObject() map[string]any {
	props := make(map[string]any, len(s.fields))
	required := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		props[f.Name] = f.Spec.schemaNode()
		required = append(required, f.Name)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func (spec *FieldSpec) schemaNode() map[string]any {
	var node map[string]any
	switch spec.Kind {
	case KindString:
		node = map[string]any{"type": "string"}
	case KindInt:
		node = map[string]any{"type": "integer"}
	case KindFloat:
		node = map[string]any{"type": "number"}
	case KindBool:
		node = map[string]any{"type": "boolean"}
	case KindOptional:
		inner := spec.Inner.schemaNode()
		node = map[string]any{"anyOf": []any{inner, map[string]any{"type": "null"}}}
	case KindUnion:
		variants := make([]any, 0, len(spec.Variants))
		for _, v := range spec.Variants {
			variants = append(variants, v.schemaNode())
		}
		node = map[string]any{"anyOf": variants}
	case KindSequence:
		node = map[string]any{"type": "array", "items": spec.Inner.schemaNode()}
	case KindRecord:
		node = spec.Record.schemaObject()
	default:
		node = map[string]any{}
	}
	if spec.Description != "" {
		node["description"] = spec.Description
	}
	return node
}
