package signature

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_RejectsDuplicateFields(t *testing.T) {
	_, err := New(
		Field{Name: "answer", Spec: String()},
		Field{Name: "answer", Spec: Int()},
	)
	if err == nil {
		t.Fatal("New() with duplicate field names expected error, got nil")
	}
}

func TestSignature_PreservesDeclarationOrder(t *testing.T) {
	sig := MustNew(
		Field{Name: "reasoning", Spec: String()},
		Field{Name: "response", Spec: Record(MustNew(
			Field{Name: "answer", Spec: String()},
		))},
	)

	names := sig.Names()
	if len(names) != 2 || names[0] != "reasoning" || names[1] != "response" {
		t.Fatalf("Names() = %v, want [reasoning response]", names)
	}
}

func TestFieldSpec_TypeString(t *testing.T) {
	tests := []struct {
		spec *FieldSpec
		want string
	}{
		{String(), "string"},
		{Optional(Int()), "int | null"},
		{Union(String(), Float()), "string | float"},
		{Sequence(Bool()), "list[boolean]"},
		{Record(MustNew(Field{Name: "x", Spec: Int()})), "{x: int}"},
	}
	for _, tt := range tests {
		if got := tt.spec.TypeString(); got != tt.want {
			t.Errorf("TypeString() = %q, want %q", got, tt.want)
		}
	}
}

func TestJSONSchema_WrapsStrictSchema(t *testing.T) {
	sig := MustNew(
		Field{Name: "answer", Spec: String().Describe("natural language answer")},
		Field{Name: "count", Spec: Int()},
	)

	raw, err := sig.JSONSchema("rag_response")
	if err != nil {
		t.Fatalf("JSONSchema() error = %v", err)
	}

	var wrapper map[string]any
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		t.Fatalf("failed to unmarshal schema: %v", err)
	}
	if wrapper["name"] != "rag_response" {
		t.Fatalf("schema name = %v, want rag_response", wrapper["name"])
	}
	if strict, _ := wrapper["strict"].(bool); !strict {
		t.Fatal("schema should be strict")
	}

	text := string(raw)
	if !strings.Contains(text, `"additionalProperties":false`) {
		t.Fatalf("schema should forbid additional properties: %s", text)
	}
	if !strings.Contains(text, `"natural language answer"`) {
		t.Fatalf("schema should carry field descriptions: %s", text)
	}
}

func TestJSONSchema_NestedRecordsAndSequences(t *testing.T) {
	rec := MustNew(
		Field{Name: "product_id", Spec: String()},
		Field{Name: "confidence", Spec: Float()},
	)
	sig := MustNew(
		Field{Name: "recommendations", Spec: Sequence(Record(rec))},
		Field{Name: "note", Spec: Optional(String())},
	)

	raw, err := sig.JSONSchema("nested")
	if err != nil {
		t.Fatalf("JSONSchema() error = %v", err)
	}
	text := string(raw)
	if !strings.Contains(text, `"type":"array"`) {
		t.Fatalf("sequence should render as array: %s", text)
	}
	if !strings.Contains(text, `"anyOf"`) {
		t.Fatalf("optional should render as anyOf with null: %s", text)
	}
}
