package format

import (
	"reflect"
	"testing"
)

func TestZONDecode_TopLevelFields(t *testing.T) {
	text := "reasoning: \"looked at all products\"\nresponse: {answer: fine, total: 3}\n"
	doc, err := ZON().Decode(text)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	m := doc.(map[string]any)
	if m["reasoning"] != "looked at all products" {
		t.Errorf("reasoning = %#v", m["reasoning"])
	}
	resp, ok := m["response"].(map[string]any)
	if !ok {
		t.Fatalf("response = %#v, want map", m["response"])
	}
	if resp["answer"] != "fine" || resp["total"] != int64(3) {
		t.Fatalf("response = %#v", resp)
	}
}

func TestZONDecode_ArraysAndComments(t *testing.T) {
	text := "# recommendation output\nitems: [{id: a, score: 0.9}, {id: b, score: 0.4}]\nempty: []\n"
	doc, err := ZON().Decode(text)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	m := doc.(map[string]any)
	items, ok := m["items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("items = %#v", m["items"])
	}
	first := items[0].(map[string]any)
	if first["id"] != "a" || first["score"] != 0.9 {
		t.Fatalf("items[0] = %#v", first)
	}
	if empty, ok := m["empty"].([]any); !ok || len(empty) != 0 {
		t.Fatalf("empty = %#v", m["empty"])
	}
}

// Feeding JSON text to the ZON decoder succeeds, but the quote characters
// survive inside the keys. The decode orchestrator's misclassification guard
// depends on this behavior.
func TestZONDecode_JSONTextKeepsQuotedKeys(t *testing.T) {
	text := `{"answer": "hi", "recommendations": [], "total_products_reviewed": 3}`
	doc, err := ZON().Decode(text)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	m := doc.(map[string]any)
	if _, ok := m[`"answer"`]; !ok {
		t.Fatalf("expected quote-wrapped key, got keys %#v", m)
	}
	if m[`"answer"`] != "hi" {
		t.Errorf("answer value = %#v", m[`"answer"`])
	}
	if m[`"total_products_reviewed"`] != int64(3) {
		t.Errorf("count value = %#v", m[`"total_products_reviewed"`])
	}
}

func TestZONDecode_RejectsProse(t *testing.T) {
	if _, err := ZON().Decode("Sure! Here are the products you asked about."); err == nil {
		t.Fatal("Decode() of prose expected error, got nil")
	}
}

func TestZONEncode_RoundTrip(t *testing.T) {
	doc := map[string]any{
		"answer": "needs, quoting",
		"count":  int64(7),
		"nested": map[string]any{"ok": true, "tags": []any{"x", "y"}},
	}
	text, err := ZON().Encode(doc)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	back, err := ZON().Decode(text)
	if err != nil {
		t.Fatalf("Decode(Encode()) error = %v\ntext:\n%s", err, text)
	}
	if !reflect.DeepEqual(back, doc) {
		t.Fatalf("round trip mismatch:\nencoded:\n%s\ngot:  %#v\nwant: %#v", text, back, doc)
	}
}

func TestDecodeScalarToken_Rules(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{`"hello"`, "hello"},
		{"42", int64(42)},
		{"3.14", 3.14},
		{"true", true},
		{"null", nil},
		{"bare text", "bare text"},
	}
	for _, tt := range tests {
		if got := decodeScalarToken(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("decodeScalarToken(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
