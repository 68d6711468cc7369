package format

import (
	"encoding/json"
	"strings"
)

// NameJSON is the identifier of the JSON grammar.
const NameJSON = "json"

type jsonFormat struct {
	indent bool
}

// JSON returns the JSON grammar with pretty (two-space indented) encoding.
func JSON() Format { return &jsonFormat{indent: true} }

// JSONMinified returns the JSON grammar with minified encoding. Decoding is
// identical to JSON().
func JSONMinified() Format { return &jsonFormat{} }

func (f *jsonFormat) Name() string { return NameJSON }

func (f *jsonFormat) Encode(v any) (string, error) {
	var (
		raw []byte
		err error
	)
	if f.indent {
		raw, err = json.MarshalIndent(v, "", "  ")
	} else {
		raw, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (f *jsonFormat) Decode(text string) (any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, syntaxErr(NameJSON, 0, "empty input")
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, syntaxErr(NameJSON, 0, "%v", err)
	}
	return v, nil
}

func (f *jsonFormat) DecodeScalar(text string) (any, error) {
	return f.Decode(text)
}
