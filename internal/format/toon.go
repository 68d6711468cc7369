package format

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NameTOON is the identifier of the TOON (Token-Oriented Object Notation)
// grammar: an indentation-based encoding where objects are `key: value` lines,
// uniform object arrays collapse into tabular blocks `key[N]{f1,f2}:` with one
// comma-joined row per element, and primitive arrays inline as `key[N]: a,b,c`.
const NameTOON = "toon"

type toonFormat struct{}

// TOON returns the TOON grammar codec.
func TOON() Format { return toonFormat{} }

func (toonFormat) Name() string { return NameTOON }

func (toonFormat) DecodeScalar(text string) (any, error) {
	return decodeScalarToken(text), nil
}

// ---------------------------------------------------------------------------
// Decoding

type toonLine struct {
	indent int
	text   string
	num    int
}

type toonParser struct {
	lines []toonLine
	pos   int
}

func (toonFormat) Decode(text string) (any, error) {
	lines := make([]toonLine, 0, 16)
	for i, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		indent := 0
		for _, r := range trimmed {
			if r != ' ' {
				break
			}
			indent++
		}
		lines = append(lines, toonLine{indent: indent, text: strings.TrimSpace(trimmed), num: i + 1})
	}
	if len(lines) == 0 {
		return nil, syntaxErr(NameTOON, 0, "empty input")
	}

	p := &toonParser{lines: lines}
	root, err := p.parseMap(lines[0].indent)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.lines) {
		return nil, syntaxErr(NameTOON, p.lines[p.pos].num, "unexpected indentation")
	}
	if len(root) == 0 {
		return nil, syntaxErr(NameTOON, lines[0].num, "no fields")
	}
	return root, nil
}

func (p *toonParser) parseMap(indent int) (map[string]any, error) {
	out := make(map[string]any)
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if line.indent < indent {
			break
		}
		if line.indent > indent {
			return nil, syntaxErr(NameTOON, line.num, "unexpected indentation")
		}

		colon := indexTop(line.text, ':')
		if colon < 0 {
			return nil, syntaxErr(NameTOON, line.num, "expected key: value")
		}
		head := strings.TrimSpace(line.text[:colon])
		rest := strings.TrimSpace(line.text[colon+1:])

		key, count, fields, err := parseToonKey(head, line.num)
		if err != nil {
			return nil, err
		}
		p.pos++

		var value any
		switch {
		case fields != nil:
			value, err = p.parseTabular(indent, count, fields, rest, line.num)
		case count >= 0:
			value, err = p.parseSizedArray(indent, count, rest, line.num)
		case rest == "":
			value, err = p.parseNested(indent, line.num)
		default:
			value = decodeScalarToken(rest)
		}
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

// parseToonKey splits `key`, `key[N]`, or `key[N]{f1,f2}` heads.
// count is -1 when no [N] suffix is present.
func parseToonKey(head string, num int) (key string, count int, fields []string, err error) {
	count = -1
	if strings.HasSuffix(head, "}") {
		open := strings.LastIndex(head, "{")
		if open < 0 {
			return "", 0, nil, syntaxErr(NameTOON, num, "unbalanced field list")
		}
		for _, f := range strings.Split(head[open+1:len(head)-1], ",") {
			fields = append(fields, strings.TrimSpace(f))
		}
		head = strings.TrimSpace(head[:open])
	}
	if strings.HasSuffix(head, "]") {
		open := strings.LastIndex(head, "[")
		if open < 0 {
			return "", 0, nil, syntaxErr(NameTOON, num, "unbalanced length suffix")
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(head[open+1 : len(head)-1]))
		if convErr != nil || n < 0 {
			return "", 0, nil, syntaxErr(NameTOON, num, "invalid array length %q", head[open+1:len(head)-1])
		}
		count = n
		head = strings.TrimSpace(head[:open])
	}
	if fields != nil && count < 0 {
		return "", 0, nil, syntaxErr(NameTOON, num, "field list without array length")
	}
	key = head
	if len(key) >= 2 && key[0] == '"' && key[len(key)-1] == '"' {
		if unq, uErr := strconv.Unquote(key); uErr == nil {
			key = unq
		}
	}
	if key == "" {
		return "", 0, nil, syntaxErr(NameTOON, num, "empty key")
	}
	return key, count, fields, nil
}

// parseTabular reads count rows of a `key[N]{f1,f2}:` block.
func (p *toonParser) parseTabular(indent, count int, fields []string, rest string, num int) (any, error) {
	if rest != "" {
		return nil, syntaxErr(NameTOON, num, "tabular header must end the line")
	}
	rows := make([]any, 0, count)
	childIndent := -1
	for i := 0; i < count; i++ {
		if p.pos >= len(p.lines) {
			return nil, syntaxErr(NameTOON, num, "expected %d rows, got %d", count, i)
		}
		line := p.lines[p.pos]
		if childIndent == -1 {
			if line.indent <= indent {
				return nil, syntaxErr(NameTOON, line.num, "expected indented row")
			}
			childIndent = line.indent
		}
		if line.indent != childIndent {
			return nil, syntaxErr(NameTOON, line.num, "inconsistent row indentation")
		}
		cells := splitTop(line.text, ',')
		if len(cells) != len(fields) {
			return nil, syntaxErr(NameTOON, line.num, "row has %d cells, header declares %d fields", len(cells), len(fields))
		}
		row := make(map[string]any, len(fields))
		for j, f := range fields {
			row[f] = decodeScalarToken(cells[j])
		}
		rows = append(rows, row)
		p.pos++
	}
	return rows, nil
}

// parseSizedArray reads `key[N]: a,b,c` inline arrays or `key[N]:` blocks of
// `- item` lines.
func (p *toonParser) parseSizedArray(indent, count int, rest string, num int) (any, error) {
	if rest != "" {
		cells := splitTop(rest, ',')
		if len(cells) != count {
			return nil, syntaxErr(NameTOON, num, "array has %d elements, header declares %d", len(cells), count)
		}
		out := make([]any, 0, count)
		for _, c := range cells {
			out = append(out, decodeScalarToken(c))
		}
		return out, nil
	}
	if count == 0 {
		return []any{}, nil
	}
	out := make([]any, 0, count)
	childIndent := -1
	for i := 0; i < count; i++ {
		if p.pos >= len(p.lines) {
			return nil, syntaxErr(NameTOON, num, "expected %d items, got %d", count, i)
		}
		line := p.lines[p.pos]
		if childIndent == -1 {
			if line.indent <= indent {
				return nil, syntaxErr(NameTOON, line.num, "expected indented item")
			}
			childIndent = line.indent
		}
		if line.indent != childIndent || !strings.HasPrefix(line.text, "- ") {
			return nil, syntaxErr(NameTOON, line.num, "expected `- item` line")
		}
		item, err := parseToonInline(strings.TrimSpace(line.text[2:]), line.num)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
		p.pos++
	}
	return out, nil
}

// parseNested reads the block under a bare `key:` line: either a nested map
// or a list of `- item` lines.
func (p *toonParser) parseNested(indent, num int) (any, error) {
	if p.pos >= len(p.lines) || p.lines[p.pos].indent <= indent {
		return nil, syntaxErr(NameTOON, num, "missing nested block")
	}
	childIndent := p.lines[p.pos].indent
	if strings.HasPrefix(p.lines[p.pos].text, "- ") {
		var out []any
		for p.pos < len(p.lines) && p.lines[p.pos].indent == childIndent && strings.HasPrefix(p.lines[p.pos].text, "- ") {
			item, err := parseToonInline(strings.TrimSpace(p.lines[p.pos].text[2:]), p.lines[p.pos].num)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
			p.pos++
		}
		return out, nil
	}
	return p.parseMap(childIndent)
}

// parseToonInline parses a single-line value: inline object, inline array, or
// scalar token.
func parseToonInline(s string, num int) (any, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		inner := strings.TrimSpace(s[1 : len(s)-1])
		out := make(map[string]any)
		if inner == "" {
			return out, nil
		}
		for _, pair := range splitTop(inner, ',') {
			colon := indexTop(pair, ':')
			if colon < 0 {
				return nil, syntaxErr(NameTOON, num, "expected key: value in inline object")
			}
			key := strings.TrimSpace(pair[:colon])
			if len(key) >= 2 && key[0] == '"' && key[len(key)-1] == '"' {
				if unq, err := strconv.Unquote(key); err == nil {
					key = unq
				}
			}
			val, err := parseToonInline(pair[colon+1:], num)
			if err != nil {
				return nil, err
			}
			out[key] = val
		}
		return out, nil
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		inner := strings.TrimSpace(s[1 : len(s)-1])
		if inner == "" {
			return []any{}, nil
		}
		var out []any
		for _, elem := range splitTop(inner, ',') {
			item, err := parseToonInline(elem, num)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	default:
		return decodeScalarToken(s), nil
	}
}

// ---------------------------------------------------------------------------
// Encoding

func (toonFormat) Encode(v any) (string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return encodeToonInline(v), nil
	}
	var b strings.Builder
	encodeToonMap(&b, m, 0)
	return strings.TrimRight(b.String(), "\n"), nil
}

func encodeToonMap(b *strings.Builder, m map[string]any, indent int) {
	pad := strings.Repeat(" ", indent)
	for _, k := range sortedKeys(m) {
		v := m[k]
		key := encodeToonKey(k)
		switch t := v.(type) {
		case map[string]any:
			fmt.Fprintf(b, "%s%s:\n", pad, key)
			encodeToonMap(b, t, indent+2)
		case []any:
			encodeToonArray(b, key, t, indent)
		default:
			fmt.Fprintf(b, "%s%s: %s\n", pad, key, encodeScalarToken(v))
		}
	}
}

func encodeToonArray(b *strings.Builder, key string, list []any, indent int) {
	pad := strings.Repeat(" ", indent)
	childPad := strings.Repeat(" ", indent+2)

	if fields, ok := uniformScalarRows(list); ok {
		fmt.Fprintf(b, "%s%s[%d]{%s}:\n", pad, key, len(list), strings.Join(fields, ","))
		for _, elem := range list {
			row := elem.(map[string]any)
			cells := make([]string, 0, len(fields))
			for _, f := range fields {
				cells = append(cells, encodeScalarToken(row[f]))
			}
			fmt.Fprintf(b, "%s%s\n", childPad, strings.Join(cells, ","))
		}
		return
	}

	if allScalars(list) {
		cells := make([]string, 0, len(list))
		for _, elem := range list {
			cells = append(cells, encodeScalarToken(elem))
		}
		fmt.Fprintf(b, "%s%s[%d]: %s\n", pad, key, len(list), strings.Join(cells, ","))
		return
	}

	fmt.Fprintf(b, "%s%s[%d]:\n", pad, key, len(list))
	for _, elem := range list {
		fmt.Fprintf(b, "%s- %s\n", childPad, encodeToonInline(elem))
	}
}

func encodeToonInline(v any) string {
	switch t := v.(type) {
	case map[string]any:
		pairs := make([]string, 0, len(t))
		for _, k := range sortedKeys(t) {
			pairs = append(pairs, encodeToonKey(k)+": "+encodeToonInline(t[k]))
		}
		return "{" + strings.Join(pairs, ", ") + "}"
	case []any:
		elems := make([]string, 0, len(t))
		for _, e := range t {
			elems = append(elems, encodeToonInline(e))
		}
		return "[" + strings.Join(elems, ", ") + "]"
	default:
		return encodeScalarToken(v)
	}
}

func encodeToonKey(k string) string {
	if bareStringSafe(k) {
		return k
	}
	return strconv.Quote(k)
}

// uniformScalarRows reports whether every element is a map with the same key
// set and scalar-only values, returning the shared field order.
func uniformScalarRows(list []any) ([]string, bool) {
	if len(list) == 0 {
		return nil, false
	}
	var fields []string
	for i, elem := range list {
		m, ok := elem.(map[string]any)
		if !ok {
			return nil, false
		}
		keys := sortedKeys(m)
		for _, k := range keys {
			switch m[k].(type) {
			case map[string]any, []any:
				return nil, false
			}
		}
		if i == 0 {
			fields = keys
			continue
		}
		if len(keys) != len(fields) {
			return nil, false
		}
		for j := range keys {
			if keys[j] != fields[j] {
				return nil, false
			}
		}
	}
	return fields, true
}

func allScalars(list []any) bool {
	for _, elem := range list {
		switch elem.(type) {
		case map[string]any, []any:
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
