package params

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// repairObjectLiteral turns a near-JSON object literal into a generic map:
//
//	{ name: 'to', type: ABIDataTypes.UINT256, }
//
// Bare keys, any quote style, bare enum values and missing or trailing
// commas are repaired by jsonrepair. Values keep their JSON kind, so an
// unquoted null, bool or number never reads as a string.
func repairObjectLiteral(text string) (map[string]any, string) {
	repaired, err := jsonrepair.JSONRepair(quoteBareValues(text))
	if err != nil {
		return nil, err.Error()
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
		return nil, "not an object"
	}
	return obj, ""
}

// quoteBareValues wraps unquoted values that carry parentheses or brackets,
// e.g. tuple(address,uint256)[], in double quotes. jsonrepair would read
// them as a call or split them at the bracket.
func quoteBareValues(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 4)
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			b.WriteByte(c)
			switch {
			case c == '\\' && i+1 < len(text):
				i++
				b.WriteByte(text[i])
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
			b.WriteByte(c)
			continue
		case ':':
		default:
			b.WriteByte(c)
			continue
		}
		b.WriteByte(c)
		j := i + 1
		for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r') {
			j++
		}
		end, ok := bareValueEnd(text, j)
		if !ok {
			continue
		}
		b.WriteString(text[i+1 : j])
		val := strings.TrimSpace(text[j:end])
		b.WriteString(`"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(val) + `"`)
		b.WriteString(text[j+len(val) : end])
		i = end - 1
	}
	return b.String()
}

// bareValueEnd finds where an unquoted value starting at start ends. It
// reports false unless the value is bare and contains '(' or '['.
func bareValueEnd(text string, start int) (int, bool) {
	if start >= len(text) {
		return 0, false
	}
	switch text[start] {
	case '"', '\'', '`', '{', '[', ',', '}':
		return 0, false
	}
	depth := 0
	nested := false
	i := start
scan:
	for ; i < len(text); i++ {
		switch c := text[i]; c {
		case '(', '[':
			depth++
			nested = true
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',', '}':
			if depth == 0 {
				break scan
			}
		case '"', '\'', '`', '{', ':':
			if depth == 0 {
				return 0, false
			}
		}
	}
	return i, nested
}
