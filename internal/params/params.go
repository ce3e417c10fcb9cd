// Package params turns raw annotation argument text into parameter
// descriptors.
//
// Each argument is either a bare type spelling ("uint256", "Address[]") or a
// named object literal such as `{ name: 'to', type: 'address' }`. Object
// literals are repaired into JSON first (bare keys, any quote style, bare enum
// values, trailing commas); anything that still fails to yield string `name`
// and `type` falls back to a bare spelling. Type text is kept raw here and resolved later.
package params

import (
	"fmt"
	"strings"

	"abiforge/internal/abitype"
)

// Descriptor is one parameter or return value as written at the annotation
// site. Descriptors are immutable once created.
type Descriptor struct {
	Name  string `json:"name,omitempty" msgpack:"name,omitempty"`
	Type  string `json:"type" msgpack:"type"`
	Named bool   `json:"named,omitempty" msgpack:"named,omitempty"`
}

func (d Descriptor) String() string {
	if d.Named {
		return d.Name + ": " + d.Type
	}
	return d.Type
}

// ParseError explains why an argument was not accepted as a named literal.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("named parameter %q: %s", e.Text, e.Reason)
}

// IsObjectText reports whether trimmed text is brace-delimited.
func IsObjectText(raw string) bool {
	t := strings.TrimSpace(raw)
	return len(t) >= 2 && strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}")
}

// ParseNamed parses a `{name, type}` object literal. It never panics; every
// failure is reported as *ParseError.
func ParseNamed(raw string) (Descriptor, error) {
	text := strings.TrimSpace(raw)
	if !IsObjectText(text) {
		return Descriptor{}, &ParseError{Text: text, Reason: "not brace-delimited"}
	}
	obj, reason := repairObjectLiteral(text)
	if obj == nil {
		return Descriptor{}, &ParseError{Text: text, Reason: reason}
	}
	name, okName := obj["name"].(string)
	typ, okType := obj["type"].(string)
	if !okName || !okType {
		return Descriptor{}, &ParseError{Text: text, Reason: "name and type must both be strings"}
	}
	return Descriptor{Name: name, Type: strings.TrimSpace(typ), Named: true}, nil
}

// ParseArg parses one argument. The returned error, when non-nil, is the
// reason a brace-delimited argument degraded to a bare spelling; the
// descriptor is usable either way.
func ParseArg(raw string) (Descriptor, error) {
	text := strings.TrimSpace(raw)
	if IsObjectText(text) {
		d, err := ParseNamed(text)
		if err == nil {
			return d, nil
		}
		return Descriptor{Type: text}, err
	}
	return Descriptor{Type: text}, nil
}

// LooksLikeParam reports whether d reads as a parameter rather than a method
// name: its type resolves through the alias table, or it is enum-qualified.
func LooksLikeParam(d Descriptor) bool {
	if abitype.IsEnumQualified(d.Type) {
		return true
	}
	_, ok := abitype.Lookup(d.Type)
	return ok
}

// Unquote strips one layer of double quotes and then one layer of single
// quotes, mirroring how string literal arguments reach the pass.
func Unquote(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		raw = raw[1 : len(raw)-1]
	}
	return raw
}
