package abitype

import (
	"regexp"
	"slices"
	"strings"
)

// tupleRe anchors the whole string; nested parentheses are rejected.
var tupleRe = regexp.MustCompile(`^tuple\(([^()]+)\)\[\]$`)

// idioms are the only tuple shapes that resolve to a tag.
var idioms = []struct {
	inner []Tag
	tag   Tag
}{
	{inner: []Tag{Address, Uint256}, tag: AddressUint256Tuple},
	{inner: []Tag{ExtendedAddress, Uint256}, tag: ExtendedAddressUint256Tuple},
}

// IsTupleString reports whether s is exactly `tuple(<list>)[]`.
func IsTupleString(s string) bool {
	return tupleRe.MatchString(s)
}

// ParseInnerTypes splits the tuple list at top-level commas and trims every
// entry. A non-tuple string yields nil.
func ParseInnerTypes(s string) []string {
	m := tupleRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ValidateInnerTypes returns the inner spellings unknown to the alias table,
// in order. An empty result means every inner type resolves. When s is not a
// tuple string at all the result is []string{s}.
func ValidateInnerTypes(s string) []string {
	inner := ParseInnerTypes(s)
	if len(inner) == 0 {
		return []string{s}
	}
	var bad []string
	for _, spelling := range inner {
		if _, ok := Lookup(spelling); !ok {
			bad = append(bad, spelling)
		}
	}
	return bad
}

// ResolveTupleOrScalar resolves a tuple string against the reserved idioms
// and anything else through the alias table. A tuple whose inner types are
// all valid but match no idiom is still unresolved.
func ResolveTupleOrScalar(s string) (Tag, bool) {
	if !IsTupleString(s) {
		return Lookup(s)
	}
	inner := ParseInnerTypes(s)
	tags := make([]Tag, 0, len(inner))
	for _, spelling := range inner {
		t, ok := Lookup(spelling)
		if !ok {
			return Invalid, false
		}
		tags = append(tags, t)
	}
	for _, idiom := range idioms {
		if slices.Equal(idiom.inner, tags) {
			return idiom.tag, true
		}
	}
	return Invalid, false
}

// CanonicalizeTupleString rewrites each inner spelling to its canonical form,
// keeping order and count. It fails on non-tuple input or any unknown inner
// spelling. The result need not be one of the reserved idioms.
func CanonicalizeTupleString(s string) (string, bool) {
	inner := ParseInnerTypes(s)
	if len(inner) == 0 {
		return "", false
	}
	canonical := make([]string, 0, len(inner))
	for _, spelling := range inner {
		c, ok := CanonicalSpelling(spelling)
		if !ok {
			return "", false
		}
		canonical = append(canonical, c)
	}
	return "tuple(" + strings.Join(canonical, ",") + ")[]", true
}
