package abitype

import (
	"slices"
	"strings"
)

// EnumPrefix marks an enum-qualified spelling, e.g. "ABIDataTypes.UINT256".
const EnumPrefix = "ABIDataTypes."

// AliasClass groups accepted spellings by where they come from.
type AliasClass uint8

const (
	AliasCanonical AliasClass = iota + 1 // the canonical spelling itself
	AliasBuiltin                         // host language built-in or library type name
	AliasLegacy                          // older snake_case spellings still accepted
)

func (c AliasClass) String() string {
	switch c {
	case AliasCanonical:
		return "canonical"
	case AliasBuiltin:
		return "builtin"
	case AliasLegacy:
		return "legacy"
	}
	return "unknown"
}

// Alias is one accepted source spelling of a tag.
type Alias struct {
	Spelling string
	Tag      Tag
	Class    AliasClass
}

var builtinAliases = map[string]Tag{
	"u8":   Uint8,
	"u16":  Uint16,
	"u32":  Uint32,
	"u64":  Uint64,
	"u128": Uint128,
	"u256": Uint256,

	"i8":   Int8,
	"i16":  Int16,
	"i32":  Int32,
	"i64":  Int64,
	"i128": Int128,

	"boolean":          Bool,
	"Address":          Address,
	"ExtendedAddress":  ExtendedAddress,
	"Uint8Array":       Bytes,
	"SchnorrSignature": SchnorrSignature,

	"Address[]":         ArrayOfAddresses,
	"ExtendedAddress[]": ArrayOfExtendedAddresses,
	"u8[]":              ArrayOfUint8,
	"u16[]":             ArrayOfUint16,
	"u32[]":             ArrayOfUint32,
	"u64[]":             ArrayOfUint64,
	"u128[]":            ArrayOfUint128,
	"u256[]":            ArrayOfUint256,
	"Uint8Array[]":      ArrayOfBytes,

	"AddressMap<u256>":         AddressUint256Tuple,
	"ExtendedAddressMap<u256>": ExtendedAddressUint256Tuple,
}

var legacyAliases = map[string]Tag{
	"extended_address":                   ExtendedAddress,
	"schnorr_signature":                  SchnorrSignature,
	"extended_address[]":                 ArrayOfExtendedAddresses,
	"tuple(extended_address,uint256)[]": ExtendedAddressUint256Tuple,
}

type aliasEntry struct {
	tag   Tag
	class AliasClass
}

var aliasIndex = func() map[string]aliasEntry {
	m := make(map[string]aliasEntry, 96)
	for t := Uint8; t < tagCount; t++ {
		m[tagTable[t].canonical] = aliasEntry{tag: t, class: AliasCanonical}
	}
	for s, t := range builtinAliases {
		m[s] = aliasEntry{tag: t, class: AliasBuiltin}
	}
	for s, t := range legacyAliases {
		m[s] = aliasEntry{tag: t, class: AliasLegacy}
	}
	return m
}()

// Lookup resolves a spelling to its tag. Lookup is case-sensitive and accepts
// canonical, built-in, legacy and enum-qualified spellings. It never panics;
// unknown input yields (Invalid, false).
func Lookup(spelling string) (Tag, bool) {
	if e, ok := aliasIndex[spelling]; ok {
		return e.tag, true
	}
	if member, ok := strings.CutPrefix(spelling, EnumPrefix); ok {
		return FromEnum(member)
	}
	return Invalid, false
}

// IsEnumQualified reports whether s starts with EnumPrefix, whether or not
// the member after the prefix exists.
func IsEnumQualified(s string) bool {
	return strings.HasPrefix(s, EnumPrefix)
}

// CanonicalSpelling maps any accepted spelling to its canonical form.
func CanonicalSpelling(spelling string) (string, bool) {
	t, ok := Lookup(spelling)
	if !ok {
		return "", false
	}
	return Canonical(t), true
}

// Aliases returns every table entry sorted by spelling. Enum-qualified forms
// are derived from the tag set and are not listed.
func Aliases() []Alias {
	out := make([]Alias, 0, len(aliasIndex))
	for s, e := range aliasIndex {
		out = append(out, Alias{Spelling: s, Tag: e.tag, Class: e.class})
	}
	slices.SortFunc(out, func(a, b Alias) int {
		return strings.Compare(a.Spelling, b.Spelling)
	})
	return out
}
