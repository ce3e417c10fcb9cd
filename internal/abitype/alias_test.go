package abitype

import (
	"strings"
	"testing"
	"unicode"
)

func TestLookupRoundTrip(t *testing.T) {
	for _, a := range Aliases() {
		c := Canonical(a.Tag)
		if c == "" {
			t.Fatalf("alias %q -> %s has no canonical spelling", a.Spelling, a.Tag)
		}
		back, ok := Lookup(c)
		if !ok || back != a.Tag {
			t.Fatalf("canonical %q of %q re-resolved to %s (ok=%v), want %s", c, a.Spelling, back, ok, a.Tag)
		}
	}
}

func TestCanonicalSpellingShape(t *testing.T) {
	for _, tag := range Tags() {
		c := Canonical(tag)
		if c == "" {
			t.Fatalf("%s: empty canonical", tag)
		}
		if unicode.IsUpper([]rune(c)[0]) {
			t.Errorf("%s: canonical %q starts uppercase", tag, c)
		}
		if strings.Contains(c, "Map") {
			t.Errorf("%s: canonical %q contains Map", tag, c)
		}
		if strings.Contains(c, "_") {
			t.Errorf("%s: canonical %q contains underscore", tag, c)
		}
	}
}

func TestCanonicalIsUnique(t *testing.T) {
	seen := map[string]Tag{}
	for _, tag := range Tags() {
		c := Canonical(tag)
		if prev, ok := seen[c]; ok {
			t.Fatalf("%s and %s share canonical %q", prev, tag, c)
		}
		seen[c] = tag
	}
}

func TestLookupAliases(t *testing.T) {
	tests := []struct {
		in   string
		want Tag
		c    string
	}{
		{"u256", Uint256, "uint256"},
		{"Address", Address, "address"},
		{"boolean", Bool, "bool"},
		{"Uint8Array", Bytes, "bytes"},
		{"AddressMap<u256>", AddressUint256Tuple, "tuple(address,uint256)[]"},
		{"ExtendedAddressMap<u256>", ExtendedAddressUint256Tuple, "tuple(extendedAddress,uint256)[]"},
		{"extended_address", ExtendedAddress, "extendedAddress"},
		{"schnorr_signature", SchnorrSignature, "schnorrSignature"},
		{"ABIDataTypes.UINT256", Uint256, "uint256"},
		{"ABIDataTypes.ARRAY_OF_EXTENDED_ADDRESSES", ArrayOfExtendedAddresses, "extendedAddress[]"},
		{"buffer[]", ArrayOfBuffers, "buffer[]"},
	}
	for _, tt := range tests {
		got, ok := Lookup(tt.in)
		if !ok || got != tt.want {
			t.Errorf("Lookup(%q) = %s, %v; want %s", tt.in, got, ok, tt.want)
			continue
		}
		if c := Canonical(got); c != tt.c {
			t.Errorf("Canonical(%s) = %q, want %q", got, c, tt.c)
		}
	}
}

func TestLookupRejects(t *testing.T) {
	for _, in := range []string{"", "U256", "uint", "ABIDataTypes.NOPE", "ABIDataTypes.", "tuple(address,bool)[]", "int256"} {
		if tag, ok := Lookup(in); ok {
			t.Errorf("Lookup(%q) unexpectedly resolved to %s", in, tag)
		}
	}
}

func TestIsEnumQualified(t *testing.T) {
	if !IsEnumQualified("ABIDataTypes.WHATEVER") {
		t.Fatalf("prefix should be detected even for unknown members")
	}
	if IsEnumQualified("abidatatypes.UINT8") {
		t.Fatalf("prefix check must be case-sensitive")
	}
}

func TestTagTextRoundTrip(t *testing.T) {
	for _, tag := range Tags() {
		b, err := tag.MarshalText()
		if err != nil {
			t.Fatalf("%s: %v", tag, err)
		}
		var back Tag
		if err := back.UnmarshalText(b); err != nil || back != tag {
			t.Fatalf("%s: round trip gave %s, %v", tag, back, err)
		}
	}
	var bad Tag
	if err := bad.UnmarshalText([]byte("NOT_A_TAG")); err == nil {
		t.Fatalf("expected error for unknown enum name")
	}
}

func TestHostHint(t *testing.T) {
	tests := []struct {
		tag  Tag
		want string
	}{
		{Uint8, "number"},
		{Int32, "number"},
		{Uint64, "bigint"},
		{Int128, "bigint"},
		{Uint256, "bigint"},
		{Address, "Address"},
		{ExtendedAddress, "Address"},
		{ArrayOfExtendedAddresses, "Address[]"},
		{AddressUint256Tuple, "AddressMap<bigint>"},
		{ExtendedAddressUint256Tuple, "ExtendedAddressMap<bigint>"},
		{Bytes32, "Uint8Array"},
		{Bytes4, "Uint8Array"},
		{ArrayOfBuffers, "Uint8Array[]"},
		{Bool, "boolean"},
		{String, "string"},
		{ArrayOfUint16, "number[]"},
		{ArrayOfUint128, "bigint[]"},
		{SchnorrSignature, "SchnorrSignature"},
		{Invalid, "unknown"},
	}
	for _, tt := range tests {
		if got := HostHint(tt.tag).String(); got != tt.want {
			t.Errorf("HostHint(%s) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestEveryTagHasHint(t *testing.T) {
	for _, tag := range Tags() {
		if HostHint(tag).Kind == HintUnknown {
			t.Errorf("%s has no host hint", tag)
		}
	}
}
