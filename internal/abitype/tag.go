package abitype

// Tag identifies one ABI data type. The set is closed: every value reachable
// from the alias table is declared here and nowhere else.
type Tag uint8

const (
	Invalid Tag = iota

	Uint8
	Uint16
	Uint32
	Uint64
	Uint128
	Uint256

	Int8
	Int16
	Int32
	Int64
	Int128

	Bool
	Address
	ExtendedAddress
	String
	Bytes
	Bytes4
	Bytes32
	SchnorrSignature

	ArrayOfAddresses
	ArrayOfExtendedAddresses
	ArrayOfUint8
	ArrayOfUint16
	ArrayOfUint32
	ArrayOfUint64
	ArrayOfUint128
	ArrayOfUint256
	ArrayOfBytes
	ArrayOfBuffers
	ArrayOfString

	// reserved tuple idioms, not derivable from the tuple grammar
	AddressUint256Tuple
	ExtendedAddressUint256Tuple

	tagCount
)

type tagInfo struct {
	enum      string // ABIDataTypes member name, used in the JSON manifest
	canonical string // the one spelling that participates in signatures
}

var tagTable = [tagCount]tagInfo{
	Invalid: {enum: "INVALID"},

	Uint8:   {enum: "UINT8", canonical: "uint8"},
	Uint16:  {enum: "UINT16", canonical: "uint16"},
	Uint32:  {enum: "UINT32", canonical: "uint32"},
	Uint64:  {enum: "UINT64", canonical: "uint64"},
	Uint128: {enum: "UINT128", canonical: "uint128"},
	Uint256: {enum: "UINT256", canonical: "uint256"},

	Int8:   {enum: "INT8", canonical: "int8"},
	Int16:  {enum: "INT16", canonical: "int16"},
	Int32:  {enum: "INT32", canonical: "int32"},
	Int64:  {enum: "INT64", canonical: "int64"},
	Int128: {enum: "INT128", canonical: "int128"},

	Bool:             {enum: "BOOL", canonical: "bool"},
	Address:          {enum: "ADDRESS", canonical: "address"},
	ExtendedAddress:  {enum: "EXTENDED_ADDRESS", canonical: "extendedAddress"},
	String:           {enum: "STRING", canonical: "string"},
	Bytes:            {enum: "BYTES", canonical: "bytes"},
	Bytes4:           {enum: "BYTES4", canonical: "bytes4"},
	Bytes32:          {enum: "BYTES32", canonical: "bytes32"},
	SchnorrSignature: {enum: "SCHNORR_SIGNATURE", canonical: "schnorrSignature"},

	ArrayOfAddresses:         {enum: "ARRAY_OF_ADDRESSES", canonical: "address[]"},
	ArrayOfExtendedAddresses: {enum: "ARRAY_OF_EXTENDED_ADDRESSES", canonical: "extendedAddress[]"},
	ArrayOfUint8:             {enum: "ARRAY_OF_UINT8", canonical: "uint8[]"},
	ArrayOfUint16:            {enum: "ARRAY_OF_UINT16", canonical: "uint16[]"},
	ArrayOfUint32:            {enum: "ARRAY_OF_UINT32", canonical: "uint32[]"},
	ArrayOfUint64:            {enum: "ARRAY_OF_UINT64", canonical: "uint64[]"},
	ArrayOfUint128:           {enum: "ARRAY_OF_UINT128", canonical: "uint128[]"},
	ArrayOfUint256:           {enum: "ARRAY_OF_UINT256", canonical: "uint256[]"},
	ArrayOfBytes:             {enum: "ARRAY_OF_BYTES", canonical: "bytes[]"},
	ArrayOfBuffers:           {enum: "ARRAY_OF_BUFFERS", canonical: "buffer[]"},
	ArrayOfString:            {enum: "ARRAY_OF_STRING", canonical: "string[]"},

	AddressUint256Tuple:         {enum: "ADDRESS_UINT256_TUPLE", canonical: "tuple(address,uint256)[]"},
	ExtendedAddressUint256Tuple: {enum: "EXTENDED_ADDRESS_UINT256_TUPLE", canonical: "tuple(extendedAddress,uint256)[]"},
}

var enumIndex = func() map[string]Tag {
	m := make(map[string]Tag, len(tagTable))
	for t := Uint8; t < tagCount; t++ {
		m[tagTable[t].enum] = t
	}
	return m
}()

// Valid reports whether t is one of the declared tags.
func (t Tag) Valid() bool {
	return t > Invalid && t < tagCount
}

// String returns the enum member name (e.g. "UINT256").
func (t Tag) String() string {
	if t >= tagCount {
		return tagTable[Invalid].enum
	}
	return tagTable[t].enum
}

// Canonical returns the canonical spelling of t, or "" for Invalid.
func Canonical(t Tag) string {
	if !t.Valid() {
		return ""
	}
	return tagTable[t].canonical
}

// FromEnum resolves an enum member name such as "ADDRESS".
func FromEnum(name string) (Tag, bool) {
	t, ok := enumIndex[name]
	return t, ok
}

// Tags returns every declared tag in declaration order.
func Tags() []Tag {
	out := make([]Tag, 0, int(tagCount)-1)
	for t := Uint8; t < tagCount; t++ {
		out = append(out, t)
	}
	return out
}

// IsTupleIdiom reports whether t is one of the two reserved amount-tuple tags.
func (t Tag) IsTupleIdiom() bool {
	return t == AddressUint256Tuple || t == ExtendedAddressUint256Tuple
}

// MarshalText renders the tag by its enum name so manifests stay readable.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts an enum name produced by MarshalText.
func (t *Tag) UnmarshalText(b []byte) error {
	v, ok := FromEnum(string(b))
	if !ok {
		return &UnknownTagError{Name: string(b)}
	}
	*t = v
	return nil
}

// UnknownTagError is returned when decoding an enum name that is not declared.
type UnknownTagError struct {
	Name string
}

func (e *UnknownTagError) Error() string {
	return "abitype: unknown tag " + e.Name
}
