package abitype

// HintKind is the host-side representation chosen for a tag. It is only used
// when emitting host type hints; selectors never see it.
type HintKind uint8

const (
	HintUnknown HintKind = iota
	HintNumber           // native numeric, integers up to 32 bits
	HintBigInt           // arbitrary-precision integer
	HintBoolean
	HintString
	HintBytes // raw byte sequence
	HintAddress
	HintSchnorrSignature
	HintAddressMap         // ordered mapping keyed by address
	HintExtendedAddressMap // ordered mapping keyed by extended address
)

// Hint describes the host type used for a tag, optionally as an array.
type Hint struct {
	Kind  HintKind
	Array bool
}

var hintNames = [...]string{
	HintUnknown:            "unknown",
	HintNumber:             "number",
	HintBigInt:             "bigint",
	HintBoolean:            "boolean",
	HintString:             "string",
	HintBytes:              "Uint8Array",
	HintAddress:            "Address",
	HintSchnorrSignature:   "SchnorrSignature",
	HintAddressMap:         "AddressMap<bigint>",
	HintExtendedAddressMap: "ExtendedAddressMap<bigint>",
}

// String renders the hint as a host type expression.
func (h Hint) String() string {
	name := hintNames[HintUnknown]
	if int(h.Kind) < len(hintNames) {
		name = hintNames[h.Kind]
	}
	if h.Array {
		return name + "[]"
	}
	return name
}

// HostHint maps a tag to its host type hint.
func HostHint(t Tag) Hint {
	switch t {
	case Uint8, Uint16, Uint32, Int8, Int16, Int32:
		return Hint{Kind: HintNumber}
	case Uint64, Uint128, Uint256, Int64, Int128:
		return Hint{Kind: HintBigInt}
	case Bool:
		return Hint{Kind: HintBoolean}
	case String:
		return Hint{Kind: HintString}
	case Bytes, Bytes4, Bytes32:
		return Hint{Kind: HintBytes}
	case Address, ExtendedAddress:
		return Hint{Kind: HintAddress}
	case SchnorrSignature:
		return Hint{Kind: HintSchnorrSignature}
	case AddressUint256Tuple:
		return Hint{Kind: HintAddressMap}
	case ExtendedAddressUint256Tuple:
		return Hint{Kind: HintExtendedAddressMap}
	case ArrayOfAddresses, ArrayOfExtendedAddresses:
		return Hint{Kind: HintAddress, Array: true}
	case ArrayOfUint8, ArrayOfUint16, ArrayOfUint32:
		return Hint{Kind: HintNumber, Array: true}
	case ArrayOfUint64, ArrayOfUint128, ArrayOfUint256:
		return Hint{Kind: HintBigInt, Array: true}
	case ArrayOfBytes, ArrayOfBuffers:
		return Hint{Kind: HintBytes, Array: true}
	case ArrayOfString:
		return Hint{Kind: HintString, Array: true}
	}
	return Hint{}
}
