// Package selector derives call selectors from canonical method signatures.
//
// The digest and truncation width are part of the contract with the ABI
// encoders that consume the manifest; they are fixed here and not configurable.
package selector

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	sha256 "github.com/minio/sha256-simd"
)

const (
	// Algorithm names the digest used for selectors.
	Algorithm = "sha256"
	// Width is the number of digest bytes kept.
	Width = 4
)

// Selector is the truncated digest of one signature.
type Selector [Width]byte

// Hex renders the selector as 8 lowercase hex characters.
func (s Selector) Hex() string {
	return hex.EncodeToString(s[:])
}

// Literal renders the selector as a host numeric literal, e.g. 0x1a2b3c4d.
func (s Selector) Literal() string {
	return "0x" + s.Hex()
}

// Uint32 interprets the selector big-endian.
func (s Selector) Uint32() uint32 {
	return binary.BigEndian.Uint32(s[:])
}

func (s Selector) String() string {
	return s.Hex()
}

// MarshalText keeps selectors readable in JSON and msgpack payloads.
func (s Selector) MarshalText() ([]byte, error) {
	return []byte(s.Hex()), nil
}

// UnmarshalText parses 8 hex characters, with or without a 0x prefix.
func (s *Selector) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Signature builds `name(t1,t2,...)`. Callers must pass canonical spellings;
// return types never participate.
func Signature(name string, canonicalTypes ...string) string {
	var b strings.Builder
	b.Grow(len(name) + 2 + 12*len(canonicalTypes))
	b.WriteString(name)
	b.WriteByte('(')
	for i, t := range canonicalTypes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t)
	}
	b.WriteByte(')')
	return b.String()
}

// Of hashes the UTF-8 bytes of sig and keeps the first Width bytes.
func Of(sig string) Selector {
	sum := sha256.Sum256([]byte(sig))
	var s Selector
	copy(s[:], sum[:Width])
	return s
}

// Encode is Of(sig).Hex().
func Encode(sig string) string {
	return Of(sig).Hex()
}

// ParseError reports malformed selector text.
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return "selector: expected 8 hex chars, got " + e.Text
}

// Parse reads a selector back from its hex (or 0x-prefixed) form.
func Parse(text string) (Selector, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
	var s Selector
	if len(raw) != 2*Width {
		return s, &ParseError{Text: text}
	}
	if _, err := hex.Decode(s[:], []byte(raw)); err != nil {
		return Selector{}, &ParseError{Text: text}
	}
	return s, nil
}
