package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"abiforge/internal/abitype"
	"abiforge/internal/collect"
	"abiforge/internal/decl"
	"abiforge/internal/selector"
	"abiforge/internal/source"
)

func ann(name string, args ...string) decl.Annotation {
	return decl.Annotation{Name: name, Args: args}
}

func tokenUnit() *decl.Unit {
	u := decl.NewUnit("token")
	tok := u.AddClass("Token", source.Span{})
	u.AddMethod(tok, "transfer", source.Span{},
		ann(decl.AnnMethod, `"address"`, `"uint256"`),
		ann(decl.AnnReturns, `"bool"`),
		ann(decl.AnnEmit, `"Transfer"`),
	)
	u.AddMethod(tok, "balanceOf", source.Span{},
		ann(decl.AnnMethod, `"{ name: 'owner', type: ABIDataTypes.ADDRESS }"`),
		ann(decl.AnnReturns, `"{ name: 'balance', type: 'u256' }"`),
		ann(decl.AnnView),
	)
	u.AddMethod(tok, "airdrop", source.Span{},
		ann(decl.AnnMethod, `"AddressMap<u256>"`),
		ann(decl.AnnOnlyOwner),
		ann(decl.AnnPayable),
	)
	ev := u.AddClass("TransferEvent", source.Span{}, ann(decl.AnnEvent, `"Transfer"`))
	u.AddField(ev, "from", "Address", source.Span{})
	u.AddField(ev, "to", "Address", source.Span{})
	u.AddField(ev, "amount", "u256", source.Span{})
	unused := u.AddClass("Burned", source.Span{}, ann(decl.AnnEvent))
	u.AddField(unused, "amount", "u256", source.Span{})
	return u
}

func build(t *testing.T, u *decl.Unit) (*collect.Assembler, *Manifest) {
	t.Helper()
	asm := collect.New(u, collect.Options{})
	asm.Collect()
	m, err := NewBuilder(Options{}).Build(asm)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return asm, m
}

func TestTransferSignatureAndSelector(t *testing.T) {
	asm, m := build(t, tokenUnit())
	if len(m.Functions) != 3 {
		t.Fatalf("functions = %d", len(m.Functions))
	}
	fn := m.Functions[0]
	if fn.Signature != "transfer(address,uint256)" {
		t.Fatalf("signature = %q", fn.Signature)
	}
	if fn.Selector.Hex() != selector.Encode("transfer(address,uint256)") {
		t.Fatalf("selector = %s", fn.Selector.Hex())
	}
	if len(fn.Selector.Hex()) != 8 {
		t.Fatalf("selector hex %q is not 8 chars", fn.Selector.Hex())
	}
	tok, _ := asm.Unit().ClassByName("Token")
	rec := asm.Records(tok)[0]
	if rec.Signature != fn.Signature || rec.Selector != fn.Selector {
		t.Fatalf("record not filled: %+v", rec)
	}
}

func TestSelectorIgnoresParameterNames(t *testing.T) {
	_, m := build(t, tokenUnit())
	bal := m.Functions[1]
	if bal.Signature != "balanceOf(address)" {
		t.Fatalf("signature = %q", bal.Signature)
	}
	if bal.Inputs[0].Name != "owner" || bal.Outputs[0].Name != "balance" {
		t.Fatalf("names = %q / %q", bal.Inputs[0].Name, bal.Outputs[0].Name)
	}
}

func TestAutoNamesAndRoles(t *testing.T) {
	_, m := build(t, tokenUnit())
	tr := m.Functions[0]
	if tr.Inputs[0].Name != "param1" || tr.Inputs[1].Name != "param2" {
		t.Fatalf("inputs = %+v", tr.Inputs)
	}
	if len(tr.Outputs) != 1 || tr.Outputs[0].Name != "returnVal1" || tr.Outputs[0].Type != abitype.Bool {
		t.Fatalf("outputs = %+v", tr.Outputs)
	}
	if tr.Type != RoleFunction || m.Functions[1].Type != RoleView {
		t.Fatalf("roles = %q %q", tr.Type, m.Functions[1].Type)
	}
	air := m.Functions[2]
	if len(air.Outputs) != 0 {
		t.Fatalf("no returns must mean no outputs, got %+v", air.Outputs)
	}
	if !air.Payable || !air.OnlyOwner {
		t.Fatalf("flags lost")
	}
}

func TestAddressMapResolvesToTupleIdiom(t *testing.T) {
	_, m := build(t, tokenUnit())
	in := m.Functions[2].Inputs[0]
	if in.Type != abitype.AddressUint256Tuple {
		t.Fatalf("type = %v", in.Type)
	}
	if abitype.Canonical(in.Type) != "tuple(address,uint256)[]" {
		t.Fatalf("canonical = %q", abitype.Canonical(in.Type))
	}
	if m.Functions[2].Signature != "airdrop(tuple(address,uint256)[])" {
		t.Fatalf("signature = %q", m.Functions[2].Signature)
	}
	if in.Hint.String() != "AddressMap<bigint>" {
		t.Fatalf("hint = %s", in.Hint)
	}
}

func TestEventsPerClassAndUnit(t *testing.T) {
	_, m := build(t, tokenUnit())
	if len(m.Events) != 2 {
		t.Fatalf("unit events = %d", len(m.Events))
	}
	abi, ok := m.Class("Token")
	if !ok {
		t.Fatalf("Token ABI missing")
	}
	if len(abi.Events) != 1 || abi.Events[0].Name != "Transfer" {
		t.Fatalf("class events = %+v", abi.Events)
	}
	if got := abi.Events[0].Values[2].Type; got != abitype.Uint256 {
		t.Fatalf("amount type = %v", got)
	}
}

func TestManifestJSONShape(t *testing.T) {
	_, m := build(t, tokenUnit())
	var buf bytes.Buffer
	if err := m.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var raw struct {
		Functions []map[string]any `json:"functions"`
		Events    []map[string]any `json:"events"`
	}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	fn := raw.Functions[0]
	for _, key := range []string{"name", "type", "payable", "onlyOwner", "inputs", "outputs"} {
		if _, ok := fn[key]; !ok {
			t.Errorf("function entry lacks %q", key)
		}
	}
	if len(fn) != 6 {
		t.Errorf("function entry has extra keys: %v", fn)
	}
	in := fn["inputs"].([]any)[0].(map[string]any)
	if in["type"] != "ADDRESS" || in["name"] != "param1" {
		t.Errorf("input = %v", in)
	}
	if outs := raw.Functions[2]["outputs"].([]any); len(outs) != 0 {
		t.Errorf("empty outputs should encode as [], got %v", outs)
	}
	ev := raw.Events[0]
	if ev["type"] != "Event" || ev["name"] != "Transfer" {
		t.Errorf("event = %v", ev)
	}
}

func TestUnresolvedTypeIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		spelling string
		inner    []string
	}{
		{"scalar", []string{`"address"`, `"foobar"`}, "foobar", nil},
		{"tuple member", []string{`"tuple(address,foobar)[]"`}, "tuple(address,foobar)[]", []string{"foobar"}},
		{"broken named literal", []string{`"address"`, `"{ name: 'x' }"`}, "{ name: 'x' }", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := decl.NewUnit("t")
			cls := u.AddClass("Vault", source.Span{})
			u.AddMethod(cls, "deposit", source.Span{}, ann(decl.AnnMethod, tt.args...))
			asm := collect.New(u, collect.Options{})
			asm.Collect()
			m, err := NewBuilder(DefaultOptions()).Build(asm)
			if m != nil {
				t.Fatalf("partial manifest returned")
			}
			var ute *UnresolvedTypeError
			if !errors.As(err, &ute) {
				t.Fatalf("expected UnresolvedTypeError, got %v", err)
			}
			if ute.Class != "Vault" || ute.Method != "deposit" || ute.Spelling != tt.spelling {
				t.Fatalf("error = %+v", ute)
			}
			if strings.Join(ute.Inner, ",") != strings.Join(tt.inner, ",") {
				t.Fatalf("inner = %v, want %v", ute.Inner, tt.inner)
			}
		})
	}
}

func TestUnresolvedEventField(t *testing.T) {
	u := decl.NewUnit("t")
	ev := u.AddClass("Odd", source.Span{}, ann(decl.AnnEvent))
	u.AddField(ev, "x", "Map<u8,u8>", source.Span{})
	asm := collect.New(u, collect.Options{})
	asm.Collect()
	_, err := NewBuilder(DefaultOptions()).Build(asm)
	var ute *UnresolvedTypeError
	if !errors.As(err, &ute) || ute.Event != "Odd" || ute.Method != "" {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(ute.Error(), "event Odd") {
		t.Fatalf("message = %q", ute.Error())
	}
}

func TestEnumQualifiedCanonicalizes(t *testing.T) {
	u := decl.NewUnit("t")
	cls := u.AddClass("C", source.Span{})
	u.AddMethod(cls, "sign", source.Span{},
		ann(decl.AnnMethod, `"ABIDataTypes.EXTENDED_ADDRESS"`, `"schnorr_signature"`, `"u8[]"`))
	_, m := build(t, u)
	if got := m.Functions[0].Signature; got != "sign(extendedAddress,schnorrSignature,uint8[])" {
		t.Fatalf("signature = %q", got)
	}
}

func TestSelectorOverrideKeepsSignature(t *testing.T) {
	u := decl.NewUnit("t")
	cls := u.AddClass("C", source.Span{})
	u.AddMethod(cls, "transfer", source.Span{},
		ann(decl.AnnMethod, `"address"`, `"uint256"`),
		ann(decl.AnnSelector, `"0xa9059cbb"`),
	)
	_, m := build(t, u)
	fn := m.Functions[0]
	if fn.Signature != "transfer(address,uint256)" {
		t.Fatalf("signature = %q", fn.Signature)
	}
	if fn.Selector.Hex() != "a9059cbb" {
		t.Fatalf("selector = %s, want override", fn.Selector.Hex())
	}
	if fn.Selector.Hex() == selector.Encode(fn.Signature) {
		t.Fatalf("derived selector used despite override")
	}
}
