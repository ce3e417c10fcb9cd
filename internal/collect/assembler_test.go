package collect

import (
	"testing"

	"abiforge/internal/decl"
	"abiforge/internal/diag"
	"abiforge/internal/source"
)

func ann(name string, args ...string) decl.Annotation {
	return decl.Annotation{Name: name, Args: args}
}

func collectUnit(t *testing.T, u *decl.Unit) (*Assembler, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(0)
	a := New(u, Options{Reporter: diag.BagReporter{Bag: bag}})
	a.Collect()
	return a, bag
}

func TestParameterListKeepsDeclaredName(t *testing.T) {
	u := decl.NewUnit("t")
	cls := u.AddClass("Token", source.Span{})
	m := u.AddMethod(cls, "transfer", source.Span{}, ann(decl.AnnMethod, `"address"`, `"uint256"`))

	a, _ := collectUnit(t, u)
	rec, ok := a.Record(m)
	if !ok {
		t.Fatalf("no record for transfer")
	}
	if rec.MethodName != "transfer" || rec.DeclaredName != "transfer" {
		t.Fatalf("names = %q/%q", rec.MethodName, rec.DeclaredName)
	}
	if len(rec.Params) != 2 || rec.Params[0].Type != "address" || rec.Params[1].Type != "uint256" {
		t.Fatalf("params = %+v", rec.Params)
	}
	if !rec.HasParamAnnotation() || rec.HasReturnAnnotation() {
		t.Fatalf("annotation flags wrong")
	}
}

func TestNameOverride(t *testing.T) {
	u := decl.NewUnit("t")
	cls := u.AddClass("Token", source.Span{})
	m := u.AddMethod(cls, "doMint", source.Span{},
		ann(decl.AnnMethod, `"mint"`, `"{ name: 'to', type: 'address' }"`, `"u256"`))

	a, _ := collectUnit(t, u)
	rec, _ := a.Record(m)
	if rec.MethodName != "mint" || rec.DeclaredName != "doMint" {
		t.Fatalf("names = %q/%q", rec.MethodName, rec.DeclaredName)
	}
	if len(rec.Params) != 2 || !rec.Params[0].Named || rec.Params[0].Name != "to" {
		t.Fatalf("params = %+v", rec.Params)
	}
}

func TestMergeOrderIndependence(t *testing.T) {
	tests := []struct {
		name  string
		order []decl.Annotation
	}{
		{"method first", []decl.Annotation{
			ann(decl.AnnMethod, `"renamed"`, `"address"`),
			ann(decl.AnnReturns, `"bool"`),
		}},
		{"returns first", []decl.Annotation{
			ann(decl.AnnReturns, `"bool"`),
			ann(decl.AnnMethod, `"renamed"`, `"address"`),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := decl.NewUnit("t")
			cls := u.AddClass("C", source.Span{})
			m := u.AddMethod(cls, "impl", source.Span{}, tt.order...)
			a, _ := collectUnit(t, u)
			rec, _ := a.Record(m)
			if rec.MethodName != "renamed" {
				t.Fatalf("MethodName = %q", rec.MethodName)
			}
			if len(rec.Params) != 1 || len(rec.Returns) != 1 || rec.Returns[0].Type != "bool" {
				t.Fatalf("params=%+v returns=%+v", rec.Params, rec.Returns)
			}
		})
	}
}

func TestReturnsOnlyDefaultsToDeclaredName(t *testing.T) {
	u := decl.NewUnit("t")
	cls := u.AddClass("C", source.Span{})
	m := u.AddMethod(cls, "totalSupply", source.Span{}, ann(decl.AnnReturns, `"uint256"`))
	a, _ := collectUnit(t, u)
	rec, ok := a.Record(m)
	if !ok || rec.MethodName != "totalSupply" || len(rec.Params) != 0 {
		t.Fatalf("record = %+v", rec)
	}
}

func TestFlagsAndEmits(t *testing.T) {
	u := decl.NewUnit("t")
	cls := u.AddClass("C", source.Span{})
	m := u.AddMethod(cls, "mint", source.Span{},
		ann(decl.AnnView),
		ann(decl.AnnMethod, `"address"`),
		ann(decl.AnnPayable),
		ann(decl.AnnOnlyOwner),
		ann(decl.AnnEmit, `"Minted"`, `"Transfer"`, `"Minted"`),
	)
	a, _ := collectUnit(t, u)
	rec, _ := a.Record(m)
	if !rec.View || !rec.Payable || !rec.OnlyOwner {
		t.Fatalf("flags = %v %v %v", rec.View, rec.Payable, rec.OnlyOwner)
	}
	if len(rec.Emits) != 2 || rec.Emits[0] != "Minted" || rec.Emits[1] != "Transfer" {
		t.Fatalf("emits = %v", rec.Emits)
	}
}

func TestFlagWithoutRecordWarns(t *testing.T) {
	u := decl.NewUnit("t")
	cls := u.AddClass("C", source.Span{})
	m := u.AddMethod(cls, "helper", source.Span{}, ann(decl.AnnView))
	a, bag := collectUnit(t, u)
	if _, ok := a.Record(m); ok {
		t.Fatalf("@view alone must not create a record")
	}
	if bag.Count(diag.AbiAnnotationTarget) != 1 {
		t.Fatalf("expected a target warning, got %d", bag.Len())
	}
}

func TestUnknownAnnotationsIgnored(t *testing.T) {
	u := decl.NewUnit("t")
	cls := u.AddClass("C", source.Span{}, ann("inline"))
	u.AddMethod(cls, "f", source.Span{}, ann("operator", `"+"`))
	a, bag := collectUnit(t, u)
	if len(a.Classes()) != 0 || bag.Len() != 0 {
		t.Fatalf("unknown annotations should be silent: classes=%d diags=%d", len(a.Classes()), bag.Len())
	}
}

func TestMisplacedAnnotations(t *testing.T) {
	u := decl.NewUnit("t")
	cls := u.AddClass("C", source.Span{}, ann(decl.AnnMethod))
	u.AddMethod(cls, "f", source.Span{}, ann(decl.AnnEvent, `"X"`), ann(decl.AnnMethod))
	_, bag := collectUnit(t, u)
	if got := bag.Count(diag.AbiAnnotationTarget); got != 2 {
		t.Fatalf("target warnings = %d, want 2", got)
	}
}

func TestDuplicateMethodAnnotationLaterWins(t *testing.T) {
	u := decl.NewUnit("t")
	cls := u.AddClass("C", source.Span{})
	m := u.AddMethod(cls, "f", source.Span{},
		ann(decl.AnnMethod, `"address"`),
		ann(decl.AnnMethod, `"g"`, `"bool"`),
	)
	a, bag := collectUnit(t, u)
	rec, _ := a.Record(m)
	if rec.MethodName != "g" || len(rec.Params) != 1 || rec.Params[0].Type != "bool" {
		t.Fatalf("record = %+v", rec)
	}
	if bag.Count(diag.AbiDuplicateAnnotation) != 1 {
		t.Fatalf("duplicate not reported")
	}
}

func TestCollectionOrder(t *testing.T) {
	u := decl.NewUnit("t")
	b := u.AddClass("B", source.Span{})
	a := u.AddClass("A", source.Span{})
	u.AddMethod(b, "two", source.Span{}, ann(decl.AnnMethod))
	u.AddMethod(a, "x", source.Span{}, ann(decl.AnnMethod))
	u.AddMethod(b, "plain", source.Span{})
	u.AddMethod(b, "three", source.Span{}, ann(decl.AnnReturns, `"bool"`))

	asm, _ := collectUnit(t, u)
	classes := asm.Classes()
	if len(classes) != 2 || classes[0] != b || classes[1] != a {
		t.Fatalf("class order = %v", classes)
	}
	recs := asm.Records(b)
	if len(recs) != 2 || recs[0].MethodName != "two" || recs[1].MethodName != "three" {
		t.Fatalf("records of B = %+v", recs)
	}
}

func TestNamedParamFallbackReported(t *testing.T) {
	u := decl.NewUnit("t")
	cls := u.AddClass("C", source.Span{})
	m := u.AddMethod(cls, "f", source.Span{}, ann(decl.AnnMethod, `"address"`, `"{ name: 'x' }"`))
	a, bag := collectUnit(t, u)
	rec, _ := a.Record(m)
	if len(rec.Params) != 2 || rec.Params[1].Named {
		t.Fatalf("params = %+v", rec.Params)
	}
	if bag.Count(diag.AbiNamedParamFallback) != 1 {
		t.Fatalf("fallback not reported")
	}
}

func TestEventCollection(t *testing.T) {
	u := decl.NewUnit("t")
	ev := u.AddClass("TransferEvent", source.Span{}, ann(decl.AnnEvent, `"Transfer"`))
	u.AddField(ev, "from", "Address", source.Span{})
	inh := u.AddField(ev, "base", "u8", source.Span{})
	u.Field(inh).Inherited = true
	u.AddMethod(ev, "encode", source.Span{})
	u.AddField(ev, "amount", "u256", source.Span{})

	plain := u.AddClass("Approval", source.Span{}, ann(decl.AnnEvent))
	u.AddField(plain, "owner", "Address", source.Span{})

	a, _ := collectUnit(t, u)
	events := a.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d", len(events))
	}
	got := events[0]
	if got.EventName != "Transfer" || got.ClassName != "TransferEvent" {
		t.Fatalf("event = %+v", got)
	}
	if len(got.Fields) != 2 || got.Fields[0].Name != "from" || got.Fields[1].Name != "amount" {
		t.Fatalf("fields = %+v", got.Fields)
	}
	if _, ok := a.Event("Approval"); !ok {
		t.Fatalf("event name should default to the class name")
	}
}

func TestEmptyEventWarns(t *testing.T) {
	u := decl.NewUnit("t")
	u.AddClass("Ping", source.Span{}, ann(decl.AnnEvent))
	a, bag := collectUnit(t, u)
	if len(a.Events()) != 1 || bag.Count(diag.AbiEmptyEvent) != 1 {
		t.Fatalf("events=%d diags=%d", len(a.Events()), bag.Len())
	}
}

func TestLibraryClassesSkipped(t *testing.T) {
	u := decl.NewUnit("t")
	lib := u.AddClass("OP_NET", source.Span{})
	u.Class(lib).Library = true
	u.AddMethod(lib, "deployer", source.Span{}, ann(decl.AnnMethod))

	a, _ := collectUnit(t, u)
	if len(a.Classes()) != 0 {
		t.Fatalf("library class was visited")
	}

	withLib := New(u, Options{IncludeLibrary: true})
	withLib.Collect()
	if len(withLib.Classes()) != 1 {
		t.Fatalf("IncludeLibrary ignored")
	}
}

func TestSelectorOverride(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		want  string
		warns int
	}{
		{"prefixed", []string{`"0xdeadbeef"`}, "deadbeef", 0},
		{"bare", []string{`'01020304'`}, "01020304", 0},
		{"short", []string{`"0xdead"`}, "", 1},
		{"not hex", []string{`"0xzzzzzzzz"`}, "", 1},
		{"no argument", nil, "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := decl.NewUnit("t")
			cls := u.AddClass("C", source.Span{})
			m := u.AddMethod(cls, "mint", source.Span{},
				ann(decl.AnnMethod, `"address"`),
				ann(decl.AnnSelector, tt.args...),
			)
			a, bag := collectUnit(t, u)
			rec, _ := a.Record(m)
			if bag.Count(diag.AbiBadSelector) != tt.warns {
				t.Fatalf("warnings = %d, want %d", bag.Count(diag.AbiBadSelector), tt.warns)
			}
			if tt.want == "" {
				if rec.SelectorOverride != nil {
					t.Fatalf("override set from bad input: %s", rec.SelectorOverride.Hex())
				}
				return
			}
			if rec.SelectorOverride == nil || rec.SelectorOverride.Hex() != tt.want {
				t.Fatalf("override = %v, want %s", rec.SelectorOverride, tt.want)
			}
		})
	}
}
