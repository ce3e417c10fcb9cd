package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"abiforge/internal/decl"
	"abiforge/internal/diag"
	"abiforge/internal/dispatch"
	"abiforge/internal/manifest"
	"abiforge/internal/output"
	"abiforge/internal/selector"
)

const tokenJSON = `{
  "unit": "token",
  "files": [{
    "path": "assembly/Token.ts",
    "classes": [
      {"name": "Token", "line": 1, "members": [
        {"kind": "method", "name": "transfer", "internal": "assembly/Token/Token#transfer", "line": 5,
         "annotations": [
           {"name": "method", "args": ["\"address\"", "\"uint256\""], "line": 4},
           {"name": "returns", "args": ["\"bool\""], "line": 3},
           {"name": "emit", "args": ["\"Transfer\"", "\"Burn\""], "line": 2}
         ]},
        {"kind": "method", "name": "execute", "internal": "assembly/Token/Token#execute", "line": 9},
        {"kind": "method", "name": "helper", "internal": "assembly/Token/Token#helper"}
      ]},
      {"name": "TransferEvent", "line": 20, "annotations": [{"name": "event", "args": ["\"Transfer\""], "line": 19}],
       "members": [
        {"kind": "field", "name": "to", "type": "Address"},
        {"kind": "field", "name": "amount", "type": "u256"}
      ]},
      {"name": "Approval", "line": 30, "annotations": [{"name": "event", "line": 29}],
       "members": [{"kind": "field", "name": "spender", "type": "Address"}]}
    ]
  }]
}`

func loadToken(t *testing.T) *decl.Unit {
	t.Helper()
	u, err := decl.LoadJSON(strings.NewReader(tokenJSON))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	return u
}

func baseOptions(sink output.Sink) Options {
	return Options{
		Dispatch:  dispatch.DefaultConfig(),
		Manifest:  manifest.DefaultOptions(),
		Fragments: true,
		Sink:      sink,
	}
}

func TestRunEndToEnd(t *testing.T) {
	sink := output.NewMemSink()
	res, err := Run(context.Background(), loadToken(t), baseOptions(sink))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"abi.json",
		"abis/Token.abi.ts",
		"abis/Token.d.ts",
		"dispatch/Token.execute.ts",
	}
	if got := sink.List(""); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("artifacts = %v", got)
	}

	if len(res.Routes) != 1 || res.Routes[0].Signature != "transfer(address,uint256)" {
		t.Fatalf("routes = %+v", res.Routes)
	}
	if res.Routes[0].Selector != "0x"+selector.Encode("transfer(address,uint256)") {
		t.Fatalf("selector = %s", res.Routes[0].Selector)
	}

	routing, _ := sink.ReadFile("dispatch/Token.execute.ts")
	if !strings.Contains(string(routing), "return this.transfer(calldata);") ||
		!strings.Contains(string(routing), "return super.execute(selector, calldata);") {
		t.Fatalf("routing = %s", routing)
	}

	abi, _ := sink.ReadFile("abi.json")
	if !strings.Contains(string(abi), `"name": "transfer"`) || !strings.Contains(string(abi), `"UINT256"`) {
		t.Fatalf("abi.json = %s", abi)
	}
	if len(res.Timing.Phases) == 0 {
		t.Fatalf("no timings recorded")
	}
}

func TestRunReplacesExistingRouting(t *testing.T) {
	u := loadToken(t)
	res, err := Run(context.Background(), u, baseOptions(nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	id, _ := u.ClassByName("Token")
	members := u.Class(id).Members
	if len(members) != 3 {
		t.Fatalf("members = %d, want 3 (replaced in place)", len(members))
	}
	if members[1].Name != "execute" || !members[1].Synthesized || members[1].Text != res.Fragments[0].Text {
		t.Fatalf("member 1 = %+v", members[1])
	}
	if res.Bag.Count(diag.DspReplacedRouting) != 1 {
		t.Fatalf("replacement not reported")
	}
}

func TestRunEventWarnings(t *testing.T) {
	res, err := Run(context.Background(), loadToken(t), baseOptions(nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Bag.Count(diag.AbiUnusedEvent) != 1 {
		t.Fatalf("unused events = %d, want 1 (Approval)", res.Bag.Count(diag.AbiUnusedEvent))
	}
	if res.Bag.Count(diag.AbiUnknownEmit) != 1 {
		t.Fatalf("unknown emits = %d, want 1 (Burn)", res.Bag.Count(diag.AbiUnknownEmit))
	}
	out := diag.FormatShortDiagnostics(res.Bag.Items(), res.Files, false)
	if !strings.Contains(out, "assembly/Token.ts:29:0") {
		t.Fatalf("formatted diagnostics = %q", out)
	}
}

func TestRunMissingDeclaration(t *testing.T) {
	in := strings.Replace(tokenJSON, `"internal": "assembly/Token/Token#transfer", `, "", 1)
	u, err := decl.LoadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	sink := output.NewMemSink()
	_, err = Run(context.Background(), u, baseOptions(sink))
	var mde *MissingDeclError
	if !errors.As(err, &mde) {
		t.Fatalf("expected MissingDeclError, got %v", err)
	}
	if mde.Class != "Token" || mde.Method != "transfer" {
		t.Fatalf("error = %+v", mde)
	}
	if sink.Len() != 0 {
		t.Fatalf("artifacts written despite fatal error")
	}
	id, _ := u.ClassByName("Token")
	if len(u.Class(id).Members) != 3 || u.Class(id).Members[1].Synthesized {
		t.Fatalf("members touched despite fatal error")
	}
}

func TestRunUnresolvedType(t *testing.T) {
	in := strings.Replace(tokenJSON, `"\"uint256\""`, `"\"uint257\""`, 1)
	u, err := decl.LoadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	sink := output.NewMemSink()
	_, err = Run(context.Background(), u, baseOptions(sink))
	var ute *manifest.UnresolvedTypeError
	if !errors.As(err, &ute) || ute.Spelling != "uint257" || ute.Method != "transfer" {
		t.Fatalf("err = %v", err)
	}
	if sink.Len() != 0 {
		t.Fatalf("artifacts written despite fatal error")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var started []string
	opts := baseOptions(nil)
	opts.Observer = func(ev PhaseEvent) {
		if ev.Status == PhaseStart {
			started = append(started, ev.Name)
		}
	}
	if _, err := Run(ctx, loadToken(t), opts); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if len(started) != 0 {
		t.Fatalf("cancelled run started phases %v", started)
	}
}

func TestRunCancelledAfterCollect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var ended []string
	opts := baseOptions(output.NewMemSink())
	opts.Observer = func(ev PhaseEvent) {
		if ev.Status != PhaseEnd {
			return
		}
		ended = append(ended, ev.Name)
		if ev.Name == PhaseCollect {
			cancel()
		}
	}
	res, err := Run(ctx, loadToken(t), opts)
	if !errors.Is(err, context.Canceled) || res != nil {
		t.Fatalf("res=%v err=%v", res, err)
	}
	if strings.Join(ended, ",") != PhaseCollect {
		t.Fatalf("phases after cancel = %v", ended)
	}
}

func TestRunDeclarationsArtifact(t *testing.T) {
	sink := output.NewMemSink()
	opts := baseOptions(sink)
	opts.Declarations = true
	opts.UnitDirs = true
	if _, err := Run(context.Background(), loadToken(t), opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	data, ok := sink.ReadFile("token/token.decl.json")
	if !ok {
		t.Fatalf("declarations missing: %v", sink.List(""))
	}
	back, err := decl.LoadJSON(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	id, _ := back.ClassByName("Token")
	if m := back.Class(id).Members[1]; !m.Synthesized || m.Kind != decl.MemberOther {
		t.Fatalf("spliced member lost in dump: %+v", m)
	}
}

func writeDump(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRunFileCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeDump(t, dir, "token.json", tokenJSON)
	cache, err := NewDiskCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}

	opts := baseOptions(output.NewMemSink())
	opts.Cache = cache
	first, err := RunFile(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("first RunFile: %v", err)
	}
	if first.Cached {
		t.Fatalf("first run cannot be cached")
	}

	sink := output.NewMemSink()
	opts.Sink = sink
	second, err := RunFile(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("second RunFile: %v", err)
	}
	if !second.Cached || second.Manifest != nil {
		t.Fatalf("second run should come from cache")
	}
	if len(second.Artifacts) != len(first.Artifacts) || sink.Len() != len(first.Artifacts) {
		t.Fatalf("artifacts: cached=%d first=%d written=%d", len(second.Artifacts), len(first.Artifacts), sink.Len())
	}
	if second.Bag.Count(diag.AbiUnusedEvent) != 1 {
		t.Fatalf("diagnostics not restored")
	}
	if len(second.Routes) != 1 || second.Routes[0] != first.Routes[0] {
		t.Fatalf("routes = %+v", second.Routes)
	}

	opts.Dispatch.RoutingName = "route"
	third, err := RunFile(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("third RunFile: %v", err)
	}
	if third.Cached {
		t.Fatalf("changed options must miss the cache")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	opts.Dispatch.RoutingName = ""
	fourth, err := RunFile(context.Background(), path, opts)
	if err != nil || fourth.Cached {
		t.Fatalf("after DropAll: cached=%v err=%v", fourth != nil && fourth.Cached, err)
	}
}

func TestRunAllKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeDump(t, dir, "a.json", strings.Replace(tokenJSON, `"unit": "token"`, `"unit": "a"`, 1))
	b := writeDump(t, dir, "b.json", strings.Replace(tokenJSON, `"unit": "token"`, `"unit": "b"`, 1))

	sink := output.NewMemSink()
	opts := baseOptions(sink)
	opts.UnitDirs = true
	results, err := RunAll(context.Background(), []string{b, a}, opts, 2)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if len(results) != 2 || results[0].Unit != "b" || results[1].Unit != "a" {
		t.Fatalf("results out of order")
	}
	if _, ok := sink.ReadFile("a/abi.json"); !ok {
		t.Fatalf("a/abi.json missing: %v", sink.List(""))
	}
}

func TestRunAllPropagatesFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeDump(t, dir, "good.json", tokenJSON)
	bad := writeDump(t, dir, "bad.json", `{"files": [`)
	_, err := RunAll(context.Background(), []string{good, bad}, baseOptions(nil), 1)
	var le *decl.LoadError
	if !errors.As(err, &le) || le.Path != bad {
		t.Fatalf("err = %v", err)
	}
}

func TestObserverSeesPhases(t *testing.T) {
	var seen []string
	opts := baseOptions(output.NewMemSink())
	opts.Observer = func(ev PhaseEvent) {
		if ev.Status == PhaseEnd {
			seen = append(seen, ev.Name)
		}
	}
	if _, err := Run(context.Background(), loadToken(t), opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{PhaseCollect, PhaseResolve, PhaseManifest, PhaseDispatch, PhaseEmit}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Fatalf("phases = %v", seen)
	}
}
