package driver

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"abiforge/internal/collect"
	"abiforge/internal/decl"
	"abiforge/internal/diag"
	"abiforge/internal/dispatch"
	"abiforge/internal/manifest"
	"abiforge/internal/observ"
	"abiforge/internal/output"
	"abiforge/internal/source"
)

// Options configures one build.
type Options struct {
	Dispatch dispatch.Config
	Manifest manifest.Options

	IncludeLibrary bool
	// AbiFile names the unit manifest artifact; empty means abi.json.
	AbiFile string
	// Fragments emits abis/<Class>.abi.ts and abis/<Class>.d.ts.
	Fragments bool
	// Declarations emits the spliced declaration tree as <unit>.decl.json.
	Declarations bool
	// UnitDirs prefixes every artifact with "<unit>/", for multi-unit builds.
	UnitDirs bool

	MaxDiagnostics int
	Sink           output.Sink
	Cache          *DiskCache
	Observer       PhaseObserver
}

// Artifact is one generated file.
type Artifact struct {
	Name string
	Data []byte
}

// RouteSummary is one installed route, kept for CLI summaries and cache
// entries.
type RouteSummary struct {
	Class     string `msgpack:"class"`
	Signature string `msgpack:"signature"`
	Selector  string `msgpack:"selector"`
	Target    string `msgpack:"target"`
}

// Result is the outcome of building one unit.
type Result struct {
	Unit string
	// Decls and Manifest are nil when the result came from the cache.
	Decls     *decl.Unit
	Manifest  *manifest.Manifest
	Fragments []dispatch.Fragment
	Routes    []RouteSummary
	Artifacts []Artifact

	Bag *diag.Bag
	// Files resolves the spans in Bag.
	Files  *source.Files
	Timing observ.Report
	Cached bool
}

// Run executes the whole pass over one unit and writes artifacts to the
// configured sink. Fatal conditions (*MissingDeclError,
// *manifest.UnresolvedTypeError) abort before any artifact is produced.
func Run(ctx context.Context, unit *decl.Unit, opts Options) (*Result, error) {
	r := &runner{
		ctx:   ctx,
		unit:  unit,
		opts:  opts,
		timer: observ.NewTimer(),
		bag:   diag.NewBag(opts.MaxDiagnostics),
	}
	res, err := r.run()
	if err != nil {
		return nil, fmt.Errorf("unit %s: %w", unit.Name, err)
	}
	if opts.Sink != nil {
		if err := r.phase(PhaseEmit, func() error { return writeArtifacts(opts.Sink, res.Artifacts) }); err != nil {
			return nil, fmt.Errorf("unit %s: %w", unit.Name, err)
		}
	}
	res.Timing = r.timer.Report()
	return res, nil
}

type runner struct {
	ctx   context.Context
	unit  *decl.Unit
	opts  Options
	timer *observ.Timer
	bag   *diag.Bag
}

func (r *runner) reporter() diag.Reporter {
	return diag.NewDedupReporter(diag.BagReporter{Bag: r.bag})
}

func (r *runner) phase(name string, fn func() error) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	if r.opts.Observer != nil {
		r.opts.Observer(PhaseEvent{Unit: r.unit.Name, Name: name, Status: PhaseStart})
	}
	start := time.Now()
	err := r.timer.Track(name, fn)
	if r.opts.Observer != nil {
		r.opts.Observer(PhaseEvent{Unit: r.unit.Name, Name: name, Status: PhaseEnd, Elapsed: time.Since(start)})
	}
	return err
}

func (r *runner) run() (*Result, error) {
	rep := r.reporter()
	asm := collect.New(r.unit, collect.Options{Reporter: rep, IncludeLibrary: r.opts.IncludeLibrary})
	if err := r.phase(PhaseCollect, func() error {
		asm.Collect()
		return nil
	}); err != nil {
		return nil, err
	}

	if err := r.phase(PhaseResolve, func() error { return checkResolved(asm) }); err != nil {
		return nil, err
	}

	var m *manifest.Manifest
	err := r.phase(PhaseManifest, func() error {
		var err error
		m, err = manifest.NewBuilder(r.opts.Manifest).Build(asm)
		if err != nil {
			return err
		}
		checkEvents(asm, rep)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Unit: r.unit.Name, Decls: r.unit, Manifest: m, Bag: r.bag, Files: r.unit.Files}
	err = r.phase(PhaseDispatch, func() error {
		return r.installRouting(asm, rep, res)
	})
	if err != nil {
		return nil, err
	}

	arts, err := r.render(m, res.Fragments)
	if err != nil {
		return nil, err
	}
	res.Artifacts = arts
	r.bag.Sort()
	return res, nil
}

// checkResolved fails on the first annotated method the host could not
// resolve, in collection order.
func checkResolved(asm *collect.Assembler) error {
	u := asm.Unit()
	for _, cls := range asm.Classes() {
		for _, rec := range asm.Records(cls) {
			if meth := u.Method(rec.Decl); meth == nil || meth.Internal == "" {
				return &MissingDeclError{Unit: u.Name, Class: rec.ClassName, Method: rec.MethodName}
			}
		}
	}
	return nil
}

// checkEvents warns about declared events no method emits and about @emit
// names that match no declared event.
func checkEvents(asm *collect.Assembler, rep diag.Reporter) {
	emitted := map[string]bool{}
	for _, cls := range asm.Classes() {
		for _, rec := range asm.Records(cls) {
			for _, name := range rec.Emits {
				emitted[name] = true
				if _, ok := asm.Event(name); !ok {
					diag.ReportWarning(rep, diag.AbiUnknownEmit, rec.Span,
						fmt.Sprintf("%s.%s emits %q, which is not a declared event", rec.ClassName, rec.MethodName, name)).Emit()
				}
			}
		}
	}
	for _, ev := range asm.Events() {
		if !emitted[ev.EventName] {
			diag.ReportWarning(rep, diag.AbiUnusedEvent, ev.Span,
				fmt.Sprintf("event %q is declared but never emitted", ev.EventName)).Emit()
		}
	}
}

func (r *runner) installRouting(asm *collect.Assembler, rep diag.Reporter, res *Result) error {
	for _, cls := range asm.Classes() {
		c := r.unit.Class(cls)
		frag, err := dispatch.Synthesize(c.Name, asm.Records(cls), r.opts.Dispatch)
		if err != nil {
			return err
		}
		for _, sh := range frag.Shadowed {
			Logger().Debug("selector shadowed",
				zap.String("class", c.Name),
				zap.String("signature", sh.Signature),
				zap.String("selector", sh.Selector.Literal()))
		}
		members, spliced := dispatch.Splice(c.Members, frag)
		if spliced.Replaced {
			Logger().Info("overwriting existing routing", zap.String("class", c.Name), zap.String("name", frag.Name))
			diag.ReportInfo(rep, diag.DspReplacedRouting, c.Span,
				fmt.Sprintf("existing %s in %s replaced by the synthesized routing", frag.Name, c.Name)).Emit()
		} else {
			Logger().Info("injecting routing", zap.String("class", c.Name), zap.String("name", frag.Name))
		}
		r.unit.SetMembers(cls, members)
		res.Fragments = append(res.Fragments, frag)
		for _, route := range frag.Routes {
			res.Routes = append(res.Routes, RouteSummary{
				Class:     c.Name,
				Signature: route.Signature,
				Selector:  route.Selector.Literal(),
				Target:    route.Target,
			})
		}
	}
	return nil
}

func (r *runner) render(m *manifest.Manifest, frags []dispatch.Fragment) ([]Artifact, error) {
	prefix := ""
	if r.opts.UnitDirs {
		prefix = r.unit.Name + "/"
	}
	abiFile := r.opts.AbiFile
	if abiFile == "" {
		abiFile = "abi.json"
	}

	var arts []Artifact
	var buf bytes.Buffer
	if err := m.WriteJSON(&buf); err != nil {
		return nil, err
	}
	arts = append(arts, Artifact{Name: prefix + abiFile, Data: slices.Clone(buf.Bytes())})

	if r.opts.Fragments {
		for i := range m.Classes {
			abi := &m.Classes[i]
			arts = append(arts,
				Artifact{Name: prefix + "abis/" + abi.Class + ".abi.ts", Data: []byte(manifest.RenderAbiTS(abi))},
				Artifact{Name: prefix + "abis/" + abi.Class + ".d.ts", Data: []byte(manifest.RenderDTS(abi))},
			)
		}
	}
	for _, frag := range frags {
		arts = append(arts, Artifact{
			Name: prefix + "dispatch/" + frag.Class + "." + frag.Name + ".ts",
			Data: []byte(frag.Text + "\n"),
		})
	}
	if r.opts.Declarations {
		buf.Reset()
		if err := r.unit.Dump().WriteJSON(&buf); err != nil {
			return nil, fmt.Errorf("encode declarations: %w", err)
		}
		arts = append(arts, Artifact{Name: prefix + r.unit.Name + ".decl.json", Data: slices.Clone(buf.Bytes())})
	}
	return arts, nil
}

func writeArtifacts(sink output.Sink, arts []Artifact) error {
	for _, a := range arts {
		if err := sink.WriteFile(a.Name, a.Data); err != nil {
			return fmt.Errorf("write %s: %w", a.Name, err)
		}
		Logger().Debug("wrote artifact", zap.String("name", a.Name), zap.Int("bytes", len(a.Data)))
	}
	return nil
}
