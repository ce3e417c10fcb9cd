package collect

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"abiforge/internal/decl"
	"abiforge/internal/diag"
	"abiforge/internal/params"
	"abiforge/internal/selector"
	"abiforge/internal/source"
)

// Options configures an Assembler.
type Options struct {
	// Reporter receives non-fatal findings. Nil discards them.
	Reporter diag.Reporter
	// IncludeLibrary visits classes that came from dependency sources.
	IncludeLibrary bool
}

// Assembler merges the annotation sites of one unit into per-declaration
// method records and per-class event records. It is owned by a single
// goroutine for the lifetime of one unit.
type Assembler struct {
	unit *decl.Unit
	opts Options

	records    map[decl.MethodID]*MethodRecord
	byClass    map[decl.ClassID][]decl.MethodID
	classOrder []decl.ClassID

	events     []EventRecord
	eventIndex map[string]int
}

// New creates an assembler over unit.
func New(unit *decl.Unit, opts Options) *Assembler {
	return &Assembler{
		unit:       unit,
		opts:       opts,
		records:    make(map[decl.MethodID]*MethodRecord),
		byClass:    make(map[decl.ClassID][]decl.MethodID),
		eventIndex: make(map[string]int),
	}
}

// Unit returns the unit being assembled.
func (a *Assembler) Unit() *decl.Unit { return a.unit }

// Collect walks every class of the unit in declaration order.
func (a *Assembler) Collect() {
	for _, id := range a.unit.Classes() {
		cls := a.unit.Class(id)
		if cls.Library && !a.opts.IncludeLibrary {
			continue
		}
		a.VisitClass(id)
	}
	Logger().Debug("collected",
		zap.String("unit", a.unit.Name),
		zap.Int("classes", len(a.classOrder)),
		zap.Int("methods", len(a.records)),
		zap.Int("events", len(a.events)))
}

// VisitClass collects one class: its event marker and the annotations of
// each method member.
func (a *Assembler) VisitClass(id decl.ClassID) {
	cls := a.unit.Class(id)
	if cls == nil {
		return
	}
	var event *decl.Annotation
	for i := range cls.Annotations {
		ann := &cls.Annotations[i]
		spec, ok := decl.LookupAnnotation(ann.Name)
		if !ok {
			continue
		}
		if !spec.Allows(decl.TargetClass) {
			a.warnTarget(ann, "class "+cls.Name)
			continue
		}
		if ann.Name == decl.AnnEvent {
			if event != nil {
				a.warnDuplicate(ann, event.Span)
			}
			event = ann
		}
	}
	if event != nil {
		a.collectEvent(id, event)
	}

	for _, m := range cls.Members {
		if m.Kind == decl.MemberMethod {
			a.VisitMethod(m.Method)
		}
	}
}

// VisitMethod applies every annotation on one method declaration in source
// order.
func (a *Assembler) VisitMethod(id decl.MethodID) {
	meth := a.unit.Method(id)
	if meth == nil {
		return
	}
	var (
		lastMethod  *decl.Annotation
		lastReturns *decl.Annotation
		deferred    []*decl.Annotation
	)
	for i := range meth.Annotations {
		ann := &meth.Annotations[i]
		spec, ok := decl.LookupAnnotation(ann.Name)
		if !ok {
			continue
		}
		if !spec.Allows(decl.TargetMethod) {
			a.warnTarget(ann, "method "+meth.Name)
			continue
		}
		switch ann.Name {
		case decl.AnnMethod:
			if lastMethod != nil {
				a.warnDuplicate(ann, lastMethod.Span)
			}
			lastMethod = ann
			a.ApplyMethod(id, ann.Args, ann.Span)
		case decl.AnnReturns:
			if lastReturns != nil {
				a.warnDuplicate(ann, lastReturns.Span)
			}
			lastReturns = ann
			a.ApplyReturns(id, ann.Args, ann.Span)
		default:
			deferred = append(deferred, ann)
		}
	}
	for _, ann := range deferred {
		rec := a.records[id]
		if rec == nil {
			diag.ReportWarning(a.opts.Reporter, diag.AbiAnnotationTarget, ann.Span,
				fmt.Sprintf("@%s on %s has no effect without @%s or @%s", ann.Name, meth.Name, decl.AnnMethod, decl.AnnReturns)).Emit()
			continue
		}
		switch ann.Name {
		case decl.AnnEmit:
			for _, arg := range ann.Args {
				name := params.Unquote(trimSpace(arg))
				if name != "" && !slices.Contains(rec.Emits, name) {
					rec.Emits = append(rec.Emits, name)
				}
			}
		case decl.AnnView:
			rec.View = true
		case decl.AnnPayable:
			rec.Payable = true
		case decl.AnnOnlyOwner:
			rec.OnlyOwner = true
		case decl.AnnSelector:
			a.applySelector(rec, ann)
		}
	}
}

func (a *Assembler) applySelector(rec *MethodRecord, ann *decl.Annotation) {
	if len(ann.Args) != 1 {
		diag.ReportWarning(a.opts.Reporter, diag.AbiBadSelector, ann.Span,
			fmt.Sprintf("@%s on %s takes exactly one argument, got %d", ann.Name, rec.DeclaredName, len(ann.Args))).Emit()
		return
	}
	sel, err := selector.Parse(params.Unquote(trimSpace(ann.Args[0])))
	if err != nil {
		diag.ReportWarning(a.opts.Reporter, diag.AbiBadSelector, ann.Span,
			fmt.Sprintf("@%s on %s: %v", ann.Name, rec.DeclaredName, err)).Emit()
		return
	}
	rec.SelectorOverride = &sel
}

// ApplyMethod merges a parameter annotation into the record of id. It owns
// MethodName and Params and leaves every other field alone.
func (a *Assembler) ApplyMethod(id decl.MethodID, rawArgs []string, sp source.Span) *MethodRecord {
	rec := a.record(id, sp)
	if rec == nil {
		return nil
	}
	c := params.Classify(unquoteAll(rawArgs))
	a.reportFallbacks(c.Fallbacks, sp)
	rec.MethodName = rec.DeclaredName
	if c.Kind == params.NameOverride {
		rec.MethodName = c.Name
	}
	rec.Params = c.Params
	rec.hasParams = true
	return rec
}

// ApplyReturns merges a return annotation into the record of id. It owns
// Returns only; a record created here is named after the declaration.
func (a *Assembler) ApplyReturns(id decl.MethodID, rawArgs []string, sp source.Span) *MethodRecord {
	rec := a.record(id, sp)
	if rec == nil {
		return nil
	}
	out, fallbacks := params.ParseReturns(unquoteAll(rawArgs))
	a.reportFallbacks(fallbacks, sp)
	rec.Returns = out
	rec.hasReturns = true
	return rec
}

func (a *Assembler) record(id decl.MethodID, sp source.Span) *MethodRecord {
	if rec, ok := a.records[id]; ok {
		return rec
	}
	meth := a.unit.Method(id)
	if meth == nil {
		return nil
	}
	cls := a.unit.Class(meth.Class)
	rec := &MethodRecord{
		MethodName:   meth.Name,
		DeclaredName: meth.Name,
		Decl:         id,
		Class:        meth.Class,
		ClassName:    cls.Name,
		Span:         sp,
	}
	a.records[id] = rec
	if _, seen := a.byClass[meth.Class]; !seen {
		a.classOrder = append(a.classOrder, meth.Class)
	}
	a.byClass[meth.Class] = append(a.byClass[meth.Class], id)
	return rec
}

func (a *Assembler) collectEvent(id decl.ClassID, ann *decl.Annotation) {
	cls := a.unit.Class(id)
	name := cls.Name
	if len(ann.Args) > 0 {
		if n := params.Unquote(trimSpace(ann.Args[0])); n != "" {
			name = n
		}
	}
	ev := EventRecord{EventName: name, Class: id, ClassName: cls.Name, Span: ann.Span}
	for _, m := range cls.Members {
		if m.Kind != decl.MemberField {
			continue
		}
		f := a.unit.Field(m.Field)
		if f == nil || f.Inherited || f.Type == "" {
			continue
		}
		ev.Fields = append(ev.Fields, EventField{Name: f.Name, Type: f.Type, Span: f.Span})
	}
	if len(ev.Fields) == 0 {
		diag.ReportWarning(a.opts.Reporter, diag.AbiEmptyEvent, ann.Span,
			fmt.Sprintf("event %q declares no fields", name)).Emit()
	}
	if prev, ok := a.eventIndex[name]; ok {
		diag.ReportWarning(a.opts.Reporter, diag.AbiDuplicateAnnotation, ann.Span,
			fmt.Sprintf("event %q is declared twice; the later declaration wins", name)).
			WithNote(a.events[prev].Span, "first declared here").
			Emit()
		a.events[prev] = ev
		return
	}
	a.eventIndex[name] = len(a.events)
	a.events = append(a.events, ev)
}

// Classes returns the classes that own at least one method record, in the
// order their first record was created.
func (a *Assembler) Classes() []decl.ClassID {
	return a.classOrder
}

// Records returns the records of cls in collection order.
func (a *Assembler) Records(cls decl.ClassID) []*MethodRecord {
	ids := a.byClass[cls]
	out := make([]*MethodRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, a.records[id])
	}
	return out
}

// Record returns the record for a method declaration.
func (a *Assembler) Record(id decl.MethodID) (*MethodRecord, bool) {
	rec, ok := a.records[id]
	return rec, ok
}

// Events returns event records in declaration order.
func (a *Assembler) Events() []EventRecord {
	return a.events
}

// Event finds an event record by its event name.
func (a *Assembler) Event(name string) (*EventRecord, bool) {
	idx, ok := a.eventIndex[name]
	if !ok {
		return nil, false
	}
	return &a.events[idx], true
}

func (a *Assembler) reportFallbacks(fallbacks []*params.ParseError, sp source.Span) {
	for _, pe := range fallbacks {
		diag.ReportInfo(a.opts.Reporter, diag.AbiNamedParamFallback, sp, pe.Error()).Emit()
	}
}

func (a *Assembler) warnTarget(ann *decl.Annotation, where string) {
	diag.ReportWarning(a.opts.Reporter, diag.AbiAnnotationTarget, ann.Span,
		fmt.Sprintf("@%s is not allowed on %s", ann.Name, where)).Emit()
}

func (a *Assembler) warnDuplicate(ann *decl.Annotation, first source.Span) {
	diag.ReportWarning(a.opts.Reporter, diag.AbiDuplicateAnnotation, ann.Span,
		fmt.Sprintf("@%s repeated; the later one wins", ann.Name)).
		WithNote(first, "previous one here").
		Emit()
}
