package manifest

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"abiforge/internal/abitype"
	"abiforge/internal/collect"
	"abiforge/internal/params"
	"abiforge/internal/selector"
)

// Options configures a Builder.
type Options struct {
	// InputPrefix and OutputPrefix name unnamed descriptors; the 1-based
	// ordinal is appended.
	InputPrefix  string
	OutputPrefix string
}

// DefaultOptions returns the stock naming.
func DefaultOptions() Options {
	return Options{InputPrefix: "param", OutputPrefix: "returnVal"}
}

// Builder resolves assembled records into a Manifest.
type Builder struct {
	opts Options
}

// NewBuilder creates a builder. Empty prefixes fall back to the defaults.
func NewBuilder(opts Options) *Builder {
	def := DefaultOptions()
	if opts.InputPrefix == "" {
		opts.InputPrefix = def.InputPrefix
	}
	if opts.OutputPrefix == "" {
		opts.OutputPrefix = def.OutputPrefix
	}
	return &Builder{opts: opts}
}

// Build resolves every record of asm. It fills Signature and Selector on
// each MethodRecord as a side effect. Any unresolvable spelling aborts the
// whole unit with *UnresolvedTypeError; nothing partial is returned.
func (b *Builder) Build(asm *collect.Assembler) (*Manifest, error) {
	events := make([]Event, 0, len(asm.Events()))
	for _, ev := range asm.Events() {
		e, err := b.event(ev)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	m := &Manifest{
		Functions: make([]Function, 0),
		Events:    events,
	}
	for _, cls := range asm.Classes() {
		records := asm.Records(cls)
		abi := ClassABI{ID: cls, Functions: make([]Function, 0, len(records)), Events: make([]Event, 0)}
		for _, rec := range records {
			abi.Class = rec.ClassName
			fn, err := b.function(rec)
			if err != nil {
				return nil, err
			}
			abi.Functions = append(abi.Functions, fn)
		}
		abi.Events = emittedEvents(abi.Functions, asm.Events(), events)
		m.Functions = append(m.Functions, abi.Functions...)
		m.Classes = append(m.Classes, abi)
	}
	return m, nil
}

func (b *Builder) function(rec *collect.MethodRecord) (Function, error) {
	fail := func(spelling string) error {
		return &UnresolvedTypeError{
			Class:    rec.ClassName,
			Method:   rec.MethodName,
			Spelling: spelling,
			Inner:    failingInner(spelling),
		}
	}
	inputs, bad, ok := b.resolveAll(rec.Params, b.opts.InputPrefix)
	if !ok {
		return Function{}, fail(bad)
	}
	outputs, bad, ok := b.resolveAll(rec.Returns, b.opts.OutputPrefix)
	if !ok {
		return Function{}, fail(bad)
	}

	canonical := make([]string, len(inputs))
	for i, p := range inputs {
		canonical[i] = abitype.Canonical(p.Type)
	}
	rec.Signature = selector.Signature(rec.MethodName, canonical...)
	if rec.SelectorOverride != nil {
		rec.Selector = *rec.SelectorOverride
	} else {
		rec.Selector = selector.Of(rec.Signature)
	}
	Logger().Debug("found function",
		zap.String("class", rec.ClassName),
		zap.String("signature", rec.Signature),
		zap.String("selector", rec.Selector.Literal()))

	role := RoleFunction
	if rec.View {
		role = RoleView
	}
	return Function{
		Name:      rec.MethodName,
		Type:      role,
		Payable:   rec.Payable,
		OnlyOwner: rec.OnlyOwner,
		Inputs:    inputs,
		Outputs:   outputs,
		Signature: rec.Signature,
		Selector:  rec.Selector,
		Emits:     slices.Clone(rec.Emits),
	}, nil
}

func (b *Builder) event(ev collect.EventRecord) (Event, error) {
	values := make([]Param, 0, len(ev.Fields))
	for _, f := range ev.Fields {
		tag, ok := abitype.ResolveTupleOrScalar(f.Type)
		if !ok {
			return Event{}, &UnresolvedTypeError{
				Class:    ev.ClassName,
				Event:    ev.EventName,
				Spelling: f.Type,
				Inner:    failingInner(f.Type),
			}
		}
		values = append(values, Param{Name: f.Name, Type: tag, Hint: abitype.HostHint(tag), Spelling: f.Type})
	}
	return Event{Name: ev.EventName, Values: values, Type: RoleEvent}, nil
}

// resolveAll resolves descriptors in order. On failure it returns the
// offending spelling.
func (b *Builder) resolveAll(ds []params.Descriptor, prefix string) ([]Param, string, bool) {
	out := make([]Param, 0, len(ds))
	for i, d := range ds {
		tag, ok := abitype.ResolveTupleOrScalar(d.Type)
		if !ok {
			return nil, d.Type, false
		}
		name := d.Name
		if !d.Named || name == "" {
			name = fmt.Sprintf("%s%d", prefix, i+1)
		}
		out = append(out, Param{Name: name, Type: tag, Hint: abitype.HostHint(tag), Spelling: d.Type})
	}
	return out, "", true
}

// emittedEvents picks the resolved events the functions name in @emit,
// keeping declaration order.
func emittedEvents(fns []Function, records []collect.EventRecord, resolved []Event) []Event {
	out := make([]Event, 0)
	for i, rec := range records {
		for _, fn := range fns {
			if slices.Contains(fn.Emits, rec.EventName) {
				out = append(out, resolved[i])
				break
			}
		}
	}
	return out
}

// failingInner lists the tuple members of s that have no data type. It is
// nil for scalar spellings.
func failingInner(s string) []string {
	if !abitype.IsTupleString(s) {
		return nil
	}
	return abitype.ValidateInnerTypes(s)
}
