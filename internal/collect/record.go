package collect

import (
	"abiforge/internal/decl"
	"abiforge/internal/params"
	"abiforge/internal/selector"
	"abiforge/internal/source"
)

// MethodRecord is everything the annotations on one method declaration say
// about its ABI. Signature and Selector stay empty until the manifest
// builder resolves the record.
type MethodRecord struct {
	// MethodName is the externally visible name, after any override.
	MethodName string
	// DeclaredName is the implementation the routing procedure calls.
	DeclaredName string

	Params  []params.Descriptor
	Returns []params.Descriptor

	Decl      decl.MethodID
	Class     decl.ClassID
	ClassName string
	Span      source.Span

	Emits     []string
	View      bool
	Payable   bool
	OnlyOwner bool

	// SelectorOverride, when set by @selector, replaces the derived selector.
	SelectorOverride *selector.Selector

	Signature string
	Selector  selector.Selector

	hasParams  bool
	hasReturns bool
}

// HasParamAnnotation reports whether a parameter annotation contributed to
// the record.
func (r *MethodRecord) HasParamAnnotation() bool { return r.hasParams }

// HasReturnAnnotation reports whether a return annotation contributed to the
// record.
func (r *MethodRecord) HasReturnAnnotation() bool { return r.hasReturns }

// Resolved reports whether the manifest builder has filled the selector.
func (r *MethodRecord) Resolved() bool { return r.Signature != "" }

// EventField is one data field of an event class. Type is the raw spelling.
type EventField struct {
	Name string
	Type string
	Span source.Span
}

// EventRecord describes an event-marked class.
type EventRecord struct {
	EventName string
	Class     decl.ClassID
	ClassName string
	Fields    []EventField
	Span      source.Span
}
