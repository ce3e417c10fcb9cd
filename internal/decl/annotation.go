package decl

import (
	"slices"
	"strings"

	"abiforge/internal/source"
)

// Annotation is one decorator site as the host saw it. Args hold the raw,
// still-quoted argument text in source order.
type Annotation struct {
	Name string
	Args []string
	Span source.Span
}

// TargetMask describes what an annotation may decorate.
type TargetMask uint8

const (
	TargetNone   TargetMask = 0
	TargetMethod TargetMask = 1 << iota
	TargetClass
)

// AnnotationSpec describes an annotation understood by the pass.
type AnnotationSpec struct {
	Name    string
	Targets TargetMask
	// Flag annotations take no arguments; arguments are ignored.
	Flag bool
}

// Allows reports whether the annotation can be applied to target.
func (spec AnnotationSpec) Allows(target TargetMask) bool {
	return spec.Targets&target != 0
}

// Names of the annotations the pass reacts to.
const (
	AnnMethod    = "method"
	AnnReturns   = "returns"
	AnnEmit      = "emit"
	AnnView      = "view"
	AnnPayable   = "payable"
	AnnOnlyOwner = "onlyOwner"
	AnnSelector  = "selector"
	AnnEvent     = "event"
)

var annotationRegistry = map[string]AnnotationSpec{
	AnnMethod:    {Name: AnnMethod, Targets: TargetMethod},
	AnnReturns:   {Name: AnnReturns, Targets: TargetMethod},
	AnnEmit:      {Name: AnnEmit, Targets: TargetMethod},
	AnnView:      {Name: AnnView, Targets: TargetMethod, Flag: true},
	AnnPayable:   {Name: AnnPayable, Targets: TargetMethod, Flag: true},
	AnnOnlyOwner: {Name: AnnOnlyOwner, Targets: TargetMethod, Flag: true},
	AnnSelector:  {Name: AnnSelector, Targets: TargetMethod},
	AnnEvent:     {Name: AnnEvent, Targets: TargetClass},
}

// LookupAnnotation returns the spec for name. Names are case-sensitive,
// as decorator names are in the host language.
func LookupAnnotation(name string) (AnnotationSpec, bool) {
	spec, ok := annotationRegistry[name]
	return spec, ok
}

// AnnotationSpecs returns all registered specs sorted by name.
func AnnotationSpecs() []AnnotationSpec {
	out := make([]AnnotationSpec, 0, len(annotationRegistry))
	for _, spec := range annotationRegistry {
		out = append(out, spec)
	}
	slices.SortFunc(out, func(a, b AnnotationSpec) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
