package dispatch

import (
	"fmt"
	"strings"

	"abiforge/internal/collect"
	"abiforge/internal/selector"
)

// Route is one selector-guarded early return.
type Route struct {
	Selector  selector.Selector
	Signature string
	// Target is the declared implementation the route forwards to.
	Target string
}

// Fragment is a synthesized routing procedure for one class.
type Fragment struct {
	Class  string
	Name   string
	Routes []Route
	// Shadowed lists routes whose selector was taken over by a later record.
	Shadowed []Route
	Text     string
}

// UnresolvedRecordError means a record reached synthesis without a selector.
type UnresolvedRecordError struct {
	Class  string
	Method string
}

func (e *UnresolvedRecordError) Error() string {
	return fmt.Sprintf("%s.%s: record has no selector, build the manifest first", e.Class, e.Method)
}

// Synthesize builds the routing procedure for class from its records in
// collection order. Records must have been resolved by the manifest
// builder. No collision guard exists: when two records share a selector the
// later record's target takes the earlier route's slot.
func Synthesize(class string, records []*collect.MethodRecord, cfg Config) (Fragment, error) {
	cfg = cfg.withDefaults()
	frag := Fragment{Class: class, Name: cfg.RoutingName}
	slot := make(map[selector.Selector]int, len(records))
	for _, rec := range records {
		if !rec.Resolved() {
			return Fragment{}, &UnresolvedRecordError{Class: class, Method: rec.MethodName}
		}
		r := Route{Selector: rec.Selector, Signature: rec.Signature, Target: rec.DeclaredName}
		if i, ok := slot[r.Selector]; ok {
			frag.Shadowed = append(frag.Shadowed, frag.Routes[i])
			frag.Routes[i] = r
			continue
		}
		slot[r.Selector] = len(frag.Routes)
		frag.Routes = append(frag.Routes, r)
	}
	frag.Text = render(frag.Routes, cfg)
	return frag, nil
}

func render(routes []Route, cfg Config) string {
	var b strings.Builder
	if cfg.Banner != "" {
		fmt.Fprintf(&b, "// %s\n", cfg.Banner)
	}
	fmt.Fprintf(&b, "public override %s(%s: %s, %s: %s): %s {\n",
		cfg.RoutingName, cfg.SelectorParam, cfg.SelectorType, cfg.CalldataParam, cfg.CalldataType, cfg.ReturnType)
	for _, r := range routes {
		fmt.Fprintf(&b, "    if (%s == %s) return this.%s(%s);\n", cfg.SelectorParam, r.Selector.Literal(), r.Target, cfg.CalldataParam)
	}
	fmt.Fprintf(&b, "    return %s(%s, %s);\n", cfg.Fallback, cfg.SelectorParam, cfg.CalldataParam)
	b.WriteString("}")
	return b.String()
}
