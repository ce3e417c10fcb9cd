package manifest

import (
	"encoding/json"
	"fmt"
	"io"

	"abiforge/internal/abitype"
	"abiforge/internal/decl"
	"abiforge/internal/selector"
)

// Function entry roles.
const (
	RoleFunction = "Function"
	RoleView     = "View"
	RoleEvent    = "Event"
)

// Param is one resolved input, output or event value. Hint is only for
// host type emission and never reaches the manifest file.
type Param struct {
	Name string       `json:"name"`
	Type abitype.Tag  `json:"type"`
	Hint abitype.Hint `json:"-"`
	// Spelling is the raw text the type was resolved from.
	Spelling string `json:"-"`
}

type Function struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Payable   bool    `json:"payable"`
	OnlyOwner bool    `json:"onlyOwner"`
	Inputs    []Param `json:"inputs"`
	Outputs   []Param `json:"outputs"`

	Signature string            `json:"-"`
	Selector  selector.Selector `json:"-"`
	Emits     []string          `json:"-"`
}

// IsView reports whether the function is read-only.
func (f *Function) IsView() bool { return f.Type == RoleView }

type Event struct {
	Name   string  `json:"name"`
	Values []Param `json:"values"`
	Type   string  `json:"type"`
}

// ClassABI is the slice of the manifest owned by one class: its functions,
// and the declared events those functions emit.
type ClassABI struct {
	Class     string       `json:"-"`
	ID        decl.ClassID `json:"-"`
	Functions []Function   `json:"functions"`
	Events    []Event      `json:"events"`
}

// Manifest is the unit-level ABI: every function of every annotated class
// in collection order, then every declared event.
type Manifest struct {
	Functions []Function `json:"functions"`
	Events    []Event    `json:"events"`

	Classes []ClassABI `json:"-"`
}

// Class returns the per-class view for name.
func (m *Manifest) Class(name string) (*ClassABI, bool) {
	for i := range m.Classes {
		if m.Classes[i].Class == name {
			return &m.Classes[i], true
		}
	}
	return nil, false
}

// WriteJSON writes the manifest as indented JSON.
func (m *Manifest) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}

// UnresolvedTypeError aborts manifest generation for a unit: a type
// spelling resolved to no ABI data type. Exactly one of Method and Event is
// set.
type UnresolvedTypeError struct {
	Class    string
	Method   string
	Event    string
	Spelling string
	// Inner lists the tuple members that failed, when Spelling is a tuple.
	Inner []string
}

func (e *UnresolvedTypeError) Error() string {
	where := e.Class + "." + e.Method
	if e.Method == "" {
		where = fmt.Sprintf("event %s (class %s)", e.Event, e.Class)
	}
	if len(e.Inner) > 0 {
		return fmt.Sprintf("%s: unknown ABI type %q (unresolved members %q)", where, e.Spelling, e.Inner)
	}
	return fmt.Sprintf("%s: unknown ABI type %q", where, e.Spelling)
}
