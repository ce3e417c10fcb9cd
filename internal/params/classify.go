package params

// Kind says how the first argument of a parameter annotation was read.
type Kind uint8

const (
	// ParameterList: every argument is a parameter, no name override.
	ParameterList Kind = iota
	// NameOverride: the first argument renames the method.
	NameOverride
)

func (k Kind) String() string {
	if k == NameOverride {
		return "name-override"
	}
	return "parameter-list"
}

// Classification is the result of reading a parameter annotation.
type Classification struct {
	Kind   Kind
	Name   string // set only for NameOverride
	Params []Descriptor
	// Fallbacks holds the reasons brace-delimited arguments were read as bare
	// spellings, in argument order.
	Fallbacks []*ParseError
}

// Classify reads the arguments of a parameter annotation.
//
// The first argument decides: if it looks like a parameter (see
// LooksLikeParam) there is no override and every argument is a parameter;
// otherwise it is the method name and the rest are parameters. A method whose
// intended name is itself a type spelling (say "bool") is therefore read as a
// parameter list. That ambiguity is inherent to the annotation syntax.
func Classify(rawArgs []string) Classification {
	var c Classification
	if len(rawArgs) == 0 {
		return c
	}
	items := make([]Descriptor, 0, len(rawArgs))
	for _, raw := range rawArgs {
		d, err := ParseArg(raw)
		if pe, ok := err.(*ParseError); ok {
			c.Fallbacks = append(c.Fallbacks, pe)
		}
		items = append(items, d)
	}
	first := items[0]
	if LooksLikeParam(first) {
		c.Params = items
		return c
	}
	c.Kind = NameOverride
	c.Name = first.Type
	if first.Named {
		// a named literal whose type is not a type spelling: its name is the
		// closest thing to a method name it carries
		c.Name = first.Name
	}
	c.Params = items[1:]
	return c
}

// ParseReturns reads the arguments of a return annotation. All arguments are
// descriptors; no name override applies.
func ParseReturns(rawArgs []string) ([]Descriptor, []*ParseError) {
	if len(rawArgs) == 0 {
		return nil, nil
	}
	out := make([]Descriptor, 0, len(rawArgs))
	var fallbacks []*ParseError
	for _, raw := range rawArgs {
		d, err := ParseArg(raw)
		if pe, ok := err.(*ParseError); ok {
			fallbacks = append(fallbacks, pe)
		}
		out = append(out, d)
	}
	return out, fallbacks
}
