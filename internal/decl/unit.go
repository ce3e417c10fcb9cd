package decl

import (
	"abiforge/internal/source"
)

// MemberKind classifies an entry of a class member list.
type MemberKind uint8

const (
	MemberOther MemberKind = iota
	MemberMethod
	MemberField
)

func (k MemberKind) String() string {
	switch k {
	case MemberMethod:
		return "method"
	case MemberField:
		return "field"
	}
	return "other"
}

// Member is one entry of a class member list, in declaration order.
// Synthesized members carry their source text and no arena handle.
type Member struct {
	Kind        MemberKind
	Name        string
	Method      MethodID
	Field       FieldID
	Text        string
	Synthesized bool
}

// Class is a class declaration.
type Class struct {
	Name        string
	Span        source.Span
	Annotations []Annotation
	Members     []Member
	// Library classes come from dependency sources and are never visited.
	Library bool
}

// Method is a method declaration.
type Method struct {
	Name        string
	Class       ClassID
	Span        source.Span
	Annotations []Annotation
	// Internal is the host's resolved element name. Empty means the host's
	// program has no element for this declaration.
	Internal string
}

// Field is a data field declared directly on a class.
type Field struct {
	Name  string
	Type  string // raw type text as written
	Class ClassID
	Span  source.Span
	// Inherited fields are reported by some hosts for convenience; the pass
	// ignores them.
	Inherited bool
}

// Unit is one compilation unit's declaration tree. A Unit is built once by a
// loader or a host adapter and treated as read-only by the pass, except for
// member lists which the routing splice replaces wholesale.
type Unit struct {
	Name  string
	Files *source.Files

	classes *Arena[Class]
	methods *Arena[Method]
	fields  *Arena[Field]
	order   []ClassID
}

// NewUnit creates an empty unit.
func NewUnit(name string) *Unit {
	return &Unit{
		Name:    name,
		Files:   source.NewFiles(),
		classes: NewArena[Class](8),
		methods: NewArena[Method](32),
		fields:  NewArena[Field](32),
	}
}

// AddClass declares a class and returns its handle.
func (u *Unit) AddClass(name string, sp source.Span, anns ...Annotation) ClassID {
	id := ClassID(u.classes.Allocate(Class{Name: name, Span: sp, Annotations: anns}))
	u.order = append(u.order, id)
	return id
}

// AddMethod declares a method on cls and appends it to the member list.
func (u *Unit) AddMethod(cls ClassID, name string, sp source.Span, anns ...Annotation) MethodID {
	c := u.classes.Get(uint32(cls))
	if c == nil {
		return NoMethodID
	}
	id := MethodID(u.methods.Allocate(Method{Name: name, Class: cls, Span: sp, Annotations: anns}))
	c.Members = append(c.Members, Member{Kind: MemberMethod, Name: name, Method: id})
	return id
}

// AddField declares a field on cls and appends it to the member list.
func (u *Unit) AddField(cls ClassID, name, typ string, sp source.Span) FieldID {
	c := u.classes.Get(uint32(cls))
	if c == nil {
		return NoFieldID
	}
	id := FieldID(u.fields.Allocate(Field{Name: name, Type: typ, Class: cls, Span: sp}))
	c.Members = append(c.Members, Member{Kind: MemberField, Name: name, Field: id})
	return id
}

// AddOther appends a member the pass does not model (constructor, accessor).
func (u *Unit) AddOther(cls ClassID, name, text string) {
	if c := u.classes.Get(uint32(cls)); c != nil {
		c.Members = append(c.Members, Member{Kind: MemberOther, Name: name, Text: text})
	}
}

// Class returns the class for id or nil.
func (u *Unit) Class(id ClassID) *Class { return u.classes.Get(uint32(id)) }

// Method returns the method for id or nil.
func (u *Unit) Method(id MethodID) *Method { return u.methods.Get(uint32(id)) }

// Field returns the field for id or nil.
func (u *Unit) Field(id FieldID) *Field { return u.fields.Get(uint32(id)) }

// Classes returns class handles in declaration order.
func (u *Unit) Classes() []ClassID {
	return u.order
}

// MethodCount returns the number of declared methods.
func (u *Unit) MethodCount() uint32 { return u.methods.Len() }

// ClassByName finds the first class declared under name.
func (u *Unit) ClassByName(name string) (ClassID, bool) {
	for _, id := range u.order {
		if u.classes.Get(uint32(id)).Name == name {
			return id, true
		}
	}
	return NoClassID, false
}

// SetMembers replaces the member list of cls.
func (u *Unit) SetMembers(cls ClassID, members []Member) {
	if c := u.classes.Get(uint32(cls)); c != nil {
		c.Members = members
	}
}

// Annotate appends annotations to a method.
func (u *Unit) Annotate(m MethodID, anns ...Annotation) {
	if meth := u.methods.Get(uint32(m)); meth != nil {
		meth.Annotations = append(meth.Annotations, anns...)
	}
}
