package decl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/unicode/norm"

	"abiforge/internal/source"
)

// Dump is the serialized declaration tree a host front end hands over.
// The same shape is written back after routing members were spliced.
type Dump struct {
	Unit  string     `json:"unit" msgpack:"unit"`
	Files []FileDump `json:"files" msgpack:"files"`
}

type FileDump struct {
	Path    string      `json:"path" msgpack:"path"`
	Library bool        `json:"library,omitempty" msgpack:"library,omitempty"`
	Classes []ClassDump `json:"classes" msgpack:"classes"`
}

type ClassDump struct {
	Name        string           `json:"name" msgpack:"name"`
	Line        uint32           `json:"line,omitempty" msgpack:"line,omitempty"`
	Col         uint32           `json:"col,omitempty" msgpack:"col,omitempty"`
	Annotations []AnnotationDump `json:"annotations,omitempty" msgpack:"annotations,omitempty"`
	Members     []MemberDump     `json:"members" msgpack:"members"`
}

type MemberDump struct {
	Kind        string           `json:"kind" msgpack:"kind"`
	Name        string           `json:"name" msgpack:"name"`
	Type        string           `json:"type,omitempty" msgpack:"type,omitempty"`
	Internal    string           `json:"internal,omitempty" msgpack:"internal,omitempty"`
	Inherited   bool             `json:"inherited,omitempty" msgpack:"inherited,omitempty"`
	Text        string           `json:"text,omitempty" msgpack:"text,omitempty"`
	Synthesized bool             `json:"synthesized,omitempty" msgpack:"synthesized,omitempty"`
	Line        uint32           `json:"line,omitempty" msgpack:"line,omitempty"`
	Col         uint32           `json:"col,omitempty" msgpack:"col,omitempty"`
	Annotations []AnnotationDump `json:"annotations,omitempty" msgpack:"annotations,omitempty"`
}

type AnnotationDump struct {
	Name string   `json:"name" msgpack:"name"`
	Args []string `json:"args,omitempty" msgpack:"args,omitempty"`
	Line uint32   `json:"line,omitempty" msgpack:"line,omitempty"`
	Col  uint32   `json:"col,omitempty" msgpack:"col,omitempty"`
}

// LoadError reports a malformed dump.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load declarations: %v", e.Err)
	}
	return fmt.Sprintf("load declarations from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadJSON decodes a JSON dump.
func LoadJSON(r io.Reader) (*Unit, error) {
	var d Dump
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, &LoadError{Err: err}
	}
	return FromDump(&d)
}

// LoadMsgpack decodes a msgpack dump.
func LoadMsgpack(r io.Reader) (*Unit, error) {
	var d Dump
	if err := msgpack.NewDecoder(r).Decode(&d); err != nil {
		return nil, &LoadError{Err: err}
	}
	return FromDump(&d)
}

// LoadFile reads a dump from disk, see LoadBytes.
func LoadFile(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return LoadBytes(path, data)
}

// LoadBytes picks the decoder by the extension of path: .msgpack/.mp use
// msgpack, everything else is read as JSON. The unit name defaults to the
// base name of path.
func LoadBytes(path string, data []byte) (*Unit, error) {
	var (
		unit *Unit
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		unit, err = LoadMsgpack(bytes.NewReader(data))
	default:
		unit, err = LoadJSON(bytes.NewReader(data))
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Path == "" {
			le.Path = path
		}
		return nil, err
	}
	if unit.Name == "" {
		base := filepath.Base(path)
		unit.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return unit, nil
}

// FromDump builds a Unit. Names and annotation text are NFC-normalized so
// that visually identical identifiers hash to the same selector.
func FromDump(d *Dump) (*Unit, error) {
	u := NewUnit(nfc(d.Unit))
	for fi := range d.Files {
		f := &d.Files[fi]
		file := u.Files.Add(f.Path)
		for ci := range f.Classes {
			c := &f.Classes[ci]
			if c.Name == "" {
				return nil, &LoadError{Path: f.Path, Err: fmt.Errorf("class #%d has no name", ci)}
			}
			cls := u.AddClass(nfc(c.Name), source.Span{File: file, Line: c.Line, Col: c.Col}, loadAnnotations(file, c.Annotations)...)
			u.Class(cls).Library = f.Library
			for mi := range c.Members {
				if err := u.loadMember(cls, file, &c.Members[mi]); err != nil {
					return nil, &LoadError{Path: f.Path, Err: fmt.Errorf("%s: %w", c.Name, err)}
				}
			}
		}
	}
	return u, nil
}

func (u *Unit) loadMember(cls ClassID, file source.FileID, m *MemberDump) error {
	sp := source.Span{File: file, Line: m.Line, Col: m.Col}
	name := nfc(m.Name)
	switch m.Kind {
	case "method":
		id := u.AddMethod(cls, name, sp, loadAnnotations(file, m.Annotations)...)
		u.Method(id).Internal = m.Internal
	case "field":
		id := u.AddField(cls, name, nfc(m.Type), sp)
		u.Field(id).Inherited = m.Inherited
	case "other", "":
		c := u.Class(cls)
		c.Members = append(c.Members, Member{Kind: MemberOther, Name: name, Text: m.Text, Synthesized: m.Synthesized})
	default:
		return fmt.Errorf("member %q has unknown kind %q", m.Name, m.Kind)
	}
	return nil
}

func loadAnnotations(file source.FileID, in []AnnotationDump) []Annotation {
	if len(in) == 0 {
		return nil
	}
	out := make([]Annotation, 0, len(in))
	for _, a := range in {
		args := make([]string, len(a.Args))
		for i, arg := range a.Args {
			args[i] = nfc(arg)
		}
		out = append(out, Annotation{
			Name: strings.TrimPrefix(nfc(a.Name), "@"),
			Args: args,
			Span: source.Span{File: file, Line: a.Line, Col: a.Col},
		})
	}
	return out
}

func nfc(s string) string {
	return norm.NFC.String(s)
}

// Dump serializes the unit back into the host format, member lists included.
func (u *Unit) Dump() *Dump {
	d := &Dump{Unit: u.Name}
	byFile := map[source.FileID]int{}
	for _, id := range u.order {
		c := u.Class(id)
		idx, ok := byFile[c.Span.File]
		if !ok {
			idx = len(d.Files)
			byFile[c.Span.File] = idx
			d.Files = append(d.Files, FileDump{Path: u.Files.Path(c.Span.File)})
		}
		fd := &d.Files[idx]
		fd.Library = fd.Library || c.Library
		fd.Classes = append(fd.Classes, u.dumpClass(c))
	}
	return d
}

func (u *Unit) dumpClass(c *Class) ClassDump {
	cd := ClassDump{
		Name:        c.Name,
		Line:        c.Span.Line,
		Col:         c.Span.Col,
		Annotations: dumpAnnotations(c.Annotations),
		Members:     make([]MemberDump, 0, len(c.Members)),
	}
	for _, m := range c.Members {
		md := MemberDump{Kind: m.Kind.String(), Name: m.Name, Text: m.Text, Synthesized: m.Synthesized}
		switch m.Kind {
		case MemberMethod:
			if meth := u.Method(m.Method); meth != nil {
				md.Internal = meth.Internal
				md.Line, md.Col = meth.Span.Line, meth.Span.Col
				md.Annotations = dumpAnnotations(meth.Annotations)
			}
		case MemberField:
			if f := u.Field(m.Field); f != nil {
				md.Type = f.Type
				md.Inherited = f.Inherited
				md.Line, md.Col = f.Span.Line, f.Span.Col
			}
		}
		cd.Members = append(cd.Members, md)
	}
	return cd
}

func dumpAnnotations(in []Annotation) []AnnotationDump {
	if len(in) == 0 {
		return nil
	}
	out := make([]AnnotationDump, 0, len(in))
	for _, a := range in {
		out = append(out, AnnotationDump{Name: a.Name, Args: a.Args, Line: a.Span.Line, Col: a.Span.Col})
	}
	return out
}

// WriteJSON writes d as indented JSON.
func (d *Dump) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// WriteMsgpack writes d as msgpack.
func (d *Dump) WriteMsgpack(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(d)
}
