package decl

type (
	ClassID  uint32
	MethodID uint32
	FieldID  uint32
)

const (
	NoClassID  ClassID  = 0
	NoMethodID MethodID = 0
	NoFieldID  FieldID  = 0
)

func (id ClassID) IsValid() bool  { return id != NoClassID }
func (id MethodID) IsValid() bool { return id != NoMethodID }
func (id FieldID) IsValid() bool  { return id != NoFieldID }
