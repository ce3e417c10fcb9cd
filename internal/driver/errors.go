package driver

import "fmt"

// MissingDeclError means an annotated method has no element in the host's
// resolved program. It is raised before anything is emitted.
type MissingDeclError struct {
	Unit   string
	Class  string
	Method string
}

func (e *MissingDeclError) Error() string {
	return fmt.Sprintf("method %s.%s not found in the program", e.Class, e.Method)
}
