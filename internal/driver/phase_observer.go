package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a pass phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
	// PhaseDone and PhaseFailed close a whole unit; Name is empty.
	PhaseDone
	PhaseFailed
)

// Phase names reported to observers and timers.
const (
	PhaseLoad     = "load"
	PhaseCollect  = "collect"
	PhaseResolve  = "resolve"
	PhaseManifest = "manifest"
	PhaseDispatch = "dispatch"
	PhaseEmit     = "emit"
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	// Path is the input file, set when the unit was started by RunFile.
	Path    string
	Unit    string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during Run. It may be called
// from several goroutines when units run in parallel.
type PhaseObserver func(PhaseEvent)
