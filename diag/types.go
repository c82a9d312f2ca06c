package diag

import "fmt"

// Location is a source position, carried by every instruction and attached to
// every ProgramError so a witness trace can report where it occurred.
type Location struct {
	File string
	Line int
	Col  int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// ProgramError is a safety violation attributable to the analyzed
// program: it carries the source location and an opaque witness (the
// symbolic state at the point of violation) alongside one
// of the sentinel Kind errors in errors.go. Use errors.Is(err, ErrX) to
// branch on which diagnostic-boundary kind occurred; Witness is typed
// `any` here to avoid diag importing the package that defines symbolic
// states (symexec imports diag, not the other way around).
type ProgramError struct {
	Loc     Location
	Kind    error
	Witness any
	detail  string
}

// NewProgramError builds a ProgramError of the given kind at loc, with
// an optional free-form detail string appended to the message.
func NewProgramError(loc Location, kind error, witness any, detail string) *ProgramError {
	return &ProgramError{Loc: loc, Kind: kind, Witness: witness, detail: detail}
}

func (e *ProgramError) Error() string {
	if e.detail == "" {
		return fmt.Sprintf("%s: %v", e.Loc, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Loc, e.Kind, e.detail)
}

// Unwrap exposes the diagnostic-boundary sentinel so errors.Is(err,
// ErrX) works across a ProgramError wrapper.
func (e *ProgramError) Unwrap() error { return e.Kind }

// RefinementSignal is raised internally, non-fatally, when the forward
// analysis must be restarted because new boxes or predicates were
// learned. It is never a safety violation and carries no witness,
// only the reason the restart happened.
type RefinementSignal struct {
	Reason string
}

func (s *RefinementSignal) Error() string {
	return fmt.Sprintf("diag: refinement restart: %s", s.Reason)
}

// NewRefinementSignal builds a RefinementSignal for the given reason
// (e.g. "learned predicate at root 2").
func NewRefinementSignal(reason string) *RefinementSignal {
	return &RefinementSignal{Reason: reason}
}
