package treeaut

import "errors"

// Sentinel errors for treeaut. Algorithms never panic
// on malformed *analyzed-program* input; these are returned to the
// caller, who branches with errors.Is. A structurally invalid TA (e.g. a
// transition naming an LHS tuple outside the shared pool) is instead a
// precondition violation and panics.
var (
	// ErrArityMismatch indicates a transition's label and LHS child count
	// disagree (label.Label.Arity() != len(lhs)).
	ErrArityMismatch = errors.New("treeaut: label arity does not match lhs length")

	// ErrDifferentPools indicates two TA values passed to a binary
	// operation (IntersectionBU, UnionDisjoint, Subseteq, ...) do not
	// share a label arena, so their LabelIDs are not comparable.
	ErrDifferentPools = errors.New("treeaut: operands do not share a label arena")

	// ErrUnknownState indicates a State not present in a TA's Q. AddFinal
	// adds an unknown state to Q and RemoveFinal ignores one, so neither
	// returns this error.
	ErrUnknownState = errors.New("treeaut: state not in automaton")
)
