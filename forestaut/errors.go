package forestaut

import "errors"

var (
	// ErrRootOutOfRange indicates a RootIdx outside [0, len(Roots)) was used.
	ErrRootOutOfRange = errors.New("forestaut: root index out of range")

	// ErrRootIsHole indicates an operation required a present (non-None)
	// root but found a hole.
	ErrRootIsHole = errors.New("forestaut: root is a hole")

	// ErrShapeMismatch indicates Subseteq was asked to compare two FA
	// with different root counts. LoadCompatibleFAs drops such candidates
	// instead of reporting them.
	ErrShapeMismatch = errors.New("forestaut: incompatible FA shape")

	// ErrDifferentBackend indicates two FA do not share a label arena /
	// LHS pool, so their States/LabelIDs are not comparable.
	ErrDifferentBackend = errors.New("forestaut: operands do not share a backend")

	// ErrDanglingReference indicates a relabeling step would leave a Ref
	// pointing at a hole without the caller having asked for Undef
	// substitution; surfaced as a precondition violation by the callers
	// that are supposed to prevent it (symexec), not swallowed silently.
	ErrDanglingReference = errors.New("forestaut: reference targets a hole")
)
