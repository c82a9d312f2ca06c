package fixpoint

import "errors"

var (
	// ErrTooManyCombinations indicates UFAE.Encode's cartesian product of
	// per-root final states exceeded maxCombinations (see ufae.go); this
	// bounds the same kind of blowup treeaut.Subseteq's determinize caps,
	// rather than leaving it silently unbounded.
	ErrTooManyCombinations = errors.New("fixpoint: too many final-state combinations to encode")

	// ErrNoMode indicates an Engine's mode is neither ModeHeight nor
	// ModePredicate. New starts every Engine in ModeHeight, so an Engine
	// built with no mode option uses finite-height abstraction.
	ErrNoMode = errors.New("fixpoint: no abstraction mode configured")
)
