package abstraction

import "errors"

var (
	// ErrDifferentBackend indicates a predicate TA does not share the
	// target FA's label arena, so their states are not comparable.
	ErrDifferentBackend = errors.New("abstraction: predicate does not share the target's backend")
)
