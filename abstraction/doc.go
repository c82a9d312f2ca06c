// Package abstraction implements the two state-merging modes applied at
// a fixpoint program point: finite-height abstraction (bounded-depth
// structural folding refined by cutpoint signatures) and predicate
// abstraction (merging states that agree on which predicate automata
// they intersect). Both preserve the final-state set and are
// implemented as a single relation-then-collapse pass over
// treeaut.TA, reusing HeightAbstraction/Collapsed rather than
// reimplementing partition refinement here.
package abstraction
