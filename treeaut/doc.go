// Package treeaut implements a bottom-up finite tree automaton (TA):
// states, transitions f(q1,...,qn) -> q, union, intersection
// (bottom-up product), minimization by partition refinement intersected
// with a caller-supplied compatibility relation, language inclusion,
// useless/unreachable-state removal, and bottom-up finite-height
// abstraction.
//
// TA instances are value objects that share a hash-consed label arena
// (package label) and an LHS-tuple pool: copying a TA is cheap, and
// structural equality of two transitions reduces to equality of their
// (LHSID, LabelID, RHS State) triple.
//
// Rather than a reserved high-order bit, states are an explicit sum
// type, StateKind Internal | DataLeaf, so a data leaf is syntactically
// distinguishable
// and is never touched by Rename or merged with a non-data state by
// HeightAbstraction/Minimized.
package treeaut
