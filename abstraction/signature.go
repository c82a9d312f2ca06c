package abstraction

import (
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// stateCutpoints computes, for every state of ta, the set of root
// indices reachable as a Ref data leaf anywhere below it, by fixpoint
// over the producing relation (states can be mutually reachable once
// cyclic structures are folded into a finite TA, so a plain recursive
// walk would not terminate). Two states with an equal set here carry
// the same cutpoint signature for merging purposes.
func stateCutpoints(ta *treeaut.TA, arena *label.Arena) map[treeaut.State]map[dataval.RootIdx]struct{} {
	sig := make(map[treeaut.State]map[dataval.RootIdx]struct{})
	ensure := func(q treeaut.State) map[dataval.RootIdx]struct{} {
		s, ok := sig[q]
		if !ok {
			s = make(map[dataval.RootIdx]struct{})
			sig[q] = s
		}
		return s
	}

	changed := true
	for changed {
		changed = false
		for _, tr := range ta.Transitions() {
			dst := ensure(tr.RHS)
			for _, c := range ta.Children(tr) {
				if c.Kind == treeaut.DataLeaf {
					dlbl := arena.Get(label.LabelID(c.ID))
					if dlbl.Kind() != label.KindData || !dlbl.Data().Value.IsRef() {
						continue
					}
					r := dlbl.Data().Value.RefValue().Root
					if _, ok := dst[r]; !ok {
						dst[r] = struct{}{}
						changed = true
					}
					continue
				}
				for r := range ensure(c) {
					if _, ok := dst[r]; !ok {
						dst[r] = struct{}{}
						changed = true
					}
				}
			}
		}
	}
	return sig
}

func rootSetEqual(a, b map[dataval.RootIdx]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for r := range a {
		if _, ok := b[r]; !ok {
			return false
		}
	}
	return true
}

// nodeTagEqual is the match predicate for finite-height abstraction: two
// labels carry the same node tag if both are non-node labels of the
// same kind, or both are node labels with the same ordered slot shape,
// ignoring whether a slot is a plain Selector or a folded Box.
func nodeTagEqual(arena *label.Arena, a, b label.LabelID) bool {
	la, lb := arena.Get(a), arena.Get(b)
	if la.Kind() != lb.Kind() {
		return false
	}
	if la.Kind() != label.KindNode {
		return true
	}
	na, nb := la.Node(), lb.Node()
	if len(na.Boxes) != len(nb.Boxes) {
		return false
	}
	for i := range na.Boxes {
		if !slotEqual(na.Boxes[i], nb.Boxes[i]) {
			return false
		}
	}
	return true
}

func slotEqual(a, b label.AbstractBoxEntry) bool {
	if a.Arity() != b.Arity() {
		return false
	}
	if a.Arity() == 1 {
		return a.Sel.Offset == b.Sel.Offset
	}
	if a.Kind != b.Kind {
		return false
	}
	return a.Typ == b.Typ
}
