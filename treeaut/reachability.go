package treeaut

// reachableStates computes the bottom-up-reachable states of t: a state is
// reachable if some transition whose children are all already reachable
// produces it (base case: a nullary transition's RHS is reachable
// immediately). DataLeaf states are axiomatically reachable: they are
// data values or references given outright, not derived by a
// transition of their own. This is the standard "derivable from the
// leaves" set.
func reachableStates(t *TA) map[State]struct{} {
	reachable := make(map[State]struct{})
	for q := range t.states {
		if q.Kind == DataLeaf {
			reachable[q] = struct{}{}
		}
	}
	changed := true
	for changed {
		changed = false
		for tr := range t.trans {
			if _, ok := reachable[tr.RHS]; ok {
				continue
			}
			allOK := true
			for _, c := range t.Children(tr) {
				if _, ok := reachable[c]; !ok {
					allOK = false
					break
				}
			}
			if allOK {
				reachable[tr.RHS] = struct{}{}
				changed = true
			}
		}
	}
	return reachable
}

// usefulStates computes the co-reachable ("useful") states of t: a state
// is useful if it is final, or it is used as a child in some transition
// that produces a useful state.
func usefulStates(t *TA) map[State]struct{} {
	useful := make(map[State]struct{}, len(t.finals))
	for q := range t.finals {
		useful[q] = struct{}{}
	}
	changed := true
	for changed {
		changed = false
		for tr := range t.trans {
			if _, ok := useful[tr.RHS]; !ok {
				continue
			}
			for _, c := range t.Children(tr) {
				if _, ok := useful[c]; !ok {
					useful[c] = struct{}{}
					changed = true
				}
			}
		}
	}
	return useful
}

// UselessAndUnreachableFree returns a language-equivalent TA whose every
// state is both bottom-up reachable and co-reachable to some final state.
func (t *TA) UselessAndUnreachableFree() *TA {
	reachable := reachableStates(t)
	useful := usefulStates(t)

	keep := make(map[State]struct{})
	for q := range reachable {
		if _, ok := useful[q]; ok {
			keep[q] = struct{}{}
		}
	}

	out := New(t.pool, t.arena)
	for tr := range t.trans {
		if _, ok := keep[tr.RHS]; !ok {
			continue
		}
		allKept := true
		children := t.Children(tr)
		for _, c := range children {
			if _, ok := keep[c]; !ok {
				allKept = false
				break
			}
		}
		if !allKept {
			continue
		}
		out.AddTransition(append([]State(nil), children...), tr.Label, tr.RHS)
	}
	for q := range t.finals {
		if _, ok := keep[q]; ok {
			out.AddFinal(q)
		}
	}
	return out
}

// IsEmpty reports whether L(t) = ∅, i.e. no final state is reachable.
func (t *TA) IsEmpty() bool {
	reachable := reachableStates(t)
	for q := range t.finals {
		if _, ok := reachable[q]; ok {
			return false
		}
	}
	return true
}
