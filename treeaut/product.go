package treeaut

import "fmt"

// ProductKey is a pair of original states combined by IntersectionBU,
// exposed so callers (the backward run) can translate product
// states back to their operands without re-deriving the product.
type ProductKey struct {
	A, B State
}

// IntersectionBU computes the synchronous bottom-up product L(a) ∩ L(b):
// two transitions with the same label and equal-length children combine
// pointwise, one combined state per (qa, qb) pair actually reached.
// prodMap is populated (qa, qb) -> qc for every combined state created, a
// `map[ProductKey]State` the caller owns and passes in.
//
// a and b must share a label arena (ErrDifferentPools otherwise); the
// result is built against a's pool so it can be merged back into a's TA
// family without further translation.
func IntersectionBU(a, b *TA, prodMap map[ProductKey]State) (*TA, error) {
	if a.arena != b.arena {
		return nil, ErrDifferentPools
	}
	out := New(a.pool, a.arena)

	next := uint32(0)
	stateFor := func(qa, qb State) State {
		key := ProductKey{A: qa, B: qb}
		if q, ok := prodMap[key]; ok {
			return q
		}
		var q State
		if qa.Kind == DataLeaf && qb.Kind == DataLeaf && qa.ID == qb.ID {
			// Data leaves are fixed points: the product of a data leaf
			// with itself is itself; data states are never merged with
			// anything but themselves.
			q = qa
		} else {
			q = State{Kind: Internal, ID: next}
			next++
		}
		prodMap[key] = q
		return q
	}

	// Group b's transitions by (label, arity) for quick candidate lookup.
	type sig struct {
		lbl   uint32
		arity int
	}
	byB := make(map[sig][]Transition)
	for tr := range b.trans {
		s := sig{lbl: uint32(tr.Label), arity: len(b.Children(tr))}
		byB[s] = append(byB[s], tr)
	}

	for ta := range a.trans {
		childrenA := a.Children(ta)
		s := sig{lbl: uint32(ta.Label), arity: len(childrenA)}
		for _, tb := range byB[s] {
			childrenB := b.Children(tb)
			combined := make([]State, len(childrenA))
			ok := true
			for i := range childrenA {
				ca, cb := childrenA[i], childrenB[i]
				if ca.Kind == DataLeaf || cb.Kind == DataLeaf {
					if ca != cb {
						ok = false
						break
					}
					combined[i] = ca
					continue
				}
				combined[i] = stateFor(ca, cb)
			}
			if !ok {
				continue
			}
			rhs := stateFor(ta.RHS, tb.RHS)
			out.AddTransition(combined, ta.Label, rhs)
		}
	}
	for fa := range a.finals {
		for fb := range b.finals {
			key := ProductKey{A: fa, B: fb}
			if q, ok := prodMap[key]; ok {
				out.AddFinal(q)
			}
		}
	}
	return out, nil
}

// UnionDisjoint renames the states of b to avoid a's states, then unions
// transitions and final sets, so L(result) = L(a) ∪ L(b). a and b must
// share a label arena.
func UnionDisjoint(a, b *TA) (*TA, error) {
	if a.arena != b.arena {
		return nil, ErrDifferentPools
	}
	out := a.Clone()

	nextInternal := uint32(0)
	for _, q := range a.States() {
		if q.Kind == Internal && q.ID >= nextInternal {
			nextInternal = q.ID + 1
		}
	}
	sigma := make(map[State]State)
	for _, q := range b.States() {
		if q.Kind == DataLeaf {
			sigma[q] = q // data leaves are shared fixed points across a and b
			continue
		}
		sigma[q] = State{Kind: Internal, ID: nextInternal}
		nextInternal++
	}

	bRenamed, err := Rename(b, sigma, true)
	if err != nil {
		return nil, err
	}
	for tr := range bRenamed.trans {
		out.AddTransition(bRenamed.Children(tr), tr.Label, tr.RHS)
	}
	for _, q := range bRenamed.FinalStates() {
		out.AddFinal(q)
	}
	return out, nil
}

// Rename applies sigma to every state of src, writing the result into a
// fresh TA sharing src's pool/arena. DataLeaf states are fixed points of
// sigma: even if sigma maps one explicitly, the mapping is ignored and
// the data leaf keeps its identity. If copyFinals is false, the
// renamed TA has no final states (useful when the caller wants to
// install its own).
func Rename(src *TA, sigma map[State]State, copyFinals bool) (*TA, error) {
	dst := New(src.pool, src.arena)
	apply := func(q State) State {
		if q.Kind == DataLeaf {
			return q
		}
		if r, ok := sigma[q]; ok {
			return r
		}
		return q
	}
	for tr := range src.trans {
		children := src.Children(tr)
		renamed := make([]State, len(children))
		for i, c := range children {
			renamed[i] = apply(c)
		}
		dst.AddTransition(renamed, tr.Label, apply(tr.RHS))
	}
	if copyFinals {
		for _, q := range src.FinalStates() {
			dst.AddFinal(apply(q))
		}
	}
	return dst, nil
}

func (k ProductKey) String() string { return fmt.Sprintf("(%s,%s)", k.A, k.B) }
