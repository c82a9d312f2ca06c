package forestaut

import (
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// substituteRefs rebuilds ta with every DataLeaf child that carries a Ref
// replaced according to how: for a Ref{root, displ} child, how(root)
// returns the new root to point at, and ok reports whether that target
// is still present. When ok is false the child becomes Undef rather
// than a dangling Ref. Children that
// are not Refs, and the RHS of every transition, pass through unchanged.
//
// This is deliberately not treeaut.Rename: that function's contract
// fixes DataLeaf states as-is (by design, so TA-level renaming such as
// UnionDisjoint's disjointing never perturbs data), whereas here the
// whole point is to reinterpret the Ref payload itself.
func substituteRefs(ta *treeaut.TA, arena *label.Arena, how func(dataval.RootIdx) (dataval.RootIdx, bool)) *treeaut.TA {
	out := treeaut.New(ta.Pool(), ta.Arena())
	for _, tr := range ta.Transitions() {
		children := ta.Children(tr)
		newChildren := make([]treeaut.State, len(children))
		for i, c := range children {
			newChildren[i] = substituteChild(c, arena, how)
		}
		out.AddTransition(newChildren, tr.Label, tr.RHS)
	}
	for _, q := range ta.FinalStates() {
		out.AddFinal(q)
	}
	return out
}

func substituteChild(c treeaut.State, arena *label.Arena, how func(dataval.RootIdx) (dataval.RootIdx, bool)) treeaut.State {
	if c.Kind != treeaut.DataLeaf {
		return c
	}
	lbl := arena.Get(label.LabelID(c.ID))
	if lbl.Kind() != label.KindData || !lbl.Data().Value.IsRef() {
		return c
	}
	ref := lbl.Data().Value.RefValue()
	newRoot, ok := how(ref.Root)
	var newData dataval.Data
	if !ok {
		newData = dataval.NewUndef()
	} else {
		newData = dataval.NewRef(newRoot, ref.Displ)
	}
	newID := arena.InternData(newData)
	return treeaut.State{Kind: treeaut.DataLeaf, ID: uint32(newID)}
}

// RelabelReferences applies perm to every Ref child across every present
// root of f: a Ref{r, displ} becomes Ref{perm[r], displ} (identity where
// perm has no entry), used after a root-index permutation such as
// FreePosition's slot swap to restore invariant I2 ("every Ref names a
// currently present root").
func (f *FA) RelabelReferences(perm map[dataval.RootIdx]dataval.RootIdx) {
	how := func(r dataval.RootIdx) (dataval.RootIdx, bool) {
		if nr, ok := perm[r]; ok {
			return nr, true
		}
		return r, true
	}
	for i, ta := range f.Roots {
		if ta == nil {
			continue
		}
		f.Roots[i] = substituteRefs(ta, f.Backend.Arena, how)
	}
	f.cgValid = false
}

// InvalidateReference rewrites every Ref{target, *} across every present
// root to Undef, used when root `target` is about to be freed and its
// incoming references must not dangle.
func (f *FA) InvalidateReference(target dataval.RootIdx) {
	how := func(r dataval.RootIdx) (dataval.RootIdx, bool) {
		if r == target {
			return r, false
		}
		return r, true
	}
	for i, ta := range f.Roots {
		if ta == nil {
			continue
		}
		f.Roots[i] = substituteRefs(ta, f.Backend.Arena, how)
	}
	f.cgValid = false
}

// FreePosition frees root r after InvalidateReference(r). If r is the
// last root, its slot is dropped. Otherwise, if the last root is pinned
// (named by a live variable or otherwise required to keep its index,
// per the pinned set the caller supplies), r's slot is left as a hole;
// if not, the last root is moved into r's slot, the root list shrinks
// by one, and RelabelReferences repairs every Ref that used to name the
// moved root.
func (f *FA) FreePosition(r dataval.RootIdx, pinned map[dataval.RootIdx]bool) error {
	if int(r) < 0 || int(r) >= len(f.Roots) {
		return ErrRootOutOfRange
	}
	f.InvalidateReference(r)

	last := dataval.RootIdx(len(f.Roots) - 1)
	if r == last {
		f.Roots[r] = nil
		f.Roots = f.Roots[:last]
		f.cgValid = false
		return nil
	}
	if pinned[last] {
		// The only root that could fill r's slot is pinned at its own
		// index; leave r as a permanent hole instead of relocating it.
		f.Roots[r] = nil
		f.cgValid = false
		return nil
	}
	f.Roots[r] = f.Roots[last]
	f.Roots = f.Roots[:last]
	f.RelabelReferences(map[dataval.RootIdx]dataval.RootIdx{last: r})
	return nil
}

// SetLabelsToValue rewrites every DataLeaf child of root r's TA whose
// label is Undef to carry value instead. Used to initialize a
// freshly-allocated block's fields.
func (f *FA) SetLabelsToValue(r dataval.RootIdx, value dataval.Data) error {
	if int(r) < 0 || int(r) >= len(f.Roots) {
		return ErrRootOutOfRange
	}
	ta := f.Roots[r]
	if ta == nil {
		return ErrRootIsHole
	}
	out := treeaut.New(ta.Pool(), ta.Arena())
	for _, tr := range ta.Transitions() {
		children := ta.Children(tr)
		newChildren := make([]treeaut.State, len(children))
		for i, c := range children {
			newChildren[i] = c
			if c.Kind != treeaut.DataLeaf {
				continue
			}
			lbl := f.Backend.Arena.Get(label.LabelID(c.ID))
			if lbl.Kind() == label.KindData && lbl.Data().Value.Kind() == dataval.KindUndef {
				newID := f.Backend.Arena.InternData(value)
				newChildren[i] = treeaut.State{Kind: treeaut.DataLeaf, ID: uint32(newID)}
			}
		}
		out.AddTransition(newChildren, tr.Label, tr.RHS)
	}
	for _, q := range ta.FinalStates() {
		out.AddFinal(q)
	}
	f.Roots[r] = out
	f.cgValid = false
	return nil
}
