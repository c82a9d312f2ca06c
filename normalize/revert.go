package normalize

import (
	"fmt"

	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// Revert undoes this Log's merges on prod, the FA whose roots are the
// per-root bottom-up products of a backward FA with the normalized FA
// the log was recorded for (so prod is indexed post-normalization and
// its states are product states). prodMaps holds, per post-
// normalization root, the (backward state, normalized state) -> product
// state map IntersectionBU populated for that root.
//
// The reconstruction follows the backward run's contract: every
// survivor's product TA is copied back to its original position, each
// merged component is rebuilt as a copy of its survivor's product TA
// whose accepting states are the product states corresponding to the
// recorded join images, and in every other component those same product
// states are turned back into the Ref leaves the merge consumed. The
// log is the source of truth: any disagreement between it and the
// product maps returns ErrInconsistentLog, which callers should treat
// as an inconclusive (spurious) trace rather than guess.
func (l *Log) Revert(prod *forestaut.FA, prodMaps map[dataval.RootIdx]map[treeaut.ProductKey]treeaut.State) (*forestaut.FA, error) {
	intoOf := make(map[dataval.RootIdx]dataval.RootIdx, len(l.Merges))
	for _, m := range l.Merges {
		intoOf[m.From] = m.Into
	}
	resolve := func(r dataval.RootIdx) dataval.RootIdx {
		for {
			in, ok := intoOf[r]
			if !ok {
				return r
			}
			r = in
		}
	}

	numOriginal := 0
	for r := range l.Perm {
		if int(r)+1 > numOriginal {
			numOriginal = int(r) + 1
		}
	}
	for _, m := range l.Merges {
		if int(m.From)+1 > numOriginal {
			numOriginal = int(m.From) + 1
		}
	}

	out := forestaut.New(prod.Backend)
	for i := 0; i < numOriginal; i++ {
		out.AllocRoot()
	}

	// (i) every survivor's product TA goes back to its original index.
	for orig, p := range l.Perm {
		src := prod.Root(p)
		if src == nil {
			return nil, fmt.Errorf("%w: survivor %d has no product root", ErrInconsistentLog, orig)
		}
		if err := out.SetRoot(orig, src.Clone()); err != nil {
			return nil, err
		}
	}

	// (ii)+(iii) each merged component is a copy of its survivor's
	// product TA, accepting exactly at the product states reached from
	// the recorded join images.
	type refPatch struct {
		from    dataval.RootIdx
		targets map[treeaut.State]dataval.Data
	}
	var patches []refPatch
	for i := len(l.Merges) - 1; i >= 0; i-- {
		m := l.Merges[i]
		s := resolve(m.Into)
		p, ok := l.Perm[s]
		if !ok {
			return nil, fmt.Errorf("%w: no permutation entry for survivor %d", ErrInconsistentLog, s)
		}
		pm := prodMaps[p]
		src := prod.Root(p)
		if pm == nil || src == nil || len(m.Joins) == 0 {
			return nil, fmt.Errorf("%w: merge %d -> %d has nothing to revert", ErrInconsistentLog, m.From, m.Into)
		}

		rec := copyTransitions(src)
		targets := make(map[treeaut.State]dataval.Data)
		for _, j := range m.Joins {
			found := false
			for key, qc := range pm {
				if key.B != j.Image {
					continue
				}
				rec.AddFinal(qc)
				targets[qc] = dataval.NewRef(m.From, j.Displ)
				found = true
			}
			if !found {
				return nil, fmt.Errorf("%w: join image %s left no product state", ErrInconsistentLog, j.Image)
			}
		}
		if err := out.SetRoot(m.From, rec); err != nil {
			return nil, err
		}
		patches = append(patches, refPatch{from: m.From, targets: targets})
	}

	// References inside every copy still use post-normalization
	// indices; map them back before introducing original-index Refs.
	inv := make(map[dataval.RootIdx]dataval.RootIdx, len(l.Perm))
	for orig, p := range l.Perm {
		inv[p] = orig
	}
	out.RelabelReferences(inv)

	// (iv) everywhere except the reconstructed component itself, the
	// join-image product states become the Ref leaves the merge ate.
	for _, patch := range patches {
		for i, ta := range out.Roots {
			if ta == nil || dataval.RootIdx(i) == patch.from {
				continue
			}
			out.Roots[i] = replaceStatesWithRefs(ta, prod.Backend.Arena, patch.targets)
		}
	}

	for i, ta := range out.Roots {
		if ta != nil {
			out.Roots[i] = ta.UselessAndUnreachableFree()
		}
	}

	vars := make([]dataval.Data, len(prod.Vars))
	for i, v := range prod.Vars {
		vars[i] = v
		if v.IsRef() {
			ref := v.RefValue()
			if orig, ok := inv[ref.Root]; ok {
				vars[i] = dataval.NewRef(orig, ref.Displ)
			}
		}
	}
	out.Vars = vars
	return out, nil
}

// copyTransitions clones ta's transition set without its final states.
func copyTransitions(ta *treeaut.TA) *treeaut.TA {
	out := treeaut.New(ta.Pool(), ta.Arena())
	for _, tr := range ta.Transitions() {
		out.AddTransition(ta.Children(tr), tr.Label, tr.RHS)
	}
	return out
}

// replaceStatesWithRefs rewrites every child occurrence of a state in
// targets as the DataLeaf carrying the mapped Ref value.
func replaceStatesWithRefs(ta *treeaut.TA, arena *label.Arena, targets map[treeaut.State]dataval.Data) *treeaut.TA {
	out := treeaut.New(ta.Pool(), ta.Arena())
	for _, tr := range ta.Transitions() {
		children := ta.Children(tr)
		newChildren := make([]treeaut.State, len(children))
		for i, c := range children {
			if d, ok := targets[c]; ok && c.Kind == treeaut.Internal {
				id := arena.InternData(d)
				newChildren[i] = treeaut.State{Kind: treeaut.DataLeaf, ID: uint32(id)}
				continue
			}
			newChildren[i] = c
		}
		out.AddTransition(newChildren, tr.Label, tr.RHS)
	}
	for _, q := range ta.FinalStates() {
		out.AddFinal(q)
	}
	return out
}
