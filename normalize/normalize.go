package normalize

import (
	"fmt"
	"sort"

	"github.com/forestfa/fa/cgraph"
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// Normalize puts f into canonical form. pinned names the roots of
// program variables (and the frame/global bases); they always survive
// as separate components regardless of reference count.
//
// When a single transition carries more than one Ref leaf into the
// same non-cutpoint successor, only the first such position is spliced
// and the transition is otherwise left as-is.
func Normalize(f *forestaut.FA, pinned map[dataval.RootIdx]bool, policy GarbagePolicy) (*forestaut.FA, *Log, error) {
	cg := f.ConnectionGraph()

	inDegree := make(map[dataval.RootIdx]int)
	for _, sig := range cg {
		for target, e := range sig {
			inDegree[target] += e.RefCount
		}
	}

	marked := make(map[dataval.RootIdx]bool)
	for i := range f.Roots {
		r := dataval.RootIdx(i)
		marked[r] = pinned[r] || inDegree[r] > 1
	}

	order, visited := dfsOrder(f, cg, pinned)

	if policy == FailOnGarbage {
		for i, ta := range f.Roots {
			r := dataval.RootIdx(i)
			if ta == nil || visited[r] || pinned[r] {
				continue
			}
			return nil, nil, fmt.Errorf("%w: root %d", ErrGarbageRoot, r)
		}
	}

	var log Log
	merged := make(map[dataval.RootIdx]*treeaut.TA)
	building := make(map[dataval.RootIdx]bool)

	var build func(dataval.RootIdx) *treeaut.TA
	build = func(r dataval.RootIdx) *treeaut.TA {
		if ta, ok := merged[r]; ok {
			return ta
		}
		if building[r] {
			// A reference cycle among non-cutpoint components would be a
			// contradiction (a root reached twice has in-degree > 1 and
			// would be marked); guard against it defensively rather than
			// recursing forever.
			return f.Roots[r]
		}
		building[r] = true
		cur := f.Roots[r]
		targets := cg[r].Targets()
		for _, c := range targets {
			if marked[c] {
				continue
			}
			childTA := build(c)
			next, joins := mergeComponent(cur, childTA, f.Backend.Arena, c)
			cur = next
			log.Merges = append(log.Merges, Merge{Into: r, From: c, Joins: joins})
		}
		merged[r] = cur
		building[r] = false
		return cur
	}

	survivors := make([]dataval.RootIdx, 0, len(order))
	for _, r := range order {
		if marked[r] {
			build(r)
			survivors = append(survivors, r)
		}
	}

	out := forestaut.New(f.Backend)
	perm := make(map[dataval.RootIdx]dataval.RootIdx, len(survivors))
	for _, r := range survivors {
		newIdx := out.AppendRoot(merged[r])
		perm[r] = newIdx
	}
	out.RelabelReferences(perm)

	newVars := make([]dataval.Data, len(f.Vars))
	for i, v := range f.Vars {
		if v.IsRef() {
			ref := v.RefValue()
			if np, ok := perm[ref.Root]; ok {
				newVars[i] = dataval.NewRef(np, ref.Displ)
				continue
			}
		}
		newVars[i] = v
	}
	out.Vars = newVars

	log.Perm = perm
	log.Order = survivors
	return out, &log, nil
}

// dfsOrder walks cg depth-first starting from every pinned root (in
// increasing index order, for determinism), recording a pre-order
// visitation list and the visited set.
func dfsOrder(f *forestaut.FA, cg map[dataval.RootIdx]cgraph.Signature, pinned map[dataval.RootIdx]bool) ([]dataval.RootIdx, map[dataval.RootIdx]bool) {
	var order []dataval.RootIdx
	visited := make(map[dataval.RootIdx]bool)

	var roots []dataval.RootIdx
	for r := range pinned {
		if pinned[r] {
			roots = append(roots, r)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	var dfs func(dataval.RootIdx)
	dfs = func(r dataval.RootIdx) {
		if visited[r] {
			return
		}
		visited[r] = true
		order = append(order, r)
		for _, c := range cg[r].Targets() {
			dfs(c)
		}
	}
	for _, r := range roots {
		dfs(r)
	}
	return order, visited
}

// mergeComponent splices from (root index fromIdx) into into: every
// transition of into whose children contain a DataLeaf Ref{fromIdx, *}
// is replaced by one transition per final state of from (disjoint
// renamed into into's state space), and every transition of the
// renamed from is copied in as ordinary (non-final) internal
// transitions of the result.
func mergeComponent(into, from *treeaut.TA, arena *label.Arena, fromIdx dataval.RootIdx) (*treeaut.TA, []JoinState) {
	nextInternal := uint32(0)
	for _, q := range into.States() {
		if q.Kind == treeaut.Internal && q.ID >= nextInternal {
			nextInternal = q.ID + 1
		}
	}
	sigma := make(map[treeaut.State]treeaut.State)
	for _, q := range from.States() {
		if q.Kind == treeaut.DataLeaf {
			continue
		}
		sigma[q] = treeaut.State{Kind: treeaut.Internal, ID: nextInternal}
		nextInternal++
	}
	renamedFrom, _ := treeaut.Rename(from, sigma, true)

	out := treeaut.New(into.Pool(), into.Arena())
	var joins []JoinState

	for _, tr := range into.Transitions() {
		children := into.Children(tr)
		splicePos := -1
		var spliceDispl dataval.Offset
		for i, c := range children {
			if c.Kind != treeaut.DataLeaf {
				continue
			}
			lbl := arena.Get(label.LabelID(c.ID))
			if lbl.Kind() != label.KindData || !lbl.Data().Value.IsRef() {
				continue
			}
			if lbl.Data().Value.RefValue().Root == fromIdx {
				splicePos = i
				spliceDispl = lbl.Data().Value.RefValue().Displ
				break
			}
		}
		if splicePos < 0 {
			out.AddTransition(children, tr.Label, tr.RHS)
			continue
		}
		for _, qf := range renamedFrom.FinalStates() {
			newChildren := append([]treeaut.State(nil), children...)
			newChildren[splicePos] = qf
			out.AddTransition(newChildren, tr.Label, tr.RHS)
			joins = append(joins, JoinState{At: tr.RHS, Image: qf, Displ: spliceDispl})
		}
	}

	for _, tr := range renamedFrom.Transitions() {
		out.AddTransition(renamedFrom.Children(tr), tr.Label, tr.RHS)
	}

	for _, q := range into.FinalStates() {
		out.AddFinal(q)
	}

	return out, joins
}
