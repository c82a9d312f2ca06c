package fixpoint

import (
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// maxCombinations bounds the Cartesian product Encode takes over
// per-root final-state sets. In practice
// each root settles to a single final state after abstraction, so this
// is reached only pathologically; it is the same style of pragmatic cap
// treeaut.Subseteq's determinize uses.
const maxCombinations = 256

// Encode builds the UFAE synthetic TA for one FA. Because a
// node label's Arity is fixed by its selector count, the live-variable
// vector that tags the synthetic transition is
// carried out-of-band: Encode returns it alongside the synthetic TA
// rather than folding it into the label itself (Label.Arity() is 0 for
// a Vector label, which would conflict with a transition of arity
// NumRoots()).
//
// Every present root is unioned, disjointly renamed, into the result;
// each root contributes one child position to a synthetic "record"
// node label whose selector offsets are just 0..NumRoots()-1. A hole
// root contributes an Undef data leaf. When a root has more than one
// final state the record is replicated once per combination (bounded
// by maxCombinations) rather than picking one arbitrarily, so the
// encoding does not silently under-approximate the FA's language.
func Encode(f *forestaut.FA, pool *treeaut.LHSPool, arena *label.Arena) (*treeaut.TA, []dataval.Data, error) {
	out := treeaut.New(pool, arena)

	perRoot := make([][]treeaut.State, f.NumRoots())
	for i, ta := range f.Roots {
		if ta == nil {
			undef := arena.InternData(dataval.NewUndef())
			perRoot[i] = []treeaut.State{{Kind: treeaut.DataLeaf, ID: uint32(undef)}}
			continue
		}
		renamed := unionInto(out, ta)
		if len(renamed) == 0 {
			// A present root with no final state cannot happen under
			// invariant I1; treat defensively as a hole rather than
			// panicking inside an abstraction helper.
			undef := arena.InternData(dataval.NewUndef())
			renamed = []treeaut.State{{Kind: treeaut.DataLeaf, ID: uint32(undef)}}
		}
		perRoot[i] = renamed
	}

	boxes := make([]label.AbstractBoxEntry, f.NumRoots())
	for i := range boxes {
		boxes[i] = label.AbstractBoxEntry{Kind: label.AbstractSelector, Sel: label.SelData{Offset: dataval.Offset(i), Size: 0}}
	}
	recordLabel, err := arena.InternNode(boxes)
	if err != nil {
		return nil, nil, err
	}

	combos, err := cartesianStates(perRoot)
	if err != nil {
		return nil, nil, err
	}

	synth := uint32(0)
	for _, children := range combos {
		rhs := treeaut.State{Kind: treeaut.Internal, ID: synthStateBase + synth}
		synth++
		out.AddTransition(children, recordLabel, rhs)
		out.AddFinal(rhs)
	}
	return out, f.Vars, nil
}

// synthStateBase keeps Encode's synthetic root states out of the range
// any unioned root TA could itself occupy after unionInto's disjoint
// renaming: unionInto numbers a fresh root's states upward from the
// largest id below synthStateBase already in the result.
const synthStateBase = 1 << 30

func cartesianStates(perRoot [][]treeaut.State) ([][]treeaut.State, error) {
	combos := [][]treeaut.State{{}}
	for _, options := range perRoot {
		var next [][]treeaut.State
		for _, prefix := range combos {
			for _, opt := range options {
				row := append(append([]treeaut.State(nil), prefix...), opt)
				next = append(next, row)
				if len(next) > maxCombinations {
					return nil, ErrTooManyCombinations
				}
			}
		}
		combos = next
	}
	return combos, nil
}

// unionInto disjointly renames src's Internal states into dst's state
// space (picking fresh ids above dst's current maximum, the same
// approach normalize.mergeComponent uses), copies its transitions into
// dst, and returns the renamed final states so the caller can reference
// them from a new top-level transition. They are not marked final in
// dst.
func unionInto(dst, src *treeaut.TA) []treeaut.State {
	nextInternal := uint32(0)
	for _, q := range dst.States() {
		if q.Kind == treeaut.Internal && q.ID < synthStateBase && q.ID >= nextInternal {
			nextInternal = q.ID + 1
		}
	}
	sigma := make(map[treeaut.State]treeaut.State)
	for _, q := range src.States() {
		if q.Kind == treeaut.DataLeaf {
			continue
		}
		sigma[q] = treeaut.State{Kind: treeaut.Internal, ID: nextInternal}
		nextInternal++
	}
	renamed, _ := treeaut.Rename(src, sigma, true)
	for _, tr := range renamed.Transitions() {
		dst.AddTransition(renamed.Children(tr), tr.Label, tr.RHS)
	}
	return renamed.FinalStates()
}
