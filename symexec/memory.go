package symexec

import (
	"fmt"

	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/diag"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// wordSize is the selector granularity alloc() lays out a fresh block
// in: one selector per wordSize bytes, each initially Undef. The
// block's size is carried entirely by the resulting NodeLabel's
// selector count, so load/store can detect an out-of-bounds offset
// purely from NodeLabel.ChildIndexAt without separate bookkeeping.
// free does not consult the label: it rejects any reference with a
// nonzero displacement as pointing inside the block.
const wordSize = 8

// alloc builds a fresh root of size bytes (rounded up to a whole number
// of words), every selector initially Undef, and returns its index.
func alloc(f *forestaut.FA, size int64) (dataval.RootIdx, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: negative alloc size %d", ErrUnsupportedOperator, size)
	}
	n := int((size + wordSize - 1) / wordSize)
	if n == 0 {
		n = 1
	}
	arena := f.Backend.Arena
	boxes := make([]label.AbstractBoxEntry, n)
	children := make([]treeaut.State, n)
	undef := arena.InternData(dataval.NewUndef())
	for i := 0; i < n; i++ {
		boxes[i] = label.AbstractBoxEntry{Kind: label.AbstractSelector, Sel: label.SelData{Offset: dataval.Offset(i * wordSize), Size: wordSize}}
		children[i] = treeaut.State{Kind: treeaut.DataLeaf, ID: uint32(undef)}
	}
	nodeLbl, err := arena.InternNode(boxes)
	if err != nil {
		return 0, err
	}
	ta := treeaut.New(f.Backend.Pool, arena)
	root := treeaut.State{Kind: treeaut.Internal, ID: 0}
	ta.AddTransition(children, nodeLbl, root)
	ta.AddFinal(root)
	return f.AppendRoot(ta), nil
}

// free validates and releases the block ref points at.
func free(f *forestaut.FA, loc diag.Location, ref dataval.Ref) error {
	if ref.Displ != 0 {
		return diag.NewProgramError(loc, diag.ErrInteriorFree, nil, "")
	}
	ta := f.Root(ref.Root)
	if ta == nil {
		return diag.NewProgramError(loc, diag.ErrInvalidReference, nil, "double free")
	}
	f.InvalidateReference(ref.Root)
	if err := f.SetRoot(ref.Root, nil); err != nil {
		return err
	}
	return nil
}

// fieldTransition returns the unique accepting transition of ta (the
// "current shape" of a flat, non-recursive memory node) and its
// NodeLabel, or ok=false if ta has no final state (a freed block).
func fieldTransition(ta *treeaut.TA, arena *label.Arena) (treeaut.Transition, *label.NodeLabel, bool) {
	finals := ta.FinalStates()
	if len(finals) == 0 {
		return treeaut.Transition{}, nil, false
	}
	want := finals[0]
	for _, tr := range ta.Transitions() {
		if tr.RHS == want {
			lbl := arena.Get(tr.Label)
			if lbl.Kind() != label.KindNode {
				continue
			}
			return tr, lbl.Node(), true
		}
	}
	return treeaut.Transition{}, nil, false
}

// load reads the data value at ref.Displ+extra in the block ref points
// at.
func load(f *forestaut.FA, loc diag.Location, ref dataval.Ref, extra dataval.Offset) (dataval.Data, error) {
	ta := f.Root(ref.Root)
	if ta == nil {
		return dataval.Data{}, diag.NewProgramError(loc, diag.ErrInvalidReference, nil, "")
	}
	tr, nl, ok := fieldTransition(ta, f.Backend.Arena)
	if !ok {
		return dataval.Data{}, diag.NewProgramError(loc, diag.ErrInvalidReference, nil, "")
	}
	ci, ok := nl.ChildIndexAt(ref.Displ + extra)
	if !ok {
		return dataval.Data{}, diag.NewProgramError(loc, diag.ErrBlockSizeMismatch, nil, "load offset out of range")
	}
	children := ta.Children(tr)
	child := children[ci]
	if child.Kind != treeaut.DataLeaf {
		return dataval.Data{}, diag.NewProgramError(loc, diag.ErrInconsistentSelectorMap, nil, "")
	}
	dlbl := f.Backend.Arena.Get(label.LabelID(child.ID))
	if dlbl.Kind() != label.KindData {
		return dataval.Data{}, diag.NewProgramError(loc, diag.ErrInconsistentSelectorMap, nil, "")
	}
	return dlbl.Data().Value, nil
}

// store rewrites the selector at ref.Displ+extra in the block ref
// points at to hold v, replacing the block's single accepting
// transition with a new one.
func store(f *forestaut.FA, loc diag.Location, ref dataval.Ref, extra dataval.Offset, v dataval.Data) error {
	ta := f.Root(ref.Root)
	if ta == nil {
		return diag.NewProgramError(loc, diag.ErrInvalidReference, nil, "")
	}
	tr, nl, ok := fieldTransition(ta, f.Backend.Arena)
	if !ok {
		return diag.NewProgramError(loc, diag.ErrInvalidReference, nil, "")
	}
	ci, ok := nl.ChildIndexAt(ref.Displ + extra)
	if !ok {
		return diag.NewProgramError(loc, diag.ErrBlockSizeMismatch, nil, "store offset out of range")
	}

	arena := f.Backend.Arena
	children := append([]treeaut.State(nil), ta.Children(tr)...)
	newID := arena.InternData(v)
	children[ci] = treeaut.State{Kind: treeaut.DataLeaf, ID: uint32(newID)}

	out := treeaut.New(ta.Pool(), arena)
	for _, other := range ta.Transitions() {
		if other == tr {
			continue
		}
		out.AddTransition(ta.Children(other), other.Label, other.RHS)
	}
	out.AddTransition(children, tr.Label, tr.RHS)
	for _, q := range ta.FinalStates() {
		out.AddFinal(q)
	}
	return f.SetRoot(ref.Root, out.UselessAndUnreachableFree())
}

// ptrPlus advances ref by delta bytes of selector offset; the
// legality of the resulting offset
// is checked lazily at the next load/store, matching the original's
// "pointer arithmetic by selector offset" without eagerly bounds
// checking an offset that might never be dereferenced.
func ptrPlus(ref dataval.Ref, delta int64) dataval.Ref {
	return dataval.Ref{Root: ref.Root, Displ: ref.Displ + dataval.Offset(delta)}
}
