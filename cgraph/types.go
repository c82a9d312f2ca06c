package cgraph

import (
	"sort"

	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// Entry is one tuple of a root's cutpoint signature: a target
// root reached from the owning root, how many distinct reference sites
// name it, whether any of those sites is a self-reference (the owning
// root refers to itself, as in a cyclic list), and the set of selector
// offsets at which the reference occurs.
type Entry struct {
	Target           dataval.RootIdx
	RefCount         int
	HasSelfReference bool
	EntryOffsets     map[dataval.Offset]struct{}
}

// Signature is the per-root cutpoint signature: one Entry per distinct
// target root reachable from the owning root.
type Signature map[dataval.RootIdx]*Entry

// Graph is the forest automaton's connection graph: one Signature per
// root.
type Graph map[dataval.RootIdx]Signature

// Compute walks every transition of ta (the TA of root `owner`) looking
// for DataLeaf children whose data label is a Ref, and builds `owner`'s
// Signature. A Ref{owner, *} found in owner's own TA sets
// HasSelfReference for that entry.
func Compute(owner dataval.RootIdx, ta *treeaut.TA, arena *label.Arena) Signature {
	sig := make(Signature)
	for _, tr := range ta.Transitions() {
		lbl := arena.Get(tr.Label)
		if lbl.Kind() != label.KindNode {
			continue
		}
		nl := lbl.Node()
		children := ta.Children(tr)
		for childIdx, c := range children {
			if c.Kind != treeaut.DataLeaf {
				continue
			}
			dlbl := arena.Get(label.LabelID(c.ID))
			if dlbl.Kind() != label.KindData || !dlbl.Data().Value.IsRef() {
				continue
			}
			ref := dlbl.Data().Value.RefValue()
			e, ok := sig[ref.Root]
			if !ok {
				e = &Entry{Target: ref.Root, EntryOffsets: make(map[dataval.Offset]struct{})}
				sig[ref.Root] = e
			}
			e.RefCount++
			if ref.Root == owner {
				e.HasSelfReference = true
			}
			if off, ok := nl.OffsetAtChild(childIdx); ok {
				e.EntryOffsets[off] = struct{}{}
			}
		}
	}
	return sig
}

// Mergeable reports whether signature a can be embedded into signature
// b: every entry of a has a
// corresponding entry in b for the same target, with a's RefCount no
// greater than b's, and a's HasSelfReference implying b's.
func Mergeable(a, b Signature) bool {
	for target, ea := range a {
		eb, ok := b[target]
		if !ok {
			return false
		}
		if ea.RefCount > eb.RefCount {
			return false
		}
		if ea.HasSelfReference && !eb.HasSelfReference {
			return false
		}
	}
	return true
}

// Equal reports whether a and b are the same signature (equal target
// sets and, per target, equal RefCount/HasSelfReference/EntryOffsets).
// This is the equality predicate that abstraction, folding, and
// normalization refine their merge candidates with.
func Equal(a, b Signature) bool {
	if len(a) != len(b) {
		return false
	}
	for target, ea := range a {
		eb, ok := b[target]
		if !ok || ea.RefCount != eb.RefCount || ea.HasSelfReference != eb.HasSelfReference {
			return false
		}
		if len(ea.EntryOffsets) != len(eb.EntryOffsets) {
			return false
		}
		for off := range ea.EntryOffsets {
			if _, ok := eb.EntryOffsets[off]; !ok {
				return false
			}
		}
	}
	return true
}

// Targets returns the signature's target roots in deterministic order.
func (s Signature) Targets() []dataval.RootIdx {
	out := make([]dataval.RootIdx, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
