package label

import (
	"fmt"

	"github.com/forestfa/fa/dataval"
)

// LabelID is a handle into an Arena. Two LabelIDs are equal iff the
// labels they denote are structurally equal (hash-consing invariant).
type LabelID uint32

// BoxId identifies a box signature registered with a BoxManager. The FA
// fragment a box denotes is stored by package forestaut, keyed by BoxId.
type BoxId uint32

// TypeBoxId identifies a named struct/type tag (e.g. "struct list_node"),
// used to forbid merging of nodes with unrelated layouts during
// finite-height abstraction.
type TypeBoxId uint32

// SelData describes one selector (typed child pointer slot) inside a
// memory node: its byte Offset in the node, its Size in bytes, and a
// Displ applied when the selector is itself reached via another
// selector's base (used for nested/embedded structs).
type SelData struct {
	Offset dataval.Offset
	Size   int
	Displ  dataval.Offset
}

// AbstractBoxKind discriminates the sealed AbstractBox variant
// Selector(SelData) | Type(TypeBox) | Box(BoxId) | Data. Only Box
// participates in folding.
type AbstractBoxKind uint8

const (
	AbstractSelector AbstractBoxKind = iota
	AbstractType
	AbstractBox
	AbstractData
)

// AbstractBoxEntry is one entry of a NodeLabel's ordered box list.
type AbstractBoxEntry struct {
	Kind AbstractBoxKind
	Sel  SelData   // valid iff Kind == AbstractSelector
	Typ  TypeBoxId // valid iff Kind == AbstractType
	Box  BoxId     // valid iff Kind == AbstractBox
}

// Arity reports how many transition children this entry consumes: a
// Selector or a Box each bind exactly one child (the pointed-to subtree);
// Type and Data tags bind none.
func (e AbstractBoxEntry) Arity() int {
	switch e.Kind {
	case AbstractSelector, AbstractBox:
		return 1
	default:
		return 0
	}
}

// offsetEntry is the cached O(1) selector-lookup result for one Offset.
type offsetEntry struct {
	boxIndex   int // index into NodeLabel.Boxes
	childIndex int // index into the transition's child (state) list
}

// NodeLabel describes a typed memory node: an ordered list of abstract
// boxes (selectors, nested boxes, type tag), the SelData of its selectors,
// and a cached offset -> (box, child index) map for O(1) lookup.
type NodeLabel struct {
	Boxes        []AbstractBoxEntry
	byOffset     map[dataval.Offset]offsetEntry
	offsetOfChild map[int]dataval.Offset
}

// NewNodeLabel builds a NodeLabel from its ordered box list, computing the
// offset cache eagerly (construction is single-threaded; no lazy-init
// lock is needed). Returns ErrDuplicateSelectorOffset if two selector
// entries share an Offset.
func NewNodeLabel(boxes []AbstractBoxEntry) (*NodeLabel, error) {
	nl := &NodeLabel{
		Boxes:         append([]AbstractBoxEntry(nil), boxes...),
		byOffset:      make(map[dataval.Offset]offsetEntry, len(boxes)),
		offsetOfChild: make(map[int]dataval.Offset, len(boxes)),
	}
	child := 0
	for i, b := range nl.Boxes {
		if b.Kind == AbstractSelector {
			if _, dup := nl.byOffset[b.Sel.Offset]; dup {
				return nil, fmt.Errorf("%w: offset %d", ErrDuplicateSelectorOffset, b.Sel.Offset)
			}
			nl.byOffset[b.Sel.Offset] = offsetEntry{boxIndex: i, childIndex: child}
			nl.offsetOfChild[child] = b.Sel.Offset
		}
		child += b.Arity()
	}
	return nl, nil
}

// OffsetAtChild returns the selector Offset that governs the transition
// child at childIndex (the inverse of ChildIndexAt), and whether the
// child at that index is a selector at all (a Box-kind entry also
// consumes a child slot but has no selector offset).
func (nl *NodeLabel) OffsetAtChild(childIndex int) (dataval.Offset, bool) {
	off, ok := nl.offsetOfChild[childIndex]
	return off, ok
}

// ChildIndexAt returns the transition child index whose selector sits at
// the given Offset, and whether one exists.
func (nl *NodeLabel) ChildIndexAt(off dataval.Offset) (int, bool) {
	e, ok := nl.byOffset[off]
	if !ok {
		return 0, false
	}
	return e.childIndex, true
}

// BoxIndexAt returns the index into Boxes of the selector at the given
// Offset, and whether one exists.
func (nl *NodeLabel) BoxIndexAt(off dataval.Offset) (int, bool) {
	e, ok := nl.byOffset[off]
	if !ok {
		return 0, false
	}
	return e.boxIndex, true
}

// Arity is the total number of transition children this node label binds.
func (nl *NodeLabel) Arity() int {
	n := 0
	for _, b := range nl.Boxes {
		n += b.Arity()
	}
	return n
}

// DataLabel wraps a single leaf data value.
type DataLabel struct {
	Value dataval.Data
}

// VectorLabel is a snapshot of live data values at a component root.
// UFAE encoding does not use it: fixpoint.Encode returns the
// live-variable vector alongside the synthetic TA instead.
type VectorLabel struct {
	Values []dataval.Data
}

// Kind discriminates which shape a Label holds.
type Kind uint8

const (
	KindNode Kind = iota
	KindData
	KindVector
)

// Label is the sealed union described at the top of this package.
type Label struct {
	kind Kind
	node *NodeLabel
	data *DataLabel
	vec  *VectorLabel
}

// Kind reports which variant l holds.
func (l Label) Kind() Kind { return l.kind }

// Node returns the wrapped NodeLabel. Panics with ErrWrongLabelKind if l
// is not a node label.
func (l Label) Node() *NodeLabel {
	if l.kind != KindNode {
		panic(fmt.Errorf("%w: %v", ErrWrongLabelKind, l.kind))
	}
	return l.node
}

// Data returns the wrapped DataLabel.
func (l Label) Data() *DataLabel {
	if l.kind != KindData {
		panic(fmt.Errorf("%w: %v", ErrWrongLabelKind, l.kind))
	}
	return l.data
}

// Vector returns the wrapped VectorLabel.
func (l Label) Vector() *VectorLabel {
	if l.kind != KindVector {
		panic(fmt.Errorf("%w: %v", ErrWrongLabelKind, l.kind))
	}
	return l.vec
}

// Arity is the number of transition children this label expects: a node
// label's selector/box count, or zero for data and vector leaves.
func (l Label) Arity() int {
	if l.kind == KindNode {
		return l.node.Arity()
	}
	return 0
}

func (l Label) String() string {
	switch l.kind {
	case KindNode:
		return fmt.Sprintf("Node(%d boxes)", len(l.node.Boxes))
	case KindData:
		return fmt.Sprintf("Data(%s)", l.data.Value)
	case KindVector:
		return fmt.Sprintf("Vector(%d)", len(l.vec.Values))
	default:
		return "Label(?)"
	}
}
