package normalize

import (
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/treeaut"
)

// GarbagePolicy controls what normalize does with a root reachable
// from neither a pinned component nor any surviving component.
type GarbagePolicy uint8

const (
	// RemoveGarbage drops unreachable roots silently (they are simply
	// not copied into the normalized FA).
	RemoveGarbage GarbagePolicy = iota
	// FailOnGarbage returns ErrGarbageRoot instead.
	FailOnGarbage
)

// JoinState is one substitution performed while merging component From
// into component Into: the RHS state in Into's (pre-merge) TA whose
// transition held the Ref{From,*} leaf, and the state that was spliced
// in its place (the image of one of From's final states after
// disjoint-renaming into Into's state space). The backward run
// reconstructs From by finding, in a later product automaton, the
// states reachable from Image and re-tagging them as the boundary of
// the restored component.
type JoinState struct {
	At    treeaut.State
	Image treeaut.State
	// Displ is the displacement the consumed Ref{From, Displ} leaf
	// carried, so Revert can restore the reference verbatim.
	Displ dataval.Offset
}

// Merge is one recorded "merge c into r" step.
type Merge struct {
	Into  dataval.RootIdx
	From  dataval.RootIdx
	Joins []JoinState
}

// Log records one Normalize call: the sequence of merges
// performed (in the order applied, so replaying or reverting can walk
// it start-to-end or end-to-start), and the final permutation from old
// root indices (pre-normalization) to new ones (post-truncation).
type Log struct {
	Merges []Merge
	Perm   map[dataval.RootIdx]dataval.RootIdx
	Order  []dataval.RootIdx
}
