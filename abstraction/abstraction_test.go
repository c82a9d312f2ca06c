package abstraction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestfa/fa/abstraction"
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

func oneSelectorLabel(b *forestaut.Backend) label.LabelID {
	lbl, err := b.Arena.InternNode([]label.AbstractBoxEntry{
		{Kind: label.AbstractSelector, Sel: label.SelData{Offset: 0, Size: 8}},
	})
	if err != nil {
		panic(err)
	}
	return lbl
}

// chainTA builds a 3-cell acyclic list: q0 (nil-terminated base cell),
// q1 (points at q0), q2 (points at q1), q2 final.
func chainTA(b *forestaut.Backend) (*treeaut.TA, treeaut.State, treeaut.State, treeaut.State) {
	nodeLbl := oneSelectorLabel(b)
	dataLbl := b.Arena.InternData(dataval.NewInt(0))

	ta := treeaut.New(b.Pool, b.Arena)
	q0 := treeaut.State{Kind: treeaut.Internal, ID: 0}
	q1 := treeaut.State{Kind: treeaut.Internal, ID: 1}
	q2 := treeaut.State{Kind: treeaut.Internal, ID: 2}

	ta.AddTransition([]treeaut.State{{Kind: treeaut.DataLeaf, ID: uint32(dataLbl)}}, nodeLbl, q0)
	ta.AddTransition([]treeaut.State{q0}, nodeLbl, q1)
	ta.AddTransition([]treeaut.State{q1}, nodeLbl, q2)
	ta.AddFinal(q2)
	return ta, q0, q1, q2
}

func internalStates(ta *treeaut.TA) int {
	n := 0
	for _, q := range ta.States() {
		if q.Kind == treeaut.Internal {
			n++
		}
	}
	return n
}

func TestFiniteHeightMergesRepeatedListCells(t *testing.T) {
	b := forestaut.NewBackend()
	ta, _, _, _ := chainTA(b)

	f := forestaut.New(b)
	f.AppendRoot(ta)

	out, err := abstraction.FiniteHeight(f, map[dataval.RootIdx]bool{}, abstraction.HeightOptions{Height: 1})
	require.NoError(t, err)

	result := out.Root(0)
	assert.Equal(t, 2, internalStates(result), "the two repeated list cells should collapse to one representative")
	assert.Len(t, result.FinalStates(), 1)
}

func TestFiniteHeightSkipsPinnedRoots(t *testing.T) {
	b := forestaut.NewBackend()
	ta, _, _, _ := chainTA(b)

	f := forestaut.New(b)
	f.AppendRoot(ta)

	out, err := abstraction.FiniteHeight(f, map[dataval.RootIdx]bool{0: true}, abstraction.HeightOptions{Height: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, internalStates(out.Root(0)))
}

func TestPredicateWithEmptySetCollapsesToUniversalRelation(t *testing.T) {
	b := forestaut.NewBackend()
	ta, _, _, _ := chainTA(b)

	f := forestaut.New(b)
	f.AppendRoot(ta)

	out, err := abstraction.Predicate(f, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, internalStates(out.Root(0)), "no predicates and no cutpoints means every internal state merges")
}

func TestPredicateDistinguishesBaseCaseFromRecursiveCells(t *testing.T) {
	b := forestaut.NewBackend()
	ta, _, _, _ := chainTA(b)
	nodeLbl := oneSelectorLabel(b)
	dataLbl := b.Arena.InternData(dataval.NewInt(0))

	// A predicate automaton recognizing exactly the "single base cell"
	// shape: one transition from the zero data leaf.
	pred := treeaut.New(b.Pool, b.Arena)
	p0 := treeaut.State{Kind: treeaut.Internal, ID: 100}
	pred.AddTransition([]treeaut.State{{Kind: treeaut.DataLeaf, ID: uint32(dataLbl)}}, nodeLbl, p0)
	pred.AddFinal(p0)

	f := forestaut.New(b)
	f.AppendRoot(ta)

	out, err := abstraction.Predicate(f, []*treeaut.TA{pred})
	require.NoError(t, err)
	assert.Equal(t, 2, internalStates(out.Root(0)), "the base cell must stay separate from the recursive cells it is not indistinguishable from")
}
