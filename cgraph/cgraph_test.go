package cgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forestfa/fa/cgraph"
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

func TestComputeFindsReferencesAndSelfReference(t *testing.T) {
	arena := label.NewArena()
	pool := treeaut.NewLHSPool()
	ta := treeaut.New(pool, arena)

	nodeLbl, err := arena.InternNode([]label.AbstractBoxEntry{
		{Kind: label.AbstractSelector, Sel: label.SelData{Offset: 0, Size: 8}},
		{Kind: label.AbstractSelector, Sel: label.SelData{Offset: 8, Size: 8}},
	})
	assert.NoError(t, err)

	refToOther := arena.InternData(dataval.NewRef(2, 0))
	refToSelf := arena.InternData(dataval.NewRef(1, 0))

	root := treeaut.State{Kind: treeaut.Internal, ID: 0}
	ta.AddTransition([]treeaut.State{
		{Kind: treeaut.DataLeaf, ID: uint32(refToOther)},
		{Kind: treeaut.DataLeaf, ID: uint32(refToSelf)},
	}, nodeLbl, root)
	ta.AddFinal(root)

	sig := cgraph.Compute(1, ta, arena)
	assert.Len(t, sig, 2)
	other := sig[2]
	assert.Equal(t, 1, other.RefCount)
	assert.False(t, other.HasSelfReference)
	_, hasOffset0 := other.EntryOffsets[0]
	assert.True(t, hasOffset0)

	self := sig[1]
	assert.True(t, self.HasSelfReference)
}

func TestMergeableAndEqual(t *testing.T) {
	a := cgraph.Signature{
		2: &cgraph.Entry{Target: 2, RefCount: 1, EntryOffsets: map[dataval.Offset]struct{}{0: {}}},
	}
	b := cgraph.Signature{
		2: &cgraph.Entry{Target: 2, RefCount: 2, EntryOffsets: map[dataval.Offset]struct{}{0: {}, 8: {}}},
	}
	assert.True(t, cgraph.Mergeable(a, b))
	assert.False(t, cgraph.Mergeable(b, a))
	assert.False(t, cgraph.Equal(a, b))
	assert.True(t, cgraph.Equal(a, a))
}
