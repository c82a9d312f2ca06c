package forestaut_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// singleCellTA builds a one-transition TA: a one-selector node label
// over a single DataLeaf child carrying dataVal.
func singleCellTA(b *forestaut.Backend, dataVal dataval.Data) *treeaut.TA {
	ta := treeaut.New(b.Pool, b.Arena)
	nodeLbl, err := b.Arena.InternNode([]label.AbstractBoxEntry{
		{Kind: label.AbstractSelector, Sel: label.SelData{Offset: 0, Size: 8}},
	})
	if err != nil {
		panic(err)
	}
	dataLbl := b.Arena.InternData(dataVal)
	root := treeaut.State{Kind: treeaut.Internal, ID: 0}
	ta.AddTransition([]treeaut.State{{Kind: treeaut.DataLeaf, ID: uint32(dataLbl)}}, nodeLbl, root)
	ta.AddFinal(root)
	return ta
}

func refChild(ta *treeaut.TA, arena *label.Arena) dataval.Data {
	for _, tr := range ta.Transitions() {
		for _, c := range ta.Children(tr) {
			if c.Kind == treeaut.DataLeaf {
				return arena.Get(label.LabelID(c.ID)).Data().Value
			}
		}
	}
	return dataval.NewUndef()
}

func TestAllocAppendSetRoot(t *testing.T) {
	b := forestaut.NewBackend()
	f := forestaut.New(b)

	hole := f.AllocRoot()
	assert.Nil(t, f.Root(hole))

	ta := singleCellTA(b, dataval.NewInt(7))
	idx := f.AppendRoot(ta)
	assert.Same(t, ta, f.Root(idx))

	err := f.SetRoot(hole, ta)
	require.NoError(t, err)
	assert.Same(t, ta, f.Root(hole))

	err = f.SetRoot(dataval.RootIdx(99), ta)
	assert.ErrorIs(t, err, forestaut.ErrRootOutOfRange)
}

func TestRelabelReferencesRewritesRefsAndLeavesOthersAlone(t *testing.T) {
	b := forestaut.NewBackend()
	f := forestaut.New(b)

	r0 := f.AppendRoot(singleCellTA(b, dataval.NewRef(1, 0)))
	r1 := f.AppendRoot(singleCellTA(b, dataval.NewInt(3)))
	_ = r1

	f.RelabelReferences(map[dataval.RootIdx]dataval.RootIdx{1: 5})

	got := refChild(f.Root(r0), b.Arena)
	require.True(t, got.IsRef())
	assert.Equal(t, dataval.RootIdx(5), got.RefValue().Root)
}

func TestInvalidateReferenceTurnsRefIntoUndef(t *testing.T) {
	b := forestaut.NewBackend()
	f := forestaut.New(b)

	r0 := f.AppendRoot(singleCellTA(b, dataval.NewRef(1, 0)))
	f.AppendRoot(singleCellTA(b, dataval.NewInt(3)))

	f.InvalidateReference(1)

	got := refChild(f.Root(r0), b.Arena)
	assert.Equal(t, dataval.KindUndef, got.Kind())
}

func TestFreePositionMovesLastRootAndRepairsReferences(t *testing.T) {
	b := forestaut.NewBackend()
	f := forestaut.New(b)

	r0 := f.AppendRoot(singleCellTA(b, dataval.NewRef(2, 0))) // refers to the last root
	f.AppendRoot(singleCellTA(b, dataval.NewInt(1)))          // r1, unrelated
	f.AppendRoot(singleCellTA(b, dataval.NewInt(42)))         // r2, moves into r1's slot when r1 is freed below

	// Free root 1 (not last, not pinned): root 2 should move down into slot 1,
	// and r0's Ref{2,*} should become Ref{1,*}.
	err := f.FreePosition(1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, f.NumRoots())

	got := refChild(f.Root(r0), b.Arena)
	require.True(t, got.IsRef())
	assert.Equal(t, dataval.RootIdx(1), got.RefValue().Root)

	moved := f.Root(1)
	require.NotNil(t, moved)
	assert.Equal(t, dataval.NewInt(42), refChild(moved, b.Arena))
}

func TestFreePositionOnLastRootJustShrinks(t *testing.T) {
	b := forestaut.NewBackend()
	f := forestaut.New(b)
	f.AppendRoot(singleCellTA(b, dataval.NewInt(1)))
	last := f.AppendRoot(singleCellTA(b, dataval.NewInt(2)))

	err := f.FreePosition(last, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.NumRoots())
}

func TestSetLabelsToValueOnlyTouchesUndef(t *testing.T) {
	b := forestaut.NewBackend()
	f := forestaut.New(b)
	r := f.AppendRoot(singleCellTA(b, dataval.NewUndef()))

	err := f.SetLabelsToValue(r, dataval.NewInt(9))
	require.NoError(t, err)
	assert.Equal(t, dataval.NewInt(9), refChild(f.Root(r), b.Arena))

	// Second call is a no-op for a field that is no longer Undef.
	err = f.SetLabelsToValue(r, dataval.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, dataval.NewInt(9), refChild(f.Root(r), b.Arena))
}

func TestSubseteqRejectsMismatchedShapeAndBackend(t *testing.T) {
	b1 := forestaut.NewBackend()
	b2 := forestaut.NewBackend()
	a := forestaut.New(b1)
	b := forestaut.New(b2)
	_, err := forestaut.Subseteq(a, b)
	assert.ErrorIs(t, err, forestaut.ErrDifferentBackend)

	b3 := forestaut.New(b1)
	b3.AppendRoot(singleCellTA(b1, dataval.NewInt(1)))
	_, err = forestaut.Subseteq(a, b3)
	assert.ErrorIs(t, err, forestaut.ErrShapeMismatch)
}

func TestSubseteqHoldsForIdenticalFAs(t *testing.T) {
	b := forestaut.NewBackend()
	a := forestaut.New(b)
	a.AppendRoot(singleCellTA(b, dataval.NewInt(1)))

	other := forestaut.New(b)
	other.AppendRoot(singleCellTA(b, dataval.NewInt(1)))

	ok, err := forestaut.Subseteq(a, other)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoadCompatibleFAsFiltersByShapeAndBackend(t *testing.T) {
	b1 := forestaut.NewBackend()
	b2 := forestaut.NewBackend()

	target := forestaut.New(b1)
	target.AppendRoot(singleCellTA(b1, dataval.NewInt(1)))

	sameShape := forestaut.New(b1)
	sameShape.AppendRoot(singleCellTA(b1, dataval.NewInt(2)))

	wrongShape := forestaut.New(b1)

	wrongBackend := forestaut.New(b2)
	wrongBackend.AppendRoot(singleCellTA(b2, dataval.NewInt(3)))

	got := forestaut.LoadCompatibleFAs(target, []*forestaut.FA{sameShape, wrongShape, wrongBackend})
	require.Len(t, got, 1)
	assert.Same(t, sameShape, got[0])
}
