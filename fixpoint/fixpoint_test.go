package fixpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestfa/fa/abstraction"
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/fixpoint"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// cellTA builds a one-transition TA: a unary node whose single selector
// child carries val.
func cellTA(b *forestaut.Backend, val dataval.Data) *treeaut.TA {
	ta := treeaut.New(b.Pool, b.Arena)
	nodeLbl, err := b.Arena.InternNode([]label.AbstractBoxEntry{
		{Kind: label.AbstractSelector, Sel: label.SelData{Offset: 0, Size: 8}},
	})
	if err != nil {
		panic(err)
	}
	dataLbl := b.Arena.InternData(val)
	root := treeaut.State{Kind: treeaut.Internal, ID: 0}
	ta.AddTransition([]treeaut.State{{Kind: treeaut.DataLeaf, ID: uint32(dataLbl)}}, nodeLbl, root)
	ta.AddFinal(root)
	return ta
}

func oneRootFA(b *forestaut.Backend, val dataval.Data) *forestaut.FA {
	f := forestaut.New(b)
	f.AppendRoot(cellTA(b, val))
	f.Vars = []dataval.Data{dataval.NewRef(0, 0)}
	return f
}

func TestEngineEnterFirstPassageIsNotClosed(t *testing.T) {
	b := forestaut.NewBackend()
	db := forestaut.NewBoxDB()
	e := fixpoint.New(b, db, fixpoint.WithHeightMode(abstraction.HeightOptions{Height: 2}))

	pinned := map[dataval.RootIdx]bool{0: true}
	closed, info, err := e.Enter(0, oneRootFA(b, dataval.NewInt(1)), pinned)
	require.NoError(t, err)
	assert.False(t, closed, "the first passage through a location has nothing to be included in yet")
	require.NotNil(t, info.FinalFae)
}

func TestEngineEnterClosesOnRepeatedConfiguration(t *testing.T) {
	b := forestaut.NewBackend()
	db := forestaut.NewBoxDB()
	e := fixpoint.New(b, db, fixpoint.WithHeightMode(abstraction.HeightOptions{Height: 2}))

	pinned := map[dataval.RootIdx]bool{0: true}
	closed, _, err := e.Enter(0, oneRootFA(b, dataval.NewInt(1)), pinned)
	require.NoError(t, err)
	require.False(t, closed)

	closed, _, err = e.Enter(0, oneRootFA(b, dataval.NewInt(1)), pinned)
	require.NoError(t, err)
	assert.True(t, closed, "the second identical passage should be covered by fwdConf")
}

func TestEngineResetClearsAccumulator(t *testing.T) {
	b := forestaut.NewBackend()
	db := forestaut.NewBoxDB()
	e := fixpoint.New(b, db, fixpoint.WithHeightMode(abstraction.HeightOptions{Height: 2}))

	pinned := map[dataval.RootIdx]bool{0: true}
	_, _, err := e.Enter(0, oneRootFA(b, dataval.NewInt(1)), pinned)
	require.NoError(t, err)

	e.Reset(-1)

	closed, _, err := e.Enter(0, oneRootFA(b, dataval.NewInt(1)), pinned)
	require.NoError(t, err)
	assert.False(t, closed, "reset should have dropped the prior fwdConf entry")
}
