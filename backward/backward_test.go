package backward_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestfa/fa/backward"
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/fixpoint"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/ir"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/normalize"
	"github.com/forestfa/fa/treeaut"
)

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

func TestRunClassifiesRealTrace(t *testing.T) {
	b := forestaut.NewBackend()
	witness := oneRootFA(b, dataval.NewInt(1))
	stored := oneRootFA(b, dataval.NewInt(1))

	trace := &backward.Trace{Steps: []backward.Step{
		{Instr: ir.Instr{Op: ir.OpFixpoint}, FA: witness, Loc: 0, IsFixpoint: true, Info: &fixpoint.AbstractionInfo{FinalFae: stored}},
	}}

	verdict, _, _, err := backward.Run(trace)
	require.NoError(t, err)
	assert.Equal(t, backward.VerdictReal, verdict)
}

func TestRunClassifiesSpuriousTraceOnEmptyIntersection(t *testing.T) {
	b := forestaut.NewBackend()
	witness := oneRootFA(b, dataval.NewInt(1))
	stored := oneRootFA(b, dataval.NewInt(2))

	trace := &backward.Trace{Steps: []backward.Step{
		{Instr: ir.Instr{Op: ir.OpFixpoint}, FA: witness, Loc: 0, IsFixpoint: true, Info: &fixpoint.AbstractionInfo{FinalFae: stored}},
	}}

	verdict, loc, pred, err := backward.Run(trace)
	require.NoError(t, err)
	assert.Equal(t, backward.VerdictSpurious, verdict)
	assert.Equal(t, fixpoint.Loc(0), loc)
	assert.NotNil(t, pred)
}

func TestRunOnEmptyTraceIsAnError(t *testing.T) {
	_, _, _, err := backward.Run(&backward.Trace{})
	assert.ErrorIs(t, err, backward.ErrEmptyTrace)
}

func TestRunRevertsNormalizationThroughLog(t *testing.T) {
	b := forestaut.NewBackend()
	f := forestaut.New(b)
	f.AppendRoot(cellTA(b, dataval.NewRef(1, 0)))
	f.AppendRoot(cellTA(b, dataval.NewInt(7)))
	f.Vars = []dataval.Data{dataval.NewRef(0, 0)}

	normed, nlog, err := normalize.Normalize(f, map[dataval.RootIdx]bool{0: true}, normalize.RemoveGarbage)
	require.NoError(t, err)
	require.Equal(t, 1, normed.NumRoots())

	info := &fixpoint.AbstractionInfo{
		IterFaes: []*forestaut.FA{normed},
		NormLogs: []*normalize.Log{nlog},
		FinalFae: normed,
	}
	trace := &backward.Trace{Steps: []backward.Step{
		{Instr: ir.Instr{Op: ir.OpFixpoint}, FA: normed, Loc: 0, IsFixpoint: true, Info: info},
	}}

	verdict, _, _, err := backward.Run(trace)
	require.NoError(t, err)
	assert.Equal(t, backward.VerdictReal, verdict,
		"a backward FA identical to the stored passage survives the merge reversal")
}
