package symexec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/diag"
	"github.com/forestfa/fa/fixpoint"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/ir"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/symexec"
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

// oneCellFA builds a single-root FA holding one freshly allocated cell
// (next = Undef), an Undef frame-pointer var, and a var referencing the
// cell.
func oneCellFA(b *forestaut.Backend) *forestaut.FA {
	nodeLbl := oneSelectorLabel(b)
	undef := b.Arena.InternData(dataval.NewUndef())

	ta := treeaut.New(b.Pool, b.Arena)
	q0 := treeaut.State{Kind: treeaut.Internal, ID: 0}
	ta.AddTransition([]treeaut.State{{Kind: treeaut.DataLeaf, ID: uint32(undef)}}, nodeLbl, q0)
	ta.AddFinal(q0)

	f := forestaut.New(b)
	f.AppendRoot(ta)
	f.Vars = []dataval.Data{dataval.NewUndef(), dataval.NewRef(0, 0)}
	return f
}

func newExecutor(b *forestaut.Backend, prog *ir.Program, opts ...symexec.Option) *symexec.Executor {
	db := forestaut.NewBoxDB()
	engine := fixpoint.New(b, db)
	return symexec.NewExecutor(b, db, engine, prog, opts...)
}

func TestRunStoreThenLoadRoundTrips(t *testing.T) {
	b := forestaut.NewBackend()
	f := oneCellFA(b)
	f.Vars = append(f.Vars, dataval.NewInt(42))

	prog := &ir.Program{Instrs: []ir.Instr{
		{Op: ir.OpStore, Args: []ir.VarID{1, 2}, Literal: 0},
		{Op: ir.OpLoad, Args: []ir.VarID{1}, Dst: 0, Literal: 0},
	}}

	ex := newExecutor(b, prog)
	errs, err := ex.Run(f)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestRunDetectsDoubleFree(t *testing.T) {
	b := forestaut.NewBackend()
	f := oneCellFA(b)

	prog := &ir.Program{Instrs: []ir.Instr{
		{Op: ir.OpFree, Args: []ir.VarID{1}},
		{Op: ir.OpFree, Args: []ir.VarID{1}},
	}}

	ex := newExecutor(b, prog)
	errs, err := ex.Run(f)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], diag.ErrInvalidReference)
}

func TestRunDetectsAssertFailure(t *testing.T) {
	b := forestaut.NewBackend()
	f := oneCellFA(b)
	f.Vars = append(f.Vars, dataval.NewBool(false))

	prog := &ir.Program{Instrs: []ir.Instr{
		{Op: ir.OpAssert, Args: []ir.VarID{2}},
	}}

	ex := newExecutor(b, prog)
	errs, err := ex.Run(f)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], diag.ErrAssertFailed)
}

func TestRunBranchExploresBothSides(t *testing.T) {
	b := forestaut.NewBackend()
	f := oneCellFA(b)
	f.Vars = append(f.Vars, dataval.NewBool(true))

	prog := &ir.Program{Instrs: []ir.Instr{
		{Op: ir.OpBr, Args: []ir.VarID{2}, Targets: []int{1, 2}},
		{Op: ir.OpAssert, Args: []ir.VarID{2}},
		{Op: ir.OpAssert, Args: []ir.VarID{2}},
	}}

	ex := newExecutor(b, prog)
	errs, err := ex.Run(f)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestRunCallAndRetRestoreFramePointer(t *testing.T) {
	b := forestaut.NewBackend()
	f := oneCellFA(b)

	prog := &ir.Program{Instrs: []ir.Instr{
		{Op: ir.OpCall, Targets: []int{2}},
		{Op: ir.OpLoad, Args: []ir.VarID{1}, Dst: 0, Literal: 0},
		{Op: ir.OpRet},
	}}

	ex := newExecutor(b, prog)
	errs, err := ex.Run(f)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestRunGarbageCheckFindsUnreachableRoot(t *testing.T) {
	b := forestaut.NewBackend()
	f := oneCellFA(b)

	nodeLbl := oneSelectorLabel(b)
	undef := b.Arena.InternData(dataval.NewUndef())
	orphan := treeaut.New(b.Pool, b.Arena)
	q := treeaut.State{Kind: treeaut.Internal, ID: 0}
	orphan.AddTransition([]treeaut.State{{Kind: treeaut.DataLeaf, ID: uint32(undef)}}, nodeLbl, q)
	orphan.AddFinal(q)
	f.AppendRoot(orphan)

	prog := &ir.Program{Instrs: []ir.Instr{
		{Op: ir.OpAssert, Args: []ir.VarID{0}},
	}}
	f.Vars[0] = dataval.NewBool(true)

	ex := newExecutor(b, prog, symexec.WithGarbageCheck(1))
	errs, err := ex.Run(f)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], diag.ErrGarbageDetected)
}

func TestRunTreeBuildThenFreeLeavesNothing(t *testing.T) {
	b := forestaut.NewBackend()
	f := forestaut.New(b)
	f.Vars = []dataval.Data{
		dataval.NewUndef(), // frame pointer
		dataval.NewUndef(), // parent
		dataval.NewUndef(), // child
	}

	// parent.left = child, child.parent = parent (a cross-root cycle),
	// then free bottom-up; every reference is invalidated on the way
	// out, so the per-step garbage check never fires.
	prog := &ir.Program{Instrs: []ir.Instr{
		{Op: ir.OpAlloc, Dst: 1, Literal: 16},
		{Op: ir.OpAlloc, Dst: 2, Literal: 16},
		{Op: ir.OpStore, Args: []ir.VarID{1, 2}, Literal: 0},
		{Op: ir.OpStore, Args: []ir.VarID{2, 1}, Literal: 0},
		{Op: ir.OpFree, Args: []ir.VarID{2}},
		{Op: ir.OpFree, Args: []ir.VarID{1}},
	}}

	ex := newExecutor(b, prog, symexec.WithGarbageCheck(1))
	errs, err := ex.Run(f)
	require.NoError(t, err)
	assert.Empty(t, errs)
}
