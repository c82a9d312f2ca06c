package symexec

import (
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// frameSavedFP and frameRetPC are the selector offsets of a
// stack-frame box's two fields.
const (
	frameSavedFP dataval.Offset = 0
	frameRetPC   dataval.Offset = wordSize
)

// pushFrame allocates a new stack-frame root holding the caller's
// current frame-pointer value and return PC, and returns its index.
func pushFrame(f *forestaut.FA, savedFP dataval.Data, retPC int) (dataval.RootIdx, error) {
	arena := f.Backend.Arena
	boxes := []label.AbstractBoxEntry{
		{Kind: label.AbstractSelector, Sel: label.SelData{Offset: frameSavedFP, Size: wordSize}},
		{Kind: label.AbstractSelector, Sel: label.SelData{Offset: frameRetPC, Size: wordSize}},
	}
	nodeLbl, err := arena.InternNode(boxes)
	if err != nil {
		return 0, err
	}
	savedID := arena.InternData(savedFP)
	retID := arena.InternData(dataval.NewInt(int64(retPC)))

	ta := treeaut.New(f.Backend.Pool, arena)
	root := treeaut.State{Kind: treeaut.Internal, ID: 0}
	ta.AddTransition([]treeaut.State{
		{Kind: treeaut.DataLeaf, ID: uint32(savedID)},
		{Kind: treeaut.DataLeaf, ID: uint32(retID)},
	}, nodeLbl, root)
	ta.AddFinal(root)
	return f.AppendRoot(ta), nil
}

// popFrame reads back the saved frame pointer and return PC from the
// frame at root, then releases the frame root.
func popFrame(f *forestaut.FA, root dataval.RootIdx) (dataval.Data, int, error) {
	ref := dataval.Ref{Root: root, Displ: 0}
	savedFP, err := load(f, noLoc, ref, frameSavedFP)
	if err != nil {
		return dataval.Data{}, 0, err
	}
	retPCVal, err := load(f, noLoc, ref, frameRetPC)
	if err != nil {
		return dataval.Data{}, 0, err
	}
	f.InvalidateReference(root)
	if err := f.SetRoot(root, nil); err != nil {
		return dataval.Data{}, 0, err
	}
	return savedFP, int(retPCVal.Int()), nil
}
