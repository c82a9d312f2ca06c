package fold

import (
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// Record is one fold performed: the parent component and transition
// whose NodeLabel entry at ChildIdx was rewritten from a plain
// Selector to a Box(BoxID) annotation, the component (TargetRoot) the
// folded reference points at, and enough of the original transition
// (Children, OldLabel) to reconstruct it exactly on Unfold.
type Record struct {
	ParentRoot dataval.RootIdx
	RHS        treeaut.State
	Children   []treeaut.State
	ChildIdx   int
	BoxID      label.BoxId
	OldLabel   label.LabelID
	NewLabel   label.LabelID
	TargetRoot dataval.RootIdx
	Strategy   string
}

// Log is the sequence of folds performed by one Fold call.
type Log struct {
	Records []Record
}
