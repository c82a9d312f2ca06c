package fold

import (
	"fmt"

	"github.com/forestfa/fa/cgraph"
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// Fold scans every non-forbidden component's transitions for a Ref
// child whose target component's language matches a registered box's
// body, and rewrites the governing NodeLabel entry from Selector to
// Box. The caller's forbidden set (typically the
// variable-rooted components) is widened internally with every root
// TarjanSCC finds mid an unresolved cross-component reference cycle,
// so folding never trivializes a cyclic shape by folding through one of
// its own cycle members. At most one occurrence is folded per
// transition, in box-registration order, and fold never removes a
// component or changes the FA's language (see package doc).
func Fold(f *forestaut.FA, db *forestaut.BoxDB, forbidden map[dataval.RootIdx]bool) (*forestaut.FA, *Log, error) {
	out := f.Clone()
	log := &Log{}
	boxes := db.All()

	full := make(map[dataval.RootIdx]bool, len(forbidden))
	for r, v := range forbidden {
		if v {
			full[r] = true
		}
	}
	for r := range pendingCycleRoots(f) {
		full[r] = true
	}

	for i, ta := range f.Roots {
		p := dataval.RootIdx(i)
		if ta == nil {
			continue
		}
		newTA := treeaut.New(ta.Pool(), ta.Arena())
		for _, tr := range ta.Transitions() {
			children := ta.Children(tr)
			rec, newLabel, ok := tryFold(f, p, tr, children, boxes, full)
			if ok {
				newTA.AddTransition(children, newLabel, tr.RHS)
				log.Records = append(log.Records, rec)
				continue
			}
			newTA.AddTransition(children, tr.Label, tr.RHS)
		}
		for _, q := range ta.FinalStates() {
			newTA.AddFinal(q)
		}
		out.Roots[i] = newTA
	}
	return out, log, nil
}

// pendingCycleRoots names every root that sits on a cycle of the
// cross-component reference graph (an edge root -> target for every
// Ref target a's connection-graph signature names): either a member of
// a multi-root strongly connected component, or a single root that
// refers back to itself. TarjanSCC runs the same algorithm
// treeaut.Tarjan uses for a single TA's internal state graph, here over
// the coarser graph of an FA's roots.
func pendingCycleRoots(f *forestaut.FA) map[dataval.RootIdx]bool {
	var nodes []dataval.RootIdx
	targets := make(map[dataval.RootIdx][]dataval.RootIdx)
	for i, ta := range f.Roots {
		if ta == nil {
			continue
		}
		r := dataval.RootIdx(i)
		nodes = append(nodes, r)
		sig := cgraph.Compute(r, ta, f.Backend.Arena)
		targets[r] = sig.Targets()
	}

	sccs := treeaut.TarjanSCC(nodes, func(r dataval.RootIdx) []dataval.RootIdx { return targets[r] })

	pending := make(map[dataval.RootIdx]bool)
	for _, scc := range sccs {
		if len(scc) > 1 {
			for _, r := range scc {
				pending[r] = true
			}
			continue
		}
		r := scc[0]
		for _, t := range targets[r] {
			if t == r {
				pending[r] = true
				break
			}
		}
	}
	return pending
}

func tryFold(f *forestaut.FA, p dataval.RootIdx, tr treeaut.Transition, children []treeaut.State, boxes []*forestaut.Box, forbidden map[dataval.RootIdx]bool) (Record, label.LabelID, bool) {
	arena := f.Backend.Arena
	lbl := arena.Get(tr.Label)
	if lbl.Kind() != label.KindNode {
		return Record{}, 0, false
	}
	nl := lbl.Node()

	for ci, child := range children {
		if child.Kind != treeaut.DataLeaf {
			continue
		}
		dlbl := arena.Get(label.LabelID(child.ID))
		if dlbl.Kind() != label.KindData || !dlbl.Data().Value.IsRef() {
			continue
		}
		r := dlbl.Data().Value.RefValue().Root
		if forbidden[r] {
			continue
		}
		target := f.Root(r)
		if target == nil {
			continue
		}
		for _, box := range boxes {
			strategy, ok := matches(f, target, r, box)
			if !ok {
				continue
			}
			off, ok := nl.OffsetAtChild(ci)
			if !ok {
				continue
			}
			boxIdx, ok := nl.BoxIndexAt(off)
			if !ok {
				continue
			}
			newBoxes := append([]label.AbstractBoxEntry(nil), nl.Boxes...)
			newBoxes[boxIdx] = label.AbstractBoxEntry{Kind: label.AbstractBox, Sel: newBoxes[boxIdx].Sel, Box: box.SignatureID}
			newLabelID, err := arena.InternNode(newBoxes)
			if err != nil {
				continue
			}
			rec := Record{
				ParentRoot: p, RHS: tr.RHS, Children: append([]treeaut.State(nil), children...),
				ChildIdx: ci, BoxID: box.SignatureID, OldLabel: tr.Label, NewLabel: newLabelID,
				TargetRoot: r, Strategy: strategy,
			}
			return rec, newLabelID, true
		}
	}
	return Record{}, 0, false
}

// matches reports whether candidate component r's shape is recognized
// by box: learn1 requires r's whole TA language to equal the box's
// input-root language; learn2 additionally requires, when the box body
// has a second root, that r's own unique successor matches that second
// root's language.
func matches(f *forestaut.FA, candidate *treeaut.TA, r dataval.RootIdx, box *forestaut.Box) (string, bool) {
	bodyRoot := box.Body.Root(box.InputRoot)
	if bodyRoot == nil {
		return "", false
	}
	if !languageEqual(candidate, bodyRoot) {
		return "", false
	}
	second, secondIdx := otherRoot(box.Body, box.InputRoot)
	if second == nil {
		return "learn1", true
	}
	succ, ok := uniqueSuccessor(candidate, f.Backend.Arena, r)
	if !ok {
		return "", false
	}
	succTA := f.Root(succ)
	if succTA == nil {
		return "", false
	}
	_ = secondIdx
	if !languageEqual(succTA, second) {
		return "", false
	}
	return "learn2", true
}

func languageEqual(a, b *treeaut.TA) bool {
	fwd, err1 := treeaut.Subseteq(a, b)
	bwd, err2 := treeaut.Subseteq(b, a)
	return err1 == nil && err2 == nil && fwd && bwd
}

func otherRoot(body *forestaut.FA, input dataval.RootIdx) (*treeaut.TA, dataval.RootIdx) {
	for i, ta := range body.Roots {
		idx := dataval.RootIdx(i)
		if idx == input || ta == nil {
			continue
		}
		return ta, idx
	}
	return nil, 0
}

// uniqueSuccessor returns the single other component r's TA refers to,
// if r's connection-graph signature names exactly one target.
func uniqueSuccessor(ta *treeaut.TA, arena *label.Arena, owner dataval.RootIdx) (dataval.RootIdx, bool) {
	sig := cgraph.Compute(owner, ta, arena)
	targets := sig.Targets()
	if len(targets) != 1 {
		return 0, false
	}
	return targets[0], true
}

// Unfold reverses one Record, restoring the original Selector
// annotation at the recorded position.
func Unfold(f *forestaut.FA, rec Record) (*forestaut.FA, error) {
	out := f.Clone()
	ta := f.Root(rec.ParentRoot)
	if ta == nil {
		return nil, fmt.Errorf("%w: parent root is a hole", ErrNoSuchOccurrence)
	}
	newTA := treeaut.New(ta.Pool(), ta.Arena())
	found := false
	for _, tr := range ta.Transitions() {
		children := ta.Children(tr)
		if tr.RHS == rec.RHS && statesEqual(children, rec.Children) && tr.Label == rec.NewLabel {
			newTA.AddTransition(children, rec.OldLabel, tr.RHS)
			found = true
			continue
		}
		newTA.AddTransition(children, tr.Label, tr.RHS)
	}
	for _, q := range ta.FinalStates() {
		newTA.AddFinal(q)
	}
	if !found {
		return nil, ErrNoSuchOccurrence
	}
	out.Roots[rec.ParentRoot] = newTA
	return out, nil
}

func statesEqual(a, b []treeaut.State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
