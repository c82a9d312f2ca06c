package fixpoint

import (
	"github.com/forestfa/fa/abstraction"
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/fold"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/normalize"
	"github.com/forestfa/fa/treeaut"
)

// Enter runs one full fixpoint passage over f at loc: fold,
// normalize, abstract, repeated until the FA stabilizes (or
// maxIterations is reached), then tests the result for inclusion in
// loc's accumulated fwdConf. closed reports whether this path can stop
// (the configuration was already covered); when it is false the caller
// should enqueue f's successors and keep AbstractionInfo.FinalFae as
// the state to resume from.
//
// pinned names the components a program variable (or the frame/global
// base) points at; they are never folded away or merged by normalize.
func (e *Engine) Enter(loc Loc, f *forestaut.FA, pinned map[dataval.RootIdx]bool) (bool, *AbstractionInfo, error) {
	info := &AbstractionInfo{}
	cur := f
	var prev *forestaut.FA

	for iter := 0; iter < e.maxIterations; iter++ {
		folded, foldLog, err := fold.Fold(cur, e.Boxes, pinned)
		if err != nil {
			return false, nil, err
		}
		info.FoldLogs = append(info.FoldLogs, foldLog)

		normed, normLog, err := normalize.Normalize(folded, pinned, normalize.RemoveGarbage)
		if err != nil {
			return false, nil, err
		}
		info.NormLogs = append(info.NormLogs, normLog)
		info.IterFaes = append(info.IterFaes, normed)

		abstracted, err := e.abstract(loc, normed, pinned)
		if err != nil {
			return false, nil, err
		}
		cur = abstracted

		if prev != nil {
			same, err := stable(prev, cur)
			if err != nil {
				return false, nil, err
			}
			if same {
				break
			}
		}
		prev = cur
	}
	info.FinalFae = cur

	// Cheap pre-check: if cur's language is already covered by one of
	// this location's previously recorded passages, skip straight to
	// the expensive UFAE comparison's answer without building it.
	// LoadCompatibleFAs narrows the candidate set to matching shape
	// before the per-candidate forestaut.Subseteq call.
	var prior []*forestaut.FA
	for _, h := range e.infos[loc] {
		if h.FinalFae != nil {
			prior = append(prior, h.FinalFae)
		}
	}
	for _, cand := range forestaut.LoadCompatibleFAs(cur, prior) {
		ok, err := forestaut.Subseteq(cur, cand)
		if err != nil {
			return false, nil, err
		}
		if ok {
			return true, info, nil
		}
	}

	synthetic, _, err := Encode(cur, e.Backend.Pool, e.Backend.Arena)
	if err != nil {
		return false, nil, err
	}

	acc, ok := e.fwdConf[loc]
	if !ok {
		acc = treeaut.New(e.Backend.Pool, e.Backend.Arena)
	}

	included, err := treeaut.Subseteq(synthetic, acc)
	if err != nil {
		return false, nil, err
	}
	if included {
		return true, info, nil
	}

	merged, err := treeaut.UnionDisjoint(acc, synthetic)
	if err != nil {
		return false, nil, err
	}
	e.fwdConf[loc] = merged
	e.infos[loc] = append(e.infos[loc], info)
	return false, info, nil
}

// abstract dispatches to the Engine's configured mode.
func (e *Engine) abstract(loc Loc, f *forestaut.FA, pinned map[dataval.RootIdx]bool) (*forestaut.FA, error) {
	switch e.mode {
	case ModeHeight:
		return abstraction.FiniteHeight(f, pinned, e.heightOpts)
	case ModePredicate:
		return abstraction.Predicate(f, e.preds[loc])
	default:
		return nil, ErrNoMode
	}
}

// stable reports whether a and b denote the same heap set at the FA
// level (mutual inclusion), the termination check for a passage's
// iteration loop.
func stable(a, b *forestaut.FA) (bool, error) {
	fwd, err := forestaut.Subseteq(a, b)
	if err != nil {
		return false, err
	}
	if !fwd {
		return false, nil
	}
	bwd, err := forestaut.Subseteq(b, a)
	if err != nil {
		return false, err
	}
	return bwd, nil
}
