package backward

import (
	"errors"

	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/fixpoint"
	"github.com/forestfa/fa/fold"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/normalize"
	"github.com/forestfa/fa/treeaut"
)

// Run walks trace in reverse, reverting one fixpoint passage at a
// time. It returns VerdictReal if the trace survives every
// reversion, or VerdictSpurious together with the predicate TA learned
// from the first empty intersection encountered, which the caller
// should register via (*fixpoint.Engine).AddPredicate at loc before
// restarting the forward analysis.
func Run(trace *Trace) (Verdict, fixpoint.Loc, *treeaut.TA, error) {
	if len(trace.Steps) == 0 {
		return VerdictReal, 0, nil, ErrEmptyTrace
	}

	cur := trace.Steps[len(trace.Steps)-1].FA

	for i := len(trace.Steps) - 1; i >= 0; i-- {
		step := trace.Steps[i]
		if !step.IsFixpoint || step.Info == nil {
			continue
		}
		next, verdict, pred, err := revertPassage(cur, step.Info)
		if err != nil {
			return VerdictReal, 0, nil, err
		}
		if verdict == VerdictSpurious {
			return VerdictSpurious, step.Loc, pred, nil
		}
		cur = next
	}
	return VerdictReal, 0, nil, nil
}

// revertPassage reverts one fixpoint passage, iteration by iteration in
// reverse: intersect the backward FA with the FA stored right after
// that iteration's normalization, undo the normalization merges via the
// recorded log and product maps, then unfold that iteration's folds. A
// trace recorded without per-iteration FAs (older AbstractionInfo
// producers, and the direct-construction path the tests use) falls back
// to a single intersection against FinalFae with no merge reversal.
//
// Any shape mismatch or log/product-map disagreement is treated as
// spurious rather than guessed at: the log is the source of truth, and
// an inconclusive trace must over-approximate, never invent a witness.
func revertPassage(cur *forestaut.FA, info *fixpoint.AbstractionInfo) (*forestaut.FA, Verdict, *treeaut.TA, error) {
	if len(info.IterFaes) == 0 {
		return revertIteration(cur, info.FinalFae, nil, foldRecords(info.FoldLogs))
	}
	out := cur
	for i := len(info.IterFaes) - 1; i >= 0; i-- {
		var normLog *normalize.Log
		if i < len(info.NormLogs) {
			normLog = info.NormLogs[i]
		}
		var records []fold.Record
		if i < len(info.FoldLogs) && info.FoldLogs[i] != nil {
			records = info.FoldLogs[i].Records
		}
		next, verdict, pred, err := revertIteration(out, info.IterFaes[i], normLog, records)
		if err != nil {
			return nil, VerdictReal, nil, err
		}
		if verdict == VerdictSpurious {
			return nil, VerdictSpurious, pred, nil
		}
		out = next
	}
	return out, VerdictReal, nil, nil
}

// revertIteration intersects cur with the stored post-normalization FA
// of one iteration, reverts that iteration's merges through normLog,
// and unfolds its fold records.
func revertIteration(cur, stored *forestaut.FA, normLog *normalize.Log, records []fold.Record) (*forestaut.FA, Verdict, *treeaut.TA, error) {
	if stored == nil || cur.Backend != stored.Backend || cur.NumRoots() != stored.NumRoots() {
		return nil, VerdictSpurious, emptyPredicate(cur), nil
	}

	prodFA := forestaut.New(cur.Backend)
	prodFA.Vars = append([]dataval.Data(nil), cur.Vars...)
	prodMaps := make(map[dataval.RootIdx]map[treeaut.ProductKey]treeaut.State)
	for i := 0; i < cur.NumRoots(); i++ {
		r := dataval.RootIdx(i)
		prodFA.AllocRoot()
		a, b := cur.Root(r), stored.Root(r)
		if a == nil && b == nil {
			continue
		}
		if a == nil || b == nil {
			return nil, VerdictSpurious, emptyPredicate(cur), nil
		}
		prodMap := make(map[treeaut.ProductKey]treeaut.State)
		prod, err := treeaut.IntersectionBU(a, b, prodMap)
		if err != nil {
			return nil, VerdictReal, nil, err
		}
		if prod.IsEmpty() {
			// The intersection at this root is the predicate TA learned
			// from the backward FA's component here.
			return nil, VerdictSpurious, a.UselessAndUnreachableFree(), nil
		}
		if err := prodFA.SetRoot(r, prod); err != nil {
			return nil, VerdictReal, nil, err
		}
		prodMaps[r] = prodMap
	}

	out := prodFA
	if normLog != nil {
		reverted, err := normLog.Revert(prodFA, prodMaps)
		if err != nil {
			if errors.Is(err, normalize.ErrInconsistentLog) {
				return nil, VerdictSpurious, emptyPredicate(cur), nil
			}
			return nil, VerdictReal, nil, err
		}
		out = reverted
	}

	for j := len(records) - 1; j >= 0; j-- {
		reverted, err := fold.Unfold(out, records[j])
		if err != nil {
			// The folded occurrence was itself abstracted or
			// normalized away by a later step in this same passage;
			// nothing to revert at this position, which is expected
			// rather than an error (fold.Unfold only ever rejects a
			// position it cannot find).
			continue
		}
		out = reverted
	}
	return out, VerdictReal, nil, nil
}

// foldRecords flattens every log's records in passage order, for the
// FinalFae-only fallback path.
func foldRecords(logs []*fold.Log) []fold.Record {
	var out []fold.Record
	for _, l := range logs {
		if l != nil {
			out = append(out, l.Records...)
		}
	}
	return out
}

func emptyPredicate(f *forestaut.FA) *treeaut.TA {
	return treeaut.New(f.Backend.Pool, f.Backend.Arena)
}
