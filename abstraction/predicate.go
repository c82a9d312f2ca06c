package abstraction

import (
	"fmt"

	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// predKey names one (predicate index, predicate state) pair a TA state
// was found paired with in some bottom-up product.
type predKey struct {
	k int
	s treeaut.State
}

// Predicate applies predicate abstraction to every present root of f:
// for each predicate TA, compute the bottom-up product with the root
// and record which pairs occur; two states are merged iff they occur
// with exactly the same set of (predicate, predicate-state) pairs,
// refined by data-vs-non-data distinction and cutpoint-signature
// equality. preds may be empty, in which case the result is the
// cutpoint-signature-only collapse.
func Predicate(f *forestaut.FA, preds []*treeaut.TA) (*forestaut.FA, error) {
	out := f.Clone()
	arena := f.Backend.Arena
	noopMatch := func(a, b label.LabelID) bool { return true }

	for i, ta := range f.Roots {
		if ta == nil {
			continue
		}
		sigP, err := predicateSignatures(ta, arena, preds)
		if err != nil {
			return nil, err
		}
		cutSig := stateCutpoints(ta, arena)
		cmp := func(a, b treeaut.State) bool {
			if a.Kind != b.Kind {
				return false
			}
			if !predSetEqual(sigP[a], sigP[b]) {
				return false
			}
			return rootSetEqual(cutSig[a], cutSig[b])
		}
		rel := ta.HeightAbstraction(0, noopMatch, cmp)
		out.Roots[i] = ta.Collapsed(rel).UselessAndUnreachableFree()
	}
	return out, nil
}

func predicateSignatures(ta *treeaut.TA, arena *label.Arena, preds []*treeaut.TA) (map[treeaut.State]map[predKey]struct{}, error) {
	out := make(map[treeaut.State]map[predKey]struct{})
	for k, pred := range preds {
		if pred.Arena() != arena {
			return nil, fmt.Errorf("%w: predicate %d", ErrDifferentBackend, k)
		}
		prodMap := make(map[treeaut.ProductKey]treeaut.State)
		if _, err := treeaut.IntersectionBU(ta, pred, prodMap); err != nil {
			return nil, err
		}
		for key := range prodMap {
			m, ok := out[key.A]
			if !ok {
				m = make(map[predKey]struct{})
				out[key.A] = m
			}
			m[predKey{k: k, s: key.B}] = struct{}{}
		}
	}
	return out, nil
}

func predSetEqual(a, b map[predKey]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
