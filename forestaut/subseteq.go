package forestaut

import (
	"fmt"

	"github.com/forestfa/fa/cgraph"
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/treeaut"
)

// Subseteq reports whether L(a) subseteq L(b): a and b
// must have the same root count and share a backend (a precondition
// violation otherwise, not a false answer), and it holds iff every
// corresponding pair of roots is language-included at the TA level and
// a's connection graph %-embeds into b's (cgraph.Mergeable) at every
// root. Mergeable rather than exactly equal, because subsumption, not
// identity, is what abstraction and fixpoint detection both need.
func Subseteq(a, b *FA) (bool, error) {
	if a.Backend != b.Backend {
		return false, ErrDifferentBackend
	}
	if len(a.Roots) != len(b.Roots) {
		return false, fmt.Errorf("%w: %d vs %d roots", ErrShapeMismatch, len(a.Roots), len(b.Roots))
	}

	cgA, cgB := a.ConnectionGraph(), b.ConnectionGraph()
	for i := range a.Roots {
		ra, rb := a.Roots[i], b.Roots[i]
		if ra == nil {
			continue
		}
		if rb == nil {
			return false, nil
		}
		ok, err := treeaut.Subseteq(ra, rb)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		idx := dataval.RootIdx(i)
		if !cgraph.Mergeable(cgA[idx], cgB[idx]) {
			return false, nil
		}
	}
	return true, nil
}

// LoadCompatibleFAs filters candidates to those that could possibly
// cover target under the fixpoint engine's inclusion test: same root
// count and backend as target, used to prune the candidate set of
// previously-seen abstract states before running the (expensive) full
// Subseteq on each.
func LoadCompatibleFAs(target *FA, candidates []*FA) []*FA {
	out := make([]*FA, 0, len(candidates))
	for _, c := range candidates {
		if c.Backend != target.Backend {
			continue
		}
		if len(c.Roots) != len(target.Roots) {
			continue
		}
		out = append(out, c)
	}
	return out
}
