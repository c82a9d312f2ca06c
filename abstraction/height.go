package abstraction

import (
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// FiniteHeight applies height_abstraction independently to every root
// not named in pinned, refined by node-tag equality, cutpoint-signature
// equality and (if opts.FrameOf is set) stack-frame equality, then
// collapses and garbage-collects the result. Pinned roots (those a
// variable points at) are left untouched.
func FiniteHeight(f *forestaut.FA, pinned map[dataval.RootIdx]bool, opts HeightOptions) (*forestaut.FA, error) {
	out := f.Clone()
	arena := f.Backend.Arena

	for i, ta := range f.Roots {
		r := dataval.RootIdx(i)
		if ta == nil || pinned[r] {
			continue
		}
		cutSig := stateCutpoints(ta, arena)
		match := func(a, b label.LabelID) bool { return nodeTagEqual(arena, a, b) }
		cmp := func(a, b treeaut.State) bool {
			if opts.FrameOf != nil && opts.FrameOf(a) != opts.FrameOf(b) {
				return false
			}
			return rootSetEqual(cutSig[a], cutSig[b])
		}
		rel := ta.HeightAbstraction(opts.Height, match, cmp)
		out.Roots[i] = ta.Collapsed(rel).UselessAndUnreachableFree()
	}
	return out, nil
}
