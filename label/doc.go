// Package label implements the canonical, hash-consed labels that tag
// transitions of a tree automaton.
//
// A Label is one of three shapes, mirroring the sealed union of the
// original design:
//
//   - NodeLabel: an ordered list of AbstractBox entries (selectors, nested
//     boxes, a type tag) describing a typed memory node, plus a cached
//     offset -> (box, child index) map for O(1) selector lookup.
//   - DataLabel: a single dataval.Data leaf.
//   - VectorLabel: a snapshot of live data values at a component root.
//
// Labels are interned in an Arena: two labels built from equal contents
// receive the same LabelID, so LabelID equality is label equality and a
// map[LabelID]... is a valid hash-consing key (identity implies
// structural equality). Box *definitions* (the FA fragments a Box
// stands for) are owned by package forestaut, which keys
// them by the BoxId minted here; BoxManager itself only tracks box
// signatures (name, order, selector bindings), keeping this package free
// of a dependency on forest automata.
package label
