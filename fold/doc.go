// Package fold implements folding and unfolding of box occurrences:
// recognizing that a referenced component's shape matches a
// registered box's body and annotating the reference as abstracted
// by that box, and the reverse operation of restoring the concrete
// selector annotation. Two discovery strategies are provided: learn1
// looks at a single reference hop, learn2 additionally requires the
// referenced component's own unique successor to match the box's
// second root.
//
// Folding here never changes the FA's denoted language: it only
// rewrites the NodeLabel entry governing the folded reference from a
// plain Selector to a Box annotation (and back, on unfold). This keeps
// "fold then unfold is the identity" true by construction rather than
// by a language-equivalence proof after the
// fact — the heap set a folded FA denotes is unchanged; only how a
// selector is tagged changes.
package fold
