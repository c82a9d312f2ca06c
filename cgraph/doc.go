// Package cgraph computes and represents the connection graph of a
// forest automaton: for each root, a signature of which other roots it
// reaches and by which reference chain. The signature
// drives normalization order, abstraction refinement (finite-height and
// predicate abstraction both intersect their merge candidates with
// cutpoint-signature equality), and garbage detection.
package cgraph
