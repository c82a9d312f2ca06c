// Package forestaut implements the forest automaton (FA/FAE): an
// ordered tuple of optional tree automata ("roots"), a vector of live
// variable values, and a per-root connection graph. An FA
// denotes an unbounded set of heap configurations: each root's language
// is a set of ground trees, and a DataLeaf Ref{k, displ} child anywhere
// in root r's transitions means "the subtree here is the final state of
// root k reached with displacement displ".
//
// Box definitions (named FA fragments standing for a repeating
// sub-structure) are also defined here, keyed by the label.BoxId
// minted by a label.BoxManager, so that folding (package
// fold) can look a box's body up without this package depending on
// fold or vice versa.
package forestaut
