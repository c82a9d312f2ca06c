// Package normalize puts a forest automaton into canonical form: DFS
// from variable-rooted components, merging every successor
// component that is neither pinned nor a true cutpoint (referenced more
// than once) into its unique predecessor, then renumbering the
// surviving components by DFS order. A Log is recorded alongside the
// result recording enough to invert the merge during the backward run
// (package backward).
package normalize
