// Package backward implements the backward run and refinement: given
// an error trace, it walks the fixpoint passages the trace went
// through in reverse, intersecting the witnessing FA against the
// FA recorded at each passage and reverting that passage's fold log,
// to decide whether the counter-example is real or an artifact of
// abstraction (spurious), in which case it learns a predicate TA for
// predicate-abstraction refinement.
package backward
