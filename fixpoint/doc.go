// Package fixpoint implements the per-loop-head fixpoint engine: fold,
// normalize, abstract, then test inclusion in the accumulated
// invariant (fwdConf, the UFAE wrapper) before closing a path or
// extending the invariant and continuing.
package fixpoint
