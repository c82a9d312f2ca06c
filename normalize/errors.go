package normalize

import "errors"

// ErrGarbageRoot indicates a root is reachable from neither a pinned
// (variable-rooted) component nor any surviving component, and the
// caller asked for FailOnGarbage rather than RemoveGarbage.
var ErrGarbageRoot = errors.New("normalize: unreachable root")

// ErrInconsistentLog indicates Revert found the recorded log and the
// supplied product maps disagree (a survivor position missing from the
// permutation, or a join state no product state corresponds to). Per
// the design rule for the backward run, the caller should treat the
// trace as inconclusive (spurious) rather than guess.
var ErrInconsistentLog = errors.New("normalize: log and product map disagree")
