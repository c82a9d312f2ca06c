package witness

import "errors"

// ErrEmptyTrace indicates Write was called with a trace with no steps;
// a witness with no edges is not a meaningful document.
var ErrEmptyTrace = errors.New("witness: trace has no steps")
