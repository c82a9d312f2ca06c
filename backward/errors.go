package backward

import "errors"

// ErrEmptyTrace indicates Run was called with a trace that has no
// steps at all, so there is nothing to classify.
var ErrEmptyTrace = errors.New("backward: empty trace")
