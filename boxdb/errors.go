package boxdb

import "errors"

var (
	// ErrMalformedEntry indicates a box-file entry could not be parsed:
	// a missing field, an unrecognized line tag, or a truncated block.
	ErrMalformedEntry = errors.New("boxdb: malformed entry")

	// ErrUnknownStateRef indicates a TRANS line referenced a state id
	// that was never introduced by a STATE line in the same root block.
	ErrUnknownStateRef = errors.New("boxdb: unknown state reference")
)
