package dataval

import "errors"

// Sentinel errors for dataval. Callers branch with errors.Is; messages
// are never matched as strings.
var (
	// ErrWrongKind indicates an accessor was called on a Data value of a
	// different Kind (e.g. Int() on a Data constructed by NewRef).
	ErrWrongKind = errors.New("dataval: wrong kind for accessor")

	// ErrBadOffset indicates a negative Offset was supplied where a
	// non-negative displacement or selector offset is required.
	ErrBadOffset = errors.New("dataval: negative offset")
)
