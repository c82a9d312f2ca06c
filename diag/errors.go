package diag

import "errors"

// Sentinel errors for the diagnostic-boundary error kinds.
// A ProgramError's Kind is one of these; callers branch with errors.Is
// against ProgramError.Unwrap(), never against ProgramError's message.
var (
	// ErrInvalidReference indicates a dereferenced value is not a valid
	// reference (not a Ref, or a Ref whose root is a hole).
	ErrInvalidReference = errors.New("diag: dereferenced value is not a valid reference")

	// ErrBlockSizeMismatch indicates an allocated block size recorded at
	// alloc time disagrees with the size implied by an access or free.
	ErrBlockSizeMismatch = errors.New("diag: allocated block size mismatch")

	// ErrInteriorFree indicates free() was called with a reference that
	// points inside an allocated block rather than at its start.
	ErrInteriorFree = errors.New("diag: releasing a pointer which points inside an allocated block")

	// ErrGarbageDetected indicates the garbage check found a component
	// with no path from any variable-rooted root.
	ErrGarbageDetected = errors.New("diag: garbage detected")

	// ErrInconsistentSelectorMap indicates an abstraction step produced a
	// selector map that does not agree with the node label it abstracts.
	ErrInconsistentSelectorMap = errors.New("diag: abstraction leads to inconsistent selector map")

	// ErrAssertFailed indicates an IR assert(cond) reduced to false on
	// some branch.
	ErrAssertFailed = errors.New("diag: assert failure")
)
