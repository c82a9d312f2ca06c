package label

import "errors"

var (
	// ErrUnknownLabel indicates a LabelID not produced by this Arena was
	// dereferenced with Get.
	ErrUnknownLabel = errors.New("label: unknown label id")

	// ErrWrongLabelKind indicates a NodeLabel/DataLabel/VectorLabel-only
	// accessor was called on a Label of a different Kind.
	ErrWrongLabelKind = errors.New("label: wrong label kind for accessor")

	// ErrDuplicateSelectorOffset indicates two selectors of the same
	// NodeLabel claim the same offset; the O(1) offset cache requires a
	// unique owner per offset.
	ErrDuplicateSelectorOffset = errors.New("label: duplicate selector offset")

	// ErrUnknownBox indicates a BoxId not registered with this BoxManager
	// was looked up.
	ErrUnknownBox = errors.New("label: unknown box id")

	// ErrEmptyBoxName indicates RegisterBox was called with an empty name.
	ErrEmptyBoxName = errors.New("label: empty box name")
)
