package fold

import "errors"

var (
	// ErrNoSuchOccurrence indicates Unfold was asked to revert a
	// (parent root, transition, child index) triple that does not
	// currently carry a Box annotation.
	ErrNoSuchOccurrence = errors.New("fold: no box occurrence at that position")

	// ErrBoxBodyMissing indicates a registered box's input root is a
	// hole, so it has no language to match candidates against.
	ErrBoxBodyMissing = errors.New("fold: box body has no input root")
)
