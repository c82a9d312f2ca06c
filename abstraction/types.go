package abstraction

import "github.com/forestfa/fa/treeaut"

// HeightOptions configures FiniteHeight.
type HeightOptions struct {
	// Height bounds the number of height_abstraction rounds.
	Height int

	// FrameOf, if non-nil, returns a stack-frame identifier for a state;
	// states from distinct frames are never merged. A nil FrameOf means
	// stack-frame abstraction is disabled (no such restriction); passing
	// one is an opt-in refinement rather than the default.
	FrameOf func(treeaut.State) int
}
