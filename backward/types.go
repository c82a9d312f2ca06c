package backward

import (
	"github.com/forestfa/fa/fixpoint"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/ir"
)

// Step is one link of a Trace: the
// instruction executed, the FA that resulted from executing it, and, if
// that instruction was the fixpoint marker for a location the forward
// engine passed through, the AbstractionInfo recorded for that passage.
type Step struct {
	Instr      ir.Instr
	FA         *forestaut.FA
	Loc        fixpoint.Loc
	IsFixpoint bool
	Info       *fixpoint.AbstractionInfo
}

// Trace is the linear predecessor chain the executor hands to the
// backward engine on error.
// Steps[len(Steps)-1] is the step whose FA witnesses the violation.
type Trace struct {
	Steps []Step
}

// Verdict classifies a Trace once Run has walked it.
type Verdict uint8

const (
	// VerdictReal means the trace survived every intersection: the
	// violation is attributable to the analyzed program.
	VerdictReal Verdict = iota
	// VerdictSpurious means some intersection along the trace was
	// empty: the violation is an artifact of abstraction, and the
	// predicate TA Run returns should be fed to
	// fixpoint.Engine.AddPredicate at the implicated location before
	// restarting the forward analysis.
	VerdictSpurious
)

func (v Verdict) String() string {
	if v == VerdictSpurious {
		return "spurious"
	}
	return "real"
}
