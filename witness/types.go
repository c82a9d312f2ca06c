package witness

import (
	"github.com/forestfa/fa/backward"
	"github.com/forestfa/fa/ir"
)

// Step is one collapsed edge of a witness trace: a source location and,
// where the front-end supplied one, the source text the instruction at
// that location lowered from.
type Step struct {
	File       string
	Line       int
	Col        int
	SourceCode string
}

// SourceLookup resolves the source text for an instruction, for callers
// that keep the original program text around; nil disables the
// optional sourcecode attribute.
type SourceLookup func(instr ir.Instr) string

// StepsFromTrace collapses trace into the Steps Write renders:
// adjacent instructions sharing a line and a column contribute a
// single edge, keeping the last of the run.
func StepsFromTrace(trace *backward.Trace, src SourceLookup) []Step {
	var steps []Step
	for i, step := range trace.Steps {
		if i+1 < len(trace.Steps) && sameOrigin(step, trace.Steps[i+1]) {
			continue
		}
		s := Step{File: step.Instr.Loc.File, Line: step.Instr.Loc.Line, Col: step.Instr.Loc.Col}
		if src != nil {
			s.SourceCode = src(step.Instr)
		}
		steps = append(steps, s)
	}
	return steps
}

func sameOrigin(a, b backward.Step) bool {
	return a.Instr.Loc.Line == b.Instr.Loc.Line &&
		a.Instr.Loc.Col == b.Instr.Loc.Col
}
