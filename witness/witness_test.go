package witness_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestfa/fa/backward"
	"github.com/forestfa/fa/diag"
	"github.com/forestfa/fa/ir"
	"github.com/forestfa/fa/witness"
)

func instrAt(op ir.Opcode, file string, line, col int) backward.Step {
	return backward.Step{Instr: ir.Instr{Op: op, Loc: diag.Location{File: file, Line: line, Col: col}}}
}

func TestStepsFromTraceCollapsesAdjacentSameOrigin(t *testing.T) {
	trace := &backward.Trace{Steps: []backward.Step{
		instrAt(ir.OpAlloc, "list.c", 10, 3),
		instrAt(ir.OpAlloc, "list.c", 10, 3),
		instrAt(ir.OpFree, "list.c", 11, 3),
	}}

	steps := witness.StepsFromTrace(trace, nil)
	require.Len(t, steps, 2)
	assert.Equal(t, 10, steps[0].Line)
	assert.Equal(t, 11, steps[1].Line)
}

func TestWriteProducesEntryAndViolationNodes(t *testing.T) {
	trace := &backward.Trace{Steps: []backward.Step{
		instrAt(ir.OpAlloc, "list.c", 10, 3),
		instrAt(ir.OpFree, "list.c", 11, 3),
	}}
	steps := witness.StepsFromTrace(trace, nil)

	var buf strings.Builder
	require.NoError(t, witness.Write(&buf, steps))

	out := buf.String()
	assert.Contains(t, out, `<data key="entry">true</data>`)
	assert.Contains(t, out, `<data key="violation">true</data>`)
	assert.Contains(t, out, `<data key="originline">10</data>`)
	assert.Contains(t, out, `<data key="originline">11</data>`)
}

func TestWriteRejectsEmptyTrace(t *testing.T) {
	var buf strings.Builder
	err := witness.Write(&buf, nil)
	assert.ErrorIs(t, err, witness.ErrEmptyTrace)
}
