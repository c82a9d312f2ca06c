package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forestfa/fa/ir"
)

func TestProgramAtBounds(t *testing.T) {
	p := &ir.Program{Instrs: []ir.Instr{{Op: ir.OpAlloc}, {Op: ir.OpRet}}}

	instr, ok := p.At(0)
	assert.True(t, ok)
	assert.Equal(t, ir.OpAlloc, instr.Op)

	_, ok = p.At(2)
	assert.False(t, ok)
	assert.Equal(t, 2, p.Len())
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "store", ir.OpStore.String())
	assert.Equal(t, "unknown", ir.Opcode(200).String())
}
