package ir

import "github.com/forestfa/fa/diag"

// Opcode enumerates the microcode instruction set the executor
// consumes.
type Opcode uint8

const (
	OpAlloc Opcode = iota
	OpFree
	OpLoad
	OpStore
	OpPtrPlus
	OpBinop
	OpCmp
	OpBr
	OpCall
	OpRet
	OpAssert
	OpPlot
	OpFixpoint
)

func (o Opcode) String() string {
	switch o {
	case OpAlloc:
		return "alloc"
	case OpFree:
		return "free"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpPtrPlus:
		return "ptr_plus"
	case OpBinop:
		return "binop"
	case OpCmp:
		return "cmp"
	case OpBr:
		return "br"
	case OpCall:
		return "call"
	case OpRet:
		return "ret"
	case OpAssert:
		return "assert"
	case OpPlot:
		return "plot"
	case OpFixpoint:
		return "fixpoint"
	default:
		return "unknown"
	}
}

// VarID names a slot in an FA's Vars vector.
type VarID int

// Instr is one IR instruction: an opcode, its source location, and
// operands expressed as VarID slots plus literal operands where the
// opcode needs one.
// Branch targets are indices into the enclosing Program's instruction
// slice.
type Instr struct {
	Op       Opcode
	Loc      diag.Location
	Dst      VarID
	Args     []VarID
	Literal  int64
	Targets  []int // branch/call targets, interpretation depends on Op
	PlotName string
}

// Program is the flat instruction stream a symbolic executor walks
// (the explicit-state stream the microcode compiler produces).
type Program struct {
	Instrs []Instr
}

// At returns the instruction at pc, and false if pc is out of range
// (a finished program).
func (p *Program) At(pc int) (Instr, bool) {
	if pc < 0 || pc >= len(p.Instrs) {
		return Instr{}, false
	}
	return p.Instrs[pc], true
}

// Len reports how many instructions the program has.
func (p *Program) Len() int { return len(p.Instrs) }
