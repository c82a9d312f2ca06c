package symexec

import "errors"

var (
	// ErrNoSuchVar indicates an instruction named a VarID outside the
	// current FA's Vars vector: a precondition violation, since the
	// microcode compiler's contract guarantees in-range operands.
	ErrNoSuchVar = errors.New("symexec: no such variable")

	// ErrUnsupportedOperator indicates Instr.Literal named a binop/cmp
	// operator code this package does not implement.
	ErrUnsupportedOperator = errors.New("symexec: unsupported operator code")
)
