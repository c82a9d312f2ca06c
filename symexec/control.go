package symexec

import (
	"fmt"

	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/diag"
)

// Operator codes carried in Instr.Literal for OpBinop/OpCmp.
const (
	OpAdd int64 = iota
	OpSub
	OpMul
	OpDiv
)

const (
	OpEq int64 = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// binop evaluates an integer arithmetic operator over two Int data
// values.
func binop(loc diag.Location, code int64, a, b dataval.Data) (dataval.Data, error) {
	if a.Kind() != dataval.KindInt || b.Kind() != dataval.KindInt {
		return dataval.Data{}, diag.NewProgramError(loc, diag.ErrInvalidReference, nil, "binop on non-integer operand")
	}
	x, y := a.Int(), b.Int()
	switch code {
	case OpAdd:
		return dataval.NewInt(x + y), nil
	case OpSub:
		return dataval.NewInt(x - y), nil
	case OpMul:
		return dataval.NewInt(x * y), nil
	case OpDiv:
		if y == 0 {
			return dataval.Data{}, fmt.Errorf("%w: division by zero", ErrUnsupportedOperator)
		}
		return dataval.NewInt(x / y), nil
	default:
		return dataval.Data{}, fmt.Errorf("%w: binop code %d", ErrUnsupportedOperator, code)
	}
}

// cmp evaluates a comparison operator, producing a Bool. Two Ref
// operands compare by (Root, Displ) equality (dataval.Equal), the
// mechanism an analyzed program's "x == y" pointer-aliasing check
// reduces to in this model.
func cmp(code int64, a, b dataval.Data) (dataval.Data, error) {
	if a.Kind() == dataval.KindRef || b.Kind() == dataval.KindRef || a.Kind() == dataval.KindNull || b.Kind() == dataval.KindNull {
		switch code {
		case OpEq:
			return dataval.NewBool(dataval.Equal(a, b)), nil
		case OpNe:
			return dataval.NewBool(!dataval.Equal(a, b)), nil
		default:
			return dataval.Data{}, fmt.Errorf("%w: ordering comparison on a reference", ErrUnsupportedOperator)
		}
	}
	if a.Kind() != dataval.KindInt || b.Kind() != dataval.KindInt {
		return dataval.Data{}, fmt.Errorf("%w: cmp on non-comparable operand", ErrUnsupportedOperator)
	}
	x, y := a.Int(), b.Int()
	switch code {
	case OpEq:
		return dataval.NewBool(x == y), nil
	case OpNe:
		return dataval.NewBool(x != y), nil
	case OpLt:
		return dataval.NewBool(x < y), nil
	case OpLe:
		return dataval.NewBool(x <= y), nil
	case OpGt:
		return dataval.NewBool(x > y), nil
	case OpGe:
		return dataval.NewBool(x >= y), nil
	default:
		return dataval.Data{}, fmt.Errorf("%w: cmp code %d", ErrUnsupportedOperator, code)
	}
}
