package symexec

import (
	"errors"
	"fmt"

	"github.com/forestfa/fa/backward"
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/diag"
	"github.com/forestfa/fa/fixpoint"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/ir"
	"github.com/forestfa/fa/witness"
)

var noLoc diag.Location

// Executor is the microcode interpreter: it owns the
// worklist of States (popped deepest-first, single-threaded) and
// drives each through Program,
// delegating folding/normalization/abstraction to Engine at every
// OpFixpoint marker and classifying every safety violation it catches
// via the backward package.
type Executor struct {
	Backend *forestaut.Backend
	Boxes   *forestaut.BoxDB
	Engine  *fixpoint.Engine
	Program *ir.Program
	Pinned  map[dataval.RootIdx]bool

	opts     Options
	recycler *Recycler
}

// NewExecutor returns a ready-to-use Executor.
func NewExecutor(b *forestaut.Backend, db *forestaut.BoxDB, engine *fixpoint.Engine, prog *ir.Program, opts ...Option) *Executor {
	ex := &Executor{Backend: b, Boxes: db, Engine: engine, Program: prog, recycler: NewRecycler()}
	for _, opt := range opts {
		opt(&ex.opts)
	}
	return ex
}

// Trace walks s and its ancestors, producing the linear predecessor
// chain the backward engine consumes; s itself is the
// last, witnessing, step.
func (s *State) Trace() *backward.Trace {
	var steps []backward.Step
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Parent == nil {
			break
		}
		steps = append(steps, backward.Step{
			Instr: cur.ViaInstr, FA: cur.FA, Loc: cur.Loc,
			IsFixpoint: cur.IsFixpoint, Info: cur.Info,
		})
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return &backward.Trace{Steps: steps}
}

// Run executes Program starting from entry until the worklist is
// drained, restarting the whole analysis whenever a refinement is
// learned. It returns every real (non-spurious) program error found
// across every path.
func (ex *Executor) Run(entry *forestaut.FA) ([]*diag.ProgramError, error) {
	for {
		errs, restart, err := ex.runOnce(entry)
		if err != nil {
			return nil, err
		}
		if !restart {
			return errs, nil
		}
	}
}

func (ex *Executor) runOnce(entry *forestaut.FA) ([]*diag.ProgramError, bool, error) {
	root := ex.recycler.Alloc()
	*root = State{PC: 0, FA: entry}
	worklist := []*State{root}

	var errs []*diag.ProgramError
	visited := 0

	for len(worklist) > 0 {
		s := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		visited++

		if ex.opts.progress != nil {
			ex.opts.progress(visited, len(worklist))
		}

		successors, progErr, err := ex.step(s)
		if err != nil {
			return nil, false, err
		}
		if progErr != nil {
			trace := s.Trace()
			// A violation at the entry state has an empty trace: no
			// abstraction passage happened, so there is nothing for the
			// backward run to refute and the error is real as-is.
			if len(trace.Steps) > 0 {
				verdict, loc, pred, berr := backward.Run(trace)
				if berr != nil {
					return nil, false, berr
				}
				if verdict == backward.VerdictSpurious {
					ex.Engine.AddPredicate(loc, pred)
					ex.Engine.Reset(-1)
					return nil, true, nil
				}
			}
			errs = append(errs, progErr)
			if ex.opts.witness != nil {
				ex.opts.witness(progErr, witness.StepsFromTrace(trace, nil))
			}
			ex.recycler.Retire(s)
			continue
		}

		if ex.opts.garbageEvery > 0 && visited%ex.opts.garbageEvery == 0 {
			if gerr := garbageCheck(s.FA, noLoc); gerr != nil {
				var pe *diag.ProgramError
				if errors.As(gerr, &pe) {
					errs = append(errs, pe)
					// Like any other program error, garbage ends the path.
					ex.recycler.Retire(s)
					continue
				}
			}
		}

		s.children = len(successors)
		if len(successors) == 0 {
			ex.recycler.Retire(s)
			continue
		}
		worklist = append(worklist, successors...)
	}
	return errs, false, nil
}

// step executes the single instruction at s.PC, returning the
// successor states it produces (zero, one, or two for a branch) and,
// if the instruction raised a safety violation, the *diag.ProgramError
// that describes it (successors is nil in that case).
func (ex *Executor) step(s *State) ([]*State, *diag.ProgramError, error) {
	instr, ok := ex.Program.At(s.PC)
	if !ok {
		return nil, nil, nil
	}

	next := func(fa *forestaut.FA, pc int) *State {
		c := ex.recycler.Alloc()
		*c = State{PC: pc, FA: fa, Parent: s, ViaInstr: instr, Loc: s.Loc, IsFixpoint: false}
		return c
	}

	switch instr.Op {
	case ir.OpAlloc:
		fa := s.FA.Clone()
		r, err := alloc(fa, instr.Literal)
		if err != nil {
			return nil, nil, err
		}
		if err := setVar(fa, instr.Dst, dataval.NewRef(r, 0)); err != nil {
			return nil, nil, err
		}
		return []*State{next(fa, s.PC+1)}, nil, nil

	case ir.OpFree:
		fa := s.FA.Clone()
		v, err := getVar(fa, instr.Args[0])
		if err != nil {
			return nil, nil, err
		}
		if !v.IsRef() {
			return nil, diag.NewProgramError(instr.Loc, diag.ErrInvalidReference, s, ""), nil
		}
		if perr := free(fa, instr.Loc, v.RefValue()); perr != nil {
			var pe *diag.ProgramError
			if errors.As(perr, &pe) {
				pe.Witness = s
				return nil, pe, nil
			}
			return nil, nil, perr
		}
		return []*State{next(fa, s.PC+1)}, nil, nil

	case ir.OpLoad:
		fa := s.FA.Clone()
		v, err := getVar(fa, instr.Args[0])
		if err != nil {
			return nil, nil, err
		}
		if !v.IsRef() {
			return nil, diag.NewProgramError(instr.Loc, diag.ErrInvalidReference, s, ""), nil
		}
		val, perr := load(fa, instr.Loc, v.RefValue(), dataval.Offset(instr.Literal))
		if perr != nil {
			return nil, asProgramError(perr, s), nil
		}
		if err := setVar(fa, instr.Dst, val); err != nil {
			return nil, nil, err
		}
		return []*State{next(fa, s.PC+1)}, nil, nil

	case ir.OpStore:
		fa := s.FA.Clone()
		v, err := getVar(fa, instr.Args[0])
		if err != nil {
			return nil, nil, err
		}
		if !v.IsRef() {
			return nil, diag.NewProgramError(instr.Loc, diag.ErrInvalidReference, s, ""), nil
		}
		val, err := getVar(fa, instr.Args[1])
		if err != nil {
			return nil, nil, err
		}
		if perr := store(fa, instr.Loc, v.RefValue(), dataval.Offset(instr.Literal), val); perr != nil {
			return nil, asProgramError(perr, s), nil
		}
		return []*State{next(fa, s.PC+1)}, nil, nil

	case ir.OpPtrPlus:
		fa := s.FA.Clone()
		v, err := getVar(fa, instr.Args[0])
		if err != nil {
			return nil, nil, err
		}
		if !v.IsRef() {
			return nil, diag.NewProgramError(instr.Loc, diag.ErrInvalidReference, s, ""), nil
		}
		moved := ptrPlus(v.RefValue(), instr.Literal)
		if err := setVar(fa, instr.Dst, dataval.NewRef(moved.Root, moved.Displ)); err != nil {
			return nil, nil, err
		}
		return []*State{next(fa, s.PC+1)}, nil, nil

	case ir.OpBinop:
		fa := s.FA.Clone()
		a, err := getVar(fa, instr.Args[0])
		if err != nil {
			return nil, nil, err
		}
		b, err := getVar(fa, instr.Args[1])
		if err != nil {
			return nil, nil, err
		}
		res, err := binop(instr.Loc, instr.Literal, a, b)
		if err != nil {
			return nil, nil, err
		}
		if err := setVar(fa, instr.Dst, res); err != nil {
			return nil, nil, err
		}
		return []*State{next(fa, s.PC+1)}, nil, nil

	case ir.OpCmp:
		fa := s.FA.Clone()
		a, err := getVar(fa, instr.Args[0])
		if err != nil {
			return nil, nil, err
		}
		b, err := getVar(fa, instr.Args[1])
		if err != nil {
			return nil, nil, err
		}
		res, err := cmp(instr.Literal, a, b)
		if err != nil {
			return nil, nil, err
		}
		if err := setVar(fa, instr.Dst, res); err != nil {
			return nil, nil, err
		}
		return []*State{next(fa, s.PC+1)}, nil, nil

	case ir.OpBr:
		v, err := getVar(s.FA, instr.Args[0])
		if err != nil {
			return nil, nil, err
		}
		if v.Kind() != dataval.KindBool {
			return nil, nil, fmt.Errorf("%w: br on non-boolean", ErrUnsupportedOperator)
		}
		var out []*State
		if len(instr.Targets) > 0 && v.Bool() {
			out = append(out, next(s.FA.Clone(), instr.Targets[0]))
		}
		if len(instr.Targets) > 1 && !v.Bool() {
			out = append(out, next(s.FA.Clone(), instr.Targets[1]))
		}
		return out, nil, nil

	case ir.OpCall:
		fa := s.FA.Clone()
		savedFP, err := getVar(fa, FramePointer)
		if err != nil {
			return nil, nil, err
		}
		frameRoot, err := pushFrame(fa, savedFP, s.PC+1)
		if err != nil {
			return nil, nil, err
		}
		if err := setVar(fa, FramePointer, dataval.NewRef(frameRoot, 0)); err != nil {
			return nil, nil, err
		}
		target := 0
		if len(instr.Targets) > 0 {
			target = instr.Targets[0]
		}
		return []*State{next(fa, target)}, nil, nil

	case ir.OpRet:
		fa := s.FA.Clone()
		fp, err := getVar(fa, FramePointer)
		if err != nil {
			return nil, nil, err
		}
		if !fp.IsRef() {
			return nil, diag.NewProgramError(instr.Loc, diag.ErrInvalidReference, s, "ret with no active frame"), nil
		}
		savedFP, retPC, perr := popFrame(fa, fp.RefValue().Root)
		if perr != nil {
			return nil, asProgramError(perr, s), nil
		}
		if err := setVar(fa, FramePointer, savedFP); err != nil {
			return nil, nil, err
		}
		return []*State{next(fa, retPC)}, nil, nil

	case ir.OpAssert:
		v, err := getVar(s.FA, instr.Args[0])
		if err != nil {
			return nil, nil, err
		}
		if v.Kind() != dataval.KindBool || !v.Bool() {
			return nil, diag.NewProgramError(instr.Loc, diag.ErrAssertFailed, s, ""), nil
		}
		return []*State{next(s.FA.Clone(), s.PC+1)}, nil, nil

	case ir.OpPlot:
		if ex.opts.plot != nil {
			vals := make([]int64, 0, len(instr.Args))
			for _, a := range instr.Args {
				v, err := getVar(s.FA, a)
				if err == nil && v.Kind() == dataval.KindInt {
					vals = append(vals, v.Int())
				}
			}
			ex.opts.plot(instr.PlotName, vals)
		}
		return []*State{next(s.FA.Clone(), s.PC+1)}, nil, nil

	case ir.OpFixpoint:
		loc := fixpoint.Loc(s.PC)
		closed, info, err := ex.Engine.Enter(loc, s.FA, ex.pinnedAt(s.FA))
		if err != nil {
			return nil, nil, err
		}
		if closed {
			return nil, nil, nil
		}
		c := ex.recycler.Alloc()
		*c = State{PC: s.PC + 1, FA: info.FinalFae, Parent: s, ViaInstr: instr, Loc: loc, IsFixpoint: true, Info: info}
		return []*State{c}, nil, nil

	default:
		return nil, nil, fmt.Errorf("symexec: unknown opcode %v", instr.Op)
	}
}

// pinnedAt is the forbidden set of a fixpoint passage: every component
// a live variable currently points at, plus any statically pinned
// roots. The static set alone is not enough: roots allocated after
// analysis start are pinned only through the reference a variable
// holds right now.
func (ex *Executor) pinnedAt(f *forestaut.FA) map[dataval.RootIdx]bool {
	pinned := make(map[dataval.RootIdx]bool, len(ex.Pinned)+len(f.Vars))
	for r, ok := range ex.Pinned {
		if ok {
			pinned[r] = true
		}
	}
	for _, v := range f.Vars {
		if v.IsRef() {
			pinned[v.RefValue().Root] = true
		}
	}
	return pinned
}

func getVar(f *forestaut.FA, id ir.VarID) (dataval.Data, error) {
	if int(id) < 0 || int(id) >= len(f.Vars) {
		return dataval.Data{}, fmt.Errorf("%w: %d", ErrNoSuchVar, id)
	}
	return f.Vars[id], nil
}

func setVar(f *forestaut.FA, id ir.VarID, v dataval.Data) error {
	if int(id) < 0 {
		return fmt.Errorf("%w: %d", ErrNoSuchVar, id)
	}
	for int(id) >= len(f.Vars) {
		f.Vars = append(f.Vars, dataval.NewUndef())
	}
	f.Vars[id] = v
	return nil
}

func asProgramError(err error, witness *State) *diag.ProgramError {
	var pe *diag.ProgramError
	if errors.As(err, &pe) {
		pe.Witness = witness
		return pe
	}
	return diag.NewProgramError(noLoc, err, witness, err.Error())
}
