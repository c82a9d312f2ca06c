package symexec

import (
	"github.com/forestfa/fa/diag"
	"github.com/forestfa/fa/fixpoint"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/ir"
	"github.com/forestfa/fa/witness"
)

// FramePointer is the conventional VarID of the frame-pointer variable.
const FramePointer ir.VarID = 0

// State is one symbolic state: a program counter, the FA at
// that point, a link to the predecessor (for trace reconstruction),
// and the AbstractionInfo recorded if this state is the
// result of passing a fixpoint marker. children tracks how many
// successors have been derived from this state and not yet retired, so
// a Recycler knows when a state's subtree no longer references it.
type State struct {
	PC       int
	FA       *forestaut.FA
	Parent   *State
	ViaInstr ir.Instr
	Loc      fixpoint.Loc
	IsFixpoint bool
	Info     *fixpoint.AbstractionInfo

	children int
}

// Recycler is a free-list of *State values owned by the Executor,
// explicitly populated when a state's children count drops to zero,
// breaking ownership cycles in the trace graph without relying on a
// cycle collector.
type Recycler struct {
	free []*State
}

// NewRecycler returns an empty Recycler.
func NewRecycler() *Recycler { return &Recycler{} }

// Alloc returns a State from the free list if one is available,
// otherwise a fresh zero State.
func (r *Recycler) Alloc() *State {
	if n := len(r.free); n > 0 {
		s := r.free[n-1]
		r.free = r.free[:n-1]
		*s = State{}
		return s
	}
	return &State{}
}

// Retire decrements s's parent's children count and, if it reaches
// zero, moves the parent into the free list (recursively up the
// chain).
func (r *Recycler) Retire(s *State) {
	p := s.Parent
	for p != nil {
		p.children--
		if p.children > 0 {
			return
		}
		next := p.Parent
		r.free = append(r.free, p)
		p = next
	}
}

// Options configures an Executor.
type Options struct {
	garbageEvery int
	progress     func(visited, frontier int)
	plot         func(name string, vars []int64)
	witness      func(err *diag.ProgramError, steps []witness.Step)
}

// Option is a functional option configuring an Executor.
type Option func(*Options)

// WithGarbageCheck sets how often (in instructions executed) the
// garbage check runs; 0 disables it.
func WithGarbageCheck(every int) Option {
	return func(o *Options) { o.garbageEvery = every }
}

// WithProgress installs a callback invoked each time a state is taken
// from the worklist, before its instruction runs, with the number of
// states visited so far and the current worklist size.
func WithProgress(f func(visited, frontier int)) Option {
	return func(o *Options) { o.progress = f }
}

// WithPlot installs the handler for the IR's plot debug hook;
// rendering itself is the caller's concern, so the default is a no-op.
func WithPlot(f func(name string, vars []int64)) Option {
	return func(o *Options) { o.plot = f }
}

// WithWitness installs a callback invoked once per real (non-spurious)
// violation with the collapsed trace steps. The
// callback, not this package, decides where the rendered document goes
// (typically witness.Write to a file per path); the default is a no-op,
// matching WithPlot's rendering-is-out-of-scope stance.
func WithWitness(f func(err *diag.ProgramError, steps []witness.Step)) Option {
	return func(o *Options) { o.witness = f }
}
