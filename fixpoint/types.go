package fixpoint

import (
	"github.com/forestfa/fa/abstraction"
	"github.com/forestfa/fa/fold"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/normalize"
	"github.com/forestfa/fa/treeaut"
)

// Loc identifies an abstraction program point (a loop head or call
// site). The executor mints these; fixpoint treats them as opaque
// keys.
type Loc int

// Mode selects which of the two abstraction strategies an Engine
// applies at every Enter call.
type Mode uint8

const (
	// ModeHeight applies abstraction.FiniteHeight.
	ModeHeight Mode = iota
	// ModePredicate applies abstraction.Predicate using the Engine's
	// current per-location predicate set, refined by backward-run
	// refinement.
	ModePredicate
)

// AbstractionInfo is the per-passage record a symbolic state keeps of
// its last abstraction: the fold and normalization logs recorded at
// the last fixpoint passage through a location, indexed by iteration,
// plus the FA the passage finally settled on (consumed by the backward
// run to revert folding/normalization in reverse order).
type AbstractionInfo struct {
	FoldLogs []*fold.Log
	NormLogs []*normalize.Log
	// IterFaes holds, per iteration, the FA right after that
	// iteration's normalization and before abstraction widened it; its
	// state space is the one NormLogs' join states live in, which is
	// what lets the backward run revert each passage.
	IterFaes []*forestaut.FA
	FinalFae *forestaut.FA
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithHeightMode selects finite-height abstraction with the given
// options.
func WithHeightMode(opts abstraction.HeightOptions) Option {
	return func(e *Engine) { e.mode = ModeHeight; e.heightOpts = opts }
}

// WithPredicateMode selects predicate abstraction. Predicates are
// added later via AddPredicate, called by the backward run after a
// spurious counter-example.
func WithPredicateMode() Option {
	return func(e *Engine) { e.mode = ModePredicate }
}

// WithMaxIterations bounds the fold/normalize/abstract loop of a
// passage; 0 means the package default (8 rounds), chosen because the
// analyses this engine is built for settle in far fewer rounds and an
// unbounded loop on a
// non-terminating sequence of distinct abstractions would hang the
// engine rather than surface a diagnosable state.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// Engine drives the per-location fixpoint: one fwdConf accumulator TA
// per location, plus the predicate set learned so far for predicate
// mode.
type Engine struct {
	Backend *forestaut.Backend
	Boxes   *forestaut.BoxDB

	mode          Mode
	heightOpts    abstraction.HeightOptions
	maxIterations int

	fwdConf map[Loc]*treeaut.TA
	preds   map[Loc][]*treeaut.TA
	infos   map[Loc][]*AbstractionInfo
}

// defaultHeight is the finite-height bound an Engine uses when the
// caller does not pick a mode; the shapes this engine is pointed at
// (lists, trees, lists of lists) stabilize at this depth.
const defaultHeight = 3

// New returns a ready-to-use Engine sharing backend b and box database
// db, configured by opts. With no mode option the Engine runs
// finite-height abstraction at defaultHeight.
func New(b *forestaut.Backend, db *forestaut.BoxDB, opts ...Option) *Engine {
	e := &Engine{
		Backend:       b,
		Boxes:         db,
		mode:          ModeHeight,
		heightOpts:    abstraction.HeightOptions{Height: defaultHeight},
		maxIterations: 8,
		fwdConf:       make(map[Loc]*treeaut.TA),
		preds:         make(map[Loc][]*treeaut.TA),
		infos:         make(map[Loc][]*AbstractionInfo),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddPredicate registers a learned predicate TA at loc. pred must
// share the Engine's backend arena.
func (e *Engine) AddPredicate(loc Loc, pred *treeaut.TA) {
	e.preds[loc] = append(e.preds[loc], pred)
}

// Predicates returns the predicate set currently registered at loc.
func (e *Engine) Predicates(loc Loc) []*treeaut.TA { return e.preds[loc] }

// Reset clears the accumulated fwdConf and history at loc (and, if
// loc < 0, at every location), used by the executor on a refinement
// restart.
func (e *Engine) Reset(loc Loc) {
	if loc < 0 {
		e.fwdConf = make(map[Loc]*treeaut.TA)
		e.infos = make(map[Loc][]*AbstractionInfo)
		return
	}
	delete(e.fwdConf, loc)
	delete(e.infos, loc)
}

// History returns every AbstractionInfo recorded at loc, in passage
// order, used by the backward run to walk logs from the most recent
// passage backwards.
func (e *Engine) History(loc Loc) []*AbstractionInfo { return e.infos[loc] }
