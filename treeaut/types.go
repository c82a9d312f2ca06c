package treeaut

import (
	"fmt"
	"sort"

	"github.com/forestfa/fa/label"
)

// StateKind discriminates an ordinary ("internal") TA state from a data
// leaf state, replacing the high-order-bit convention of the original
// implementation.
type StateKind uint8

const (
	Internal StateKind = iota
	DataLeaf
)

// State is a node of Q. For a DataLeaf state, ID is the label.LabelID of
// the KindData label it represents, so two automata built against the
// same label.Arena agree on which State denotes a given data value; this
// is what makes DataLeaf states "stable under renaming".
type State struct {
	Kind StateKind
	ID   uint32
}

func (s State) String() string {
	if s.Kind == DataLeaf {
		return fmt.Sprintf("d%d", s.ID)
	}
	return fmt.Sprintf("q%d", s.ID)
}

// LHSID is a handle into an LHSPool: a hash-consed tuple of States.
type LHSID uint32

// LHSPool hash-conses LHS child tuples so that two transitions with the
// same children share one LHSID.
type LHSPool struct {
	tuples  [][]State
	buckets map[uint64][]LHSID
}

// NewLHSPool returns an empty, ready-to-use LHSPool.
func NewLHSPool() *LHSPool {
	return &LHSPool{buckets: make(map[uint64][]LHSID)}
}

// Intern returns the LHSID for children, minting a fresh one if no equal
// tuple has been interned yet.
func (p *LHSPool) Intern(children []State) LHSID {
	h := hashStates(children)
	for _, cand := range p.buckets[h] {
		if statesEqual(p.tuples[cand], children) {
			return cand
		}
	}
	id := LHSID(len(p.tuples))
	p.tuples = append(p.tuples, append([]State(nil), children...))
	p.buckets[h] = append(p.buckets[h], id)
	return id
}

// Children returns the tuple denoted by id.
func (p *LHSPool) Children(id LHSID) []State { return p.tuples[id] }

func hashStates(s []State) uint64 {
	h := uint64(len(s))*1099511628211 ^ 0xcbf29ce484222325
	for _, st := range s {
		h ^= uint64(st.Kind)<<32 ^ uint64(st.ID)
		h *= 1099511628211
	}
	return h
}

func statesEqual(a, b []State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Transition is one rule f(q1,...,qn) -> q of Δ: lhs (via LHSID) labeled
// Label, producing RHS.
type Transition struct {
	LHS   LHSID
	Label label.LabelID
	RHS   State
}

// TA is a bottom-up finite tree automaton sharing pool and arena with its
// sibling copies.
type TA struct {
	pool  *LHSPool
	arena *label.Arena

	states  map[State]struct{}
	finals  map[State]struct{}
	trans   map[Transition]struct{}
	maxRank int
}

// New returns an empty TA backed by pool and arena. Multiple TA sharing
// the same pool/arena can be intersected, unioned and compared;
// TA built from different pools cannot (ErrDifferentPools).
func New(pool *LHSPool, arena *label.Arena) *TA {
	return &TA{
		pool:   pool,
		arena:  arena,
		states: make(map[State]struct{}),
		finals: make(map[State]struct{}),
		trans:  make(map[Transition]struct{}),
	}
}

// Pool returns the shared LHS pool.
func (t *TA) Pool() *LHSPool { return t.pool }

// Arena returns the shared label arena.
func (t *TA) Arena() *label.Arena { return t.arena }

// Clone returns a shallow value copy of t: it shares pool/arena but has
// independent
// states/finals/trans sets so mutating the clone never affects t.
func (t *TA) Clone() *TA {
	c := New(t.pool, t.arena)
	for q := range t.states {
		c.states[q] = struct{}{}
	}
	for q := range t.finals {
		c.finals[q] = struct{}{}
	}
	for tr := range t.trans {
		c.trans[tr] = struct{}{}
	}
	c.maxRank = t.maxRank
	return c
}

func (t *TA) addState(q State) { t.states[q] = struct{}{} }

// AddTransition adds lhs(children) --label--> rhs. O(1) amortized;
// idempotent (a duplicate transition is a no-op). children and rhs are
// added to Q. Panics with ErrArityMismatch if the label's arity disagrees
// with len(children): a mismatched arity can never arise from the
// well-typed builders in packages label/forestaut, so this is a
// precondition violation, not a recoverable error.
func (t *TA) AddTransition(children []State, lbl label.LabelID, rhs State) {
	if a := t.arena.Get(lbl).Arity(); a != len(children) {
		panic(fmt.Errorf("%w: label arity %d, got %d children", ErrArityMismatch, a, len(children)))
	}
	lhs := t.pool.Intern(children)
	tr := Transition{LHS: lhs, Label: lbl, RHS: rhs}
	if _, ok := t.trans[tr]; ok {
		return
	}
	t.trans[tr] = struct{}{}
	for _, c := range children {
		t.addState(c)
	}
	t.addState(rhs)
	if len(children) > t.maxRank {
		t.maxRank = len(children)
	}
}

// AddFinal marks q as a final (accepting) state, adding it to Q.
func (t *TA) AddFinal(q State) {
	t.addState(q)
	t.finals[q] = struct{}{}
}

// RemoveFinal unmarks q as final; q remains in Q.
func (t *TA) RemoveFinal(q State) { delete(t.finals, q) }

// FinalStates returns F, in a deterministic order (sorted by kind then
// id) so callers get reproducible iteration for logging/tests.
func (t *TA) FinalStates() []State {
	out := make([]State, 0, len(t.finals))
	for q := range t.finals {
		out = append(out, q)
	}
	sortStates(out)
	return out
}

// IsFinal reports whether q ∈ F.
func (t *TA) IsFinal(q State) bool {
	_, ok := t.finals[q]
	return ok
}

// States returns Q in deterministic order.
func (t *TA) States() []State {
	out := make([]State, 0, len(t.states))
	for q := range t.states {
		out = append(out, q)
	}
	sortStates(out)
	return out
}

// Transitions returns Δ in deterministic order.
func (t *TA) Transitions() []Transition {
	out := make([]Transition, 0, len(t.trans))
	for tr := range t.trans {
		out = append(out, tr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RHS != out[j].RHS {
			return stateLess(out[i].RHS, out[j].RHS)
		}
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].LHS < out[j].LHS
	})
	return out
}

// Children returns the LHS child tuple of tr.
func (t *TA) Children(tr Transition) []State { return t.pool.Children(tr.LHS) }

// MaxRank is the largest transition arity added so far.
func (t *TA) MaxRank() int { return t.maxRank }

func sortStates(s []State) {
	sort.Slice(s, func(i, j int) bool { return stateLess(s[i], s[j]) })
}

func stateLess(a, b State) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.ID < b.ID
}
