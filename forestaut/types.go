package forestaut

import (
	"fmt"
	"sort"

	"github.com/forestfa/fa/cgraph"
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

// Backend bundles the shared, append-only resources an FA family is
// built against: a label arena and an LHS-tuple pool.
type Backend struct {
	Arena *label.Arena
	Pool  *treeaut.LHSPool
	Boxes *label.BoxManager
}

// NewBackend returns a fresh, empty Backend.
func NewBackend() *Backend {
	return &Backend{Arena: label.NewArena(), Pool: treeaut.NewLHSPool(), Boxes: label.NewBoxManager()}
}

// FA is a forest automaton: an ordered tuple of optional tree automata
// (Roots), the live-variable value vector (Vars), and a per-root
// connection graph. A nil entry in Roots is a "hole". CG is computed
// lazily by ConnectionGraph and invalidated by any mutating operation
// in this package.
type FA struct {
	Backend *Backend
	Roots   []*treeaut.TA
	Vars    []dataval.Data

	cg      map[dataval.RootIdx]cgraph.Signature
	cgValid bool
}

// New returns an empty FA (no roots, no variables) sharing b.
func New(b *Backend) *FA {
	return &FA{Backend: b}
}

// Clone returns a value copy of f: the Roots slice and Vars slice are
// copied (TA themselves are value objects sharing b's pool, so copying
// the slice is cheap and safe).
func (f *FA) Clone() *FA {
	c := &FA{Backend: f.Backend, Roots: append([]*treeaut.TA(nil), f.Roots...), Vars: append([]dataval.Data(nil), f.Vars...)}
	return c
}

// NumRoots is the number of root slots (holes included).
func (f *FA) NumRoots() int { return len(f.Roots) }

// Root returns the TA at index r, or nil if r is a hole.
func (f *FA) Root(r dataval.RootIdx) *treeaut.TA {
	if int(r) < 0 || int(r) >= len(f.Roots) {
		return nil
	}
	return f.Roots[r]
}

// AllocRoot appends a fresh hole and returns its index.
func (f *FA) AllocRoot() dataval.RootIdx {
	f.Roots = append(f.Roots, nil)
	f.cgValid = false
	return dataval.RootIdx(len(f.Roots) - 1)
}

// AppendRoot appends ta as a new root and returns its index. Per
// invariant I1, ta must be nil or have at least one final state;
// AppendRoot does not itself validate that (callers build TA bottom-up
// and add finals before publishing them); a structurally invalid input
// is a precondition violation, not a runtime error.
func (f *FA) AppendRoot(ta *treeaut.TA) dataval.RootIdx {
	f.Roots = append(f.Roots, ta)
	f.cgValid = false
	return dataval.RootIdx(len(f.Roots) - 1)
}

// SetRoot installs ta (possibly nil, a hole) at position i, which must
// already exist (use AllocRoot/AppendRoot to grow Roots first).
func (f *FA) SetRoot(i dataval.RootIdx, ta *treeaut.TA) error {
	if int(i) < 0 || int(i) >= len(f.Roots) {
		return fmt.Errorf("%w: %d", ErrRootOutOfRange, i)
	}
	f.Roots[i] = ta
	f.cgValid = false
	return nil
}

// ConnectionGraph returns the FA's connection graph, computing it lazily
// and caching it until the next mutating call invalidates the cache.
func (f *FA) ConnectionGraph() map[dataval.RootIdx]cgraph.Signature {
	if f.cgValid {
		return f.cg
	}
	f.cg = make(map[dataval.RootIdx]cgraph.Signature, len(f.Roots))
	for i, ta := range f.Roots {
		if ta == nil {
			continue
		}
		f.cg[dataval.RootIdx(i)] = cgraph.Compute(dataval.RootIdx(i), ta, f.Backend.Arena)
	}
	f.cgValid = true
	return f.cg
}

// Box is a named FA fragment with distinguished input/output roots:
// Body is the fragment itself, InputRoot/OutputRoot
// identify which of Body's roots are the box's external ports, and
// SignatureID is the label.BoxId a node label's AbstractBox(Box(...))
// entry refers to.
type Box struct {
	SignatureID label.BoxId
	Body        *FA
	InputRoot   dataval.RootIdx
	OutputRoot  dataval.RootIdx
}

// Order is the box's external reference count (its "order"),
// read off the registered signature.
func (b *Box) Order(bm *label.BoxManager) int {
	return bm.Signature(b.SignatureID).Order
}

// BoxDB is the process-wide box database: box bodies,
// keyed by the BoxId minted by a label.BoxManager.
type BoxDB struct {
	boxes map[label.BoxId]*Box
}

// NewBoxDB returns an empty BoxDB.
func NewBoxDB() *BoxDB { return &BoxDB{boxes: make(map[label.BoxId]*Box)} }

// Put registers (or overwrites) a box body, idempotent on SignatureID
// the same way the box-file format overwrites duplicate names (names
// are resolved to BoxId one layer up, in label.BoxManager).
func (db *BoxDB) Put(b *Box) { db.boxes[b.SignatureID] = b }

// Get returns the box body registered for id, if any.
func (db *BoxDB) Get(id label.BoxId) (*Box, bool) {
	b, ok := db.boxes[id]
	return b, ok
}

// Len reports how many box bodies are registered.
func (db *BoxDB) Len() int { return len(db.boxes) }

// All returns every registered box body, ordered by SignatureID for
// deterministic iteration (used by boxdb when serializing the database).
func (db *BoxDB) All() []*Box {
	out := make([]*Box, 0, len(db.boxes))
	for _, b := range db.boxes {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignatureID < out[j].SignatureID })
	return out
}
