package label

import "fmt"

// BoxSignature is the metadata BoxManager tracks for a registered box: its
// name, its order (number of external references, i.e. distinguished
// input/output ports), and the selector offsets a folding/unfolding
// algorithm must rewrite when substituting the box (the "binding", e.g.
// binding.next for a singly-linked-list box).
type BoxSignature struct {
	Name     string
	Order    int
	Bindings map[string]SelData
}

// BoxManager is the process-wide box-signature registry. A BoxId, once
// minted, always names the same box name; RegisterBox overwrites the
// signature of
// an existing name idempotently, matching the box-database file format's
// "loading is idempotent; duplicate names overwrite" rule.
type BoxManager struct {
	byName map[string]BoxId
	sigs   []BoxSignature
}

// NewBoxManager returns an empty BoxManager.
func NewBoxManager() *BoxManager {
	return &BoxManager{byName: make(map[string]BoxId)}
}

// RegisterBox registers (or overwrites) a box signature under name,
// returning its BoxId. Returns ErrEmptyBoxName if name == "".
func (m *BoxManager) RegisterBox(name string, order int, bindings map[string]SelData) (BoxId, error) {
	if name == "" {
		return 0, ErrEmptyBoxName
	}
	sig := BoxSignature{Name: name, Order: order, Bindings: bindings}
	if id, ok := m.byName[name]; ok {
		m.sigs[id] = sig
		return id, nil
	}
	id := BoxId(len(m.sigs))
	m.sigs = append(m.sigs, sig)
	m.byName[name] = id
	return id, nil
}

// Lookup returns the BoxId registered under name, if any.
func (m *BoxManager) Lookup(name string) (BoxId, bool) {
	id, ok := m.byName[name]
	return id, ok
}

// Signature returns the signature of id. Panics with ErrUnknownBox if id
// was never registered (precondition violation).
func (m *BoxManager) Signature(id BoxId) BoxSignature {
	if int(id) >= len(m.sigs) {
		panic(fmt.Errorf("%w: %d", ErrUnknownBox, id))
	}
	return m.sigs[id]
}

// Len reports how many distinct box names are registered.
func (m *BoxManager) Len() int { return len(m.sigs) }
