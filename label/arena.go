package label

import (
	"github.com/forestfa/fa/dataval"
)

// Arena is the process-wide hash-consing backend for labels: interning
// grows the arena but never mutates an existing entry, so a LabelID
// handed out earlier stays valid for the Arena's lifetime. Arena is not
// safe for concurrent use; the analysis runs on a single thread and
// never needs it to be.
type Arena struct {
	labels  []Label
	buckets map[uint64][]LabelID
}

// NewArena returns an empty, ready-to-use Arena.
func NewArena() *Arena {
	return &Arena{buckets: make(map[uint64][]LabelID)}
}

// Get dereferences id. Panics with ErrUnknownLabel if id was not produced
// by this Arena: a dangling LabelID is a precondition violation, not
// a recoverable error.
func (a *Arena) Get(id LabelID) Label {
	if int(id) >= len(a.labels) {
		panic(ErrUnknownLabel)
	}
	return a.labels[id]
}

func (a *Arena) intern(h uint64, l Label, eq func(Label) bool) LabelID {
	for _, cand := range a.buckets[h] {
		if eq(a.labels[cand]) {
			return cand
		}
	}
	id := LabelID(len(a.labels))
	a.labels = append(a.labels, l)
	a.buckets[h] = append(a.buckets[h], id)
	return id
}

// InternNode interns a node label built from boxes, returning its LabelID.
func (a *Arena) InternNode(boxes []AbstractBoxEntry) (LabelID, error) {
	nl, err := NewNodeLabel(boxes)
	if err != nil {
		return 0, err
	}
	h := hashBoxes(nl.Boxes)
	return a.intern(h, Label{kind: KindNode, node: nl}, func(cand Label) bool {
		return cand.kind == KindNode && nodeLabelsEqual(cand.node, nl)
	}), nil
}

// InternData interns a data label, returning its LabelID.
func (a *Arena) InternData(d dataval.Data) LabelID {
	h := dataval.Hash(d) ^ 0x9e3779b97f4a7c15
	return a.intern(h, Label{kind: KindData, data: &DataLabel{Value: d}}, func(cand Label) bool {
		return cand.kind == KindData && dataval.Equal(cand.data.Value, d)
	})
}

// InternVector interns a vector label, returning its LabelID.
func (a *Arena) InternVector(values []dataval.Data) LabelID {
	h := uint64(len(values)) * 1099511628211
	for _, v := range values {
		h ^= dataval.Hash(v)
		h *= 1099511628211
	}
	vl := &VectorLabel{Values: append([]dataval.Data(nil), values...)}
	return a.intern(h, Label{kind: KindVector, vec: vl}, func(cand Label) bool {
		if cand.kind != KindVector || len(cand.vec.Values) != len(vl.Values) {
			return false
		}
		for i := range vl.Values {
			if !dataval.Equal(cand.vec.Values[i], vl.Values[i]) {
				return false
			}
		}
		return true
	})
}

func nodeLabelsEqual(a, b *NodeLabel) bool {
	if len(a.Boxes) != len(b.Boxes) {
		return false
	}
	for i := range a.Boxes {
		if a.Boxes[i] != b.Boxes[i] {
			return false
		}
	}
	return true
}

func hashBoxes(boxes []AbstractBoxEntry) uint64 {
	h := uint64(len(boxes))*1099511628211 ^ 0xcbf29ce484222325
	for _, b := range boxes {
		h ^= uint64(b.Kind)
		h ^= uint64(b.Sel.Offset)<<8 ^ uint64(b.Sel.Size)<<2 ^ uint64(b.Sel.Displ)
		h ^= uint64(b.Typ) << 16
		h ^= uint64(b.Box) << 24
		h *= 1099511628211
	}
	return h
}
