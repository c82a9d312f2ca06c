package label_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/label"
)

func TestArenaInternsEqualDataLabelsToSameID(t *testing.T) {
	a := label.NewArena()
	id1 := a.InternData(dataval.NewInt(7))
	id2 := a.InternData(dataval.NewInt(7))
	id3 := a.InternData(dataval.NewInt(8))
	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
}

func TestArenaInternsEqualNodeLabelsToSameID(t *testing.T) {
	a := label.NewArena()
	boxes := []label.AbstractBoxEntry{
		{Kind: label.AbstractSelector, Sel: label.SelData{Offset: 0, Size: 8}},
		{Kind: label.AbstractSelector, Sel: label.SelData{Offset: 8, Size: 8}},
	}
	id1, err := a.InternNode(boxes)
	require.NoError(t, err)
	id2, err := a.InternNode(append([]label.AbstractBoxEntry(nil), boxes...))
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	lbl := a.Get(id1)
	assert.Equal(t, label.KindNode, lbl.Kind())
	assert.Equal(t, 2, lbl.Node().Arity())

	idx, ok := lbl.Node().ChildIndexAt(8)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestInternNodeRejectsDuplicateOffset(t *testing.T) {
	a := label.NewArena()
	_, err := a.InternNode([]label.AbstractBoxEntry{
		{Kind: label.AbstractSelector, Sel: label.SelData{Offset: 0, Size: 8}},
		{Kind: label.AbstractSelector, Sel: label.SelData{Offset: 0, Size: 4}},
	})
	assert.ErrorIs(t, err, label.ErrDuplicateSelectorOffset)
}

func TestInternVectorOrderSensitive(t *testing.T) {
	a := label.NewArena()
	id1 := a.InternVector([]dataval.Data{dataval.NewInt(1), dataval.NewInt(2)})
	id2 := a.InternVector([]dataval.Data{dataval.NewInt(2), dataval.NewInt(1)})
	assert.NotEqual(t, id1, id2)
}

func TestLabelAccessorPanicsOnWrongKind(t *testing.T) {
	a := label.NewArena()
	id := a.InternData(dataval.NewNull())
	lbl := a.Get(id)
	assert.Panics(t, func() { lbl.Node() })
}

func TestBoxManagerRegisterIsIdempotentOnName(t *testing.T) {
	bm := label.NewBoxManager()
	id1, err := bm.RegisterBox("SLS", 2, map[string]label.SelData{"next": {Offset: 8, Size: 8}})
	require.NoError(t, err)
	id2, err := bm.RegisterBox("SLS", 2, map[string]label.SelData{"next": {Offset: 16, Size: 8}})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, dataval.Offset(16), bm.Signature(id1).Bindings["next"].Offset)
}

func TestBoxManagerRejectsEmptyName(t *testing.T) {
	bm := label.NewBoxManager()
	_, err := bm.RegisterBox("", 1, nil)
	assert.ErrorIs(t, err, label.ErrEmptyBoxName)
}
