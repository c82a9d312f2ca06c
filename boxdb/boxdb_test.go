package boxdb_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestfa/fa/boxdb"
	"github.com/forestfa/fa/dataval"
	"github.com/forestfa/fa/forestaut"
	"github.com/forestfa/fa/label"
	"github.com/forestfa/fa/treeaut"
)

func buildSampleBox(t *testing.T, backend *forestaut.Backend) *forestaut.Box {
	t.Helper()
	ta := treeaut.New(backend.Pool, backend.Arena)
	nodeLbl, err := backend.Arena.InternNode([]label.AbstractBoxEntry{
		{Kind: label.AbstractSelector, Sel: label.SelData{Offset: 0, Size: 8}},
	})
	require.NoError(t, err)
	dataLbl := backend.Arena.InternData(dataval.NewRef(1, 0))
	root := treeaut.State{Kind: treeaut.Internal, ID: 0}
	ta.AddTransition([]treeaut.State{{Kind: treeaut.DataLeaf, ID: uint32(dataLbl)}}, nodeLbl, root)
	ta.AddFinal(root)

	body := forestaut.New(backend)
	body.AppendRoot(ta)

	return &forestaut.Box{Body: body, InputRoot: 0, OutputRoot: 0}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	backend := forestaut.NewBackend()
	bm := backend.Boxes
	box := buildSampleBox(t, backend)
	boxID, err := bm.RegisterBox("sls", 1, nil)
	require.NoError(t, err)
	box.SignatureID = boxID

	db := forestaut.NewBoxDB()
	db.Put(box)

	var buf bytes.Buffer
	require.NoError(t, boxdb.Save(&buf, bm, db))

	backend2 := forestaut.NewBackend()
	bm2 := backend2.Boxes
	db2 := forestaut.NewBoxDB()
	require.NoError(t, boxdb.Load(&buf, backend2, bm2, db2))

	assert.Equal(t, 1, db2.Len())
	id2, ok := bm2.Lookup("sls")
	require.True(t, ok)
	loaded, ok := db2.Get(id2)
	require.True(t, ok)
	assert.Len(t, loaded.Body.Roots, 1)
	assert.Len(t, loaded.Body.Roots[0].FinalStates(), 1)
}

func TestLoadIsIdempotentOnDuplicateNames(t *testing.T) {
	backend := forestaut.NewBackend()
	bm := backend.Boxes
	box := buildSampleBox(t, backend)
	boxID, err := bm.RegisterBox("sls", 1, nil)
	require.NoError(t, err)
	box.SignatureID = boxID
	db := forestaut.NewBoxDB()
	db.Put(box)

	var buf bytes.Buffer
	require.NoError(t, boxdb.Save(&buf, bm, db))
	content := buf.Bytes()

	backend2 := forestaut.NewBackend()
	bm2 := backend2.Boxes
	db2 := forestaut.NewBoxDB()
	require.NoError(t, boxdb.Load(bytes.NewReader(content), backend2, bm2, db2))
	require.NoError(t, boxdb.Load(bytes.NewReader(content), backend2, bm2, db2))

	assert.Equal(t, 1, db2.Len())
	assert.Equal(t, 1, bm2.Len())
}
