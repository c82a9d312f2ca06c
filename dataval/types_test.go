package dataval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forestfa/fa/dataval"
)

func TestZeroValueIsUndef(t *testing.T) {
	var d dataval.Data
	assert.Equal(t, dataval.KindUndef, d.Kind())
}

func TestEqualByKind(t *testing.T) {
	tests := []struct {
		name  string
		a, b  dataval.Data
		equal bool
	}{
		{"two undefs", dataval.NewUndef(), dataval.NewUndef(), true},
		{"two nulls", dataval.NewNull(), dataval.NewNull(), true},
		{"same int", dataval.NewInt(42), dataval.NewInt(42), true},
		{"diff int", dataval.NewInt(1), dataval.NewInt(2), false},
		{"same ref", dataval.NewRef(1, 8), dataval.NewRef(1, 8), true},
		{"diff ref root", dataval.NewRef(1, 8), dataval.NewRef(2, 8), false},
		{"diff ref displ", dataval.NewRef(1, 8), dataval.NewRef(1, 16), false},
		{"null vs undef", dataval.NewNull(), dataval.NewUndef(), false},
		{"int vs bool", dataval.NewInt(0), dataval.NewBool(false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, dataval.Equal(tt.a, tt.b))
			if tt.equal {
				assert.Equal(t, dataval.Hash(tt.a), dataval.Hash(tt.b))
			}
		})
	}
}

func TestStructFieldsCanonicalOrder(t *testing.T) {
	a := dataval.NewStruct([]dataval.StructField{
		{Offset: 8, Value: dataval.NewInt(1)},
		{Offset: 0, Value: dataval.NewNull()},
	})
	b := dataval.NewStruct([]dataval.StructField{
		{Offset: 0, Value: dataval.NewNull()},
		{Offset: 8, Value: dataval.NewInt(1)},
	})
	assert.True(t, dataval.Equal(a, b))
	assert.Equal(t, dataval.Hash(a), dataval.Hash(b))
}

func TestAccessorPanicsOnWrongKind(t *testing.T) {
	d := dataval.NewInt(1)
	assert.Panics(t, func() { _ = d.Bool() })
}

func TestCustomRangeContains(t *testing.T) {
	r := dataval.NewCustomRange(1, 3).Range()
	assert.True(t, r.Contains(1))
	assert.True(t, r.Contains(3))
	assert.False(t, r.Contains(4))
}

func TestNewCustomRangePanicsOnInverted(t *testing.T) {
	assert.Panics(t, func() { dataval.NewCustomRange(3, 1) })
}
