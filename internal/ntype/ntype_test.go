package ntype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/strata-ir/strata/internal/ntype"
)

func TestEq(t *testing.T) {
	assert.True(t, ntype.Eq(ntype.Int32, ntype.Int32))
	assert.False(t, ntype.Eq(ntype.Int32, ntype.Int64))
	assert.True(t, ntype.Eq(nil, nil))
	assert.False(t, ntype.Eq(ntype.Int32, nil))
}

func TestUpgradedArrayElementNtypeByRank(t *testing.T) {
	assert.Equal(t, ntype.Float64, ntype.UpgradedArrayElementNtype(ntype.Int32, ntype.Float64))
	assert.Equal(t, ntype.Float64, ntype.UpgradedArrayElementNtype(ntype.Float64, ntype.Int32))
	assert.Equal(t, ntype.Int64, ntype.UpgradedArrayElementNtype(ntype.Int64, ntype.Bool))
}

func TestUpgradedArrayElementNtypeIdempotent(t *testing.T) {
	assert.Equal(t, ntype.Float32, ntype.UpgradedArrayElementNtype(ntype.Float32, ntype.Float32))
}

func TestUpgradedArrayElementNtypeCommutative(t *testing.T) {
	for _, pair := range [][2]ntype.Ntype{
		{ntype.Bool, ntype.Int32},
		{ntype.Int32, ntype.Int64},
		{ntype.Float32, ntype.Float64},
	} {
		a := ntype.UpgradedArrayElementNtype(pair[0], pair[1])
		b := ntype.UpgradedArrayElementNtype(pair[1], pair[0])
		assert.True(t, ntype.Eq(a, b))
	}
}
