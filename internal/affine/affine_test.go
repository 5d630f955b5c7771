package affine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-ir/strata/internal/rangeshape"
)

func TestIdentityIsIdentity(t *testing.T) {
	id := Identity(3)
	assert.True(t, id.IsIdentity())
	assert.Equal(t, []int64{1, 2, 3}, id.Apply([]int64{1, 2, 3}))
}

func TestNonIdentityIsNotIdentity(t *testing.T) {
	t2 := Make(1, 1, []*int64{nil}, []*int{FreeAxis(0)}, []int64{2}, []int64{1})
	assert.False(t, t2.IsIdentity())
}

// swapAxes01 builds the rank-2 transformation that swaps axes 0 and 1.
func swapAxes01() Transformation {
	return Make(2, 2,
		[]*int64{nil, nil},
		[]*int{FreeAxis(1), FreeAxis(0)},
		[]int64{1, 1},
		[]int64{0, 0},
	)
}

func TestComposeWithIdentityIsNoOp(t *testing.T) {
	swap := swapAxes01()
	id := Identity(2)
	composed, err := Compose(swap, id)
	require.NoError(t, err)
	assert.Equal(t, swap.Apply([]int64{3, 5}), composed.Apply([]int64{3, 5}))
}

func TestInvertSwapIsSelfInverse(t *testing.T) {
	swap := swapAxes01()
	inv, err := Invert(swap)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3}, swap.Apply([]int64{3, 5}))
	assert.Equal(t, []int64{5, 3}, inv.Apply([]int64{3, 5}))
}

func TestInvertScaledOffsetTransformation(t *testing.T) {
	// output = 10 + (-1) * input[0]: a rank-1 reflection with offset.
	tr := Make(1, 1, []*int64{nil}, []*int{FreeAxis(0)}, []int64{-1}, []int64{10})
	inv, err := Invert(tr)
	require.NoError(t, err)

	for _, x := range []int64{0, 3, 10, -4} {
		y := tr.Apply([]int64{x})
		back := inv.Apply(y)
		assert.Equal(t, []int64{x}, back, "roundtrip through invert should recover the original point")
	}
}

func TestInvertRejectsNonUnitScaling(t *testing.T) {
	tr := Make(1, 1, []*int64{nil}, []*int{FreeAxis(0)}, []int64{2}, []int64{0})
	_, err := Invert(tr)
	assert.Error(t, err)
}

func TestInvertRejectsSharedSource(t *testing.T) {
	// Two output axes both sourced from input axis 0: not a bijection.
	tr := Make(1, 2, []*int64{nil}, []*int{FreeAxis(0), FreeAxis(0)}, []int64{1, 1}, []int64{0, 0})
	_, err := Invert(tr)
	assert.Error(t, err)
}

func TestComposeRankMismatchReturnsError(t *testing.T) {
	a := Identity(2)
	b := Identity(3)
	_, err := Compose(a, b)
	assert.Error(t, err)
}

func TestApplyToShapeSwapsRanges(t *testing.T) {
	shape := rangeshape.NewShape(rangeshape.NewRange(0, 1, 3), rangeshape.NewRange(0, 2, 5))
	swap := swapAxes01()
	out, err := ApplyToShape(swap, shape)
	require.NoError(t, err)
	assert.True(t, out.Ranges[0].Eq(shape.Ranges[1]))
	assert.True(t, out.Ranges[1].Eq(shape.Ranges[0]))
}

func TestApplyToShapeConstantAxisProducesSizeOneRange(t *testing.T) {
	// Drop axis 0 entirely, producing a size-one constant axis at value 7.
	tr := Make(1, 1, []*int64{nil}, []*int{nil}, []int64{0}, []int64{7})
	shape := rangeshape.NewShape(rangeshape.NewRange(0, 1, 4))
	out, err := ApplyToShape(tr, shape)
	require.NoError(t, err)
	assert.True(t, out.Ranges[0].SizeOne())
	assert.Equal(t, int64(7), out.Ranges[0].Start)
}

func TestApplyToShapeRankMismatch(t *testing.T) {
	tr := Identity(2)
	shape := rangeshape.NewShape(rangeshape.NewRange(0, 1, 4))
	_, err := ApplyToShape(tr, shape)
	assert.Error(t, err)
}
