package reuse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-ir/strata/internal/affine"
	"github.com/strata-ir/strata/internal/ir"
	"github.com/strata-ir/strata/internal/ntype"
	"github.com/strata-ir/strata/internal/rangeshape"
	"github.com/strata-ir/strata/internal/reuse"
)

func loadTransform(offset int64) affine.Transformation {
	return affine.Make(1, 1, []*int64{nil}, []*int{affine.FreeAxis(0)}, []int64{1}, []int64{offset})
}

// Scenario 2: kernel_reuse_potential[0] = 2 for a three-point
// stencil (one class of size 3 contributes 3-1 = 2 pairs).
func TestKernelReusePotentialThreePointStencil(t *testing.T) {
	b := ir.NewBuilder()
	shape := rangeshape.NewShape(rangeshape.NewRange(0, 1, 100))
	buf := b.Buffer(shape, ntype.Float64, 0)
	k := b.Kernel(shape)

	k.AddLoad(buf, loadTransform(-1))
	k.AddLoad(buf, loadTransform(0))
	k.AddLoad(buf, loadTransform(1))

	r := reuse.KernelReusePotential(k)
	require.Len(t, r, 1)
	assert.Equal(t, uint64(2), r[0])
}

// Scenario 1: a single-load identity copy kernel has zero reuse
// potential on every axis (no stencil has more than one member).
func TestKernelReusePotentialSingleLoadIsZero(t *testing.T) {
	b := ir.NewBuilder()
	shape := rangeshape.NewShape(rangeshape.NewRange(0, 1, 10))
	buf := b.Buffer(shape, ntype.Float64, 0)
	k := b.Kernel(shape)
	k.AddLoad(buf, affine.Identity(1))

	r := reuse.KernelReusePotential(k)
	assert.Equal(t, []uint64{0}, r)
}

// permutedLoad builds a rank-2-iteration-space, rank-3-buffer load
// transformation whose output axes 0 and 1 source input (iteration) axes
// 1 and 0 respectively — a genuine axis permutation, with output axis 2 a
// further (non-permuted, non-constant) source of input axis 0, so the
// transformation's OutRank (3) exceeds the kernel's iteration rank (2).
func permutedLoad(axis0, axis1, axis2 int64) affine.Transformation {
	return affine.Make(2, 3,
		[]*int64{nil, nil},
		[]*int{affine.FreeAxis(1), affine.FreeAxis(0), affine.FreeAxis(0)},
		[]int64{1, 1, 1},
		[]int64{axis0, axis1, axis2})
}

// KernelReusePotential must credit the stencil's reuse pairs to the
// *input* (iteration) axis sourcing the differing output axis, not the
// output axis index itself, and must do so without indexing past the end
// of its iteration-rank-sized result vector even when the load's output
// rank (buffer rank) exceeds the iteration rank.
func TestKernelReusePotentialCreditsInputAxisNotOutputAxis(t *testing.T) {
	b := ir.NewBuilder()
	bufShape := rangeshape.NewShape(
		rangeshape.NewRange(0, 1, 20), rangeshape.NewRange(0, 1, 20), rangeshape.NewRange(0, 1, 20))
	buf := b.Buffer(bufShape, ntype.Float64, 0)

	iterShape := rangeshape.NewShape(rangeshape.NewRange(0, 1, 20), rangeshape.NewRange(0, 1, 20))
	k := b.Kernel(iterShape)

	// Output axis 0 (sourced from input axis 1) varies across the three
	// loads; output axes 1 and 2 (both sourced from input axis 0) agree
	// across all three, so the three-member class belongs entirely to
	// input axis 1, not input axis 0 and not output-axis-index 2 (which
	// would be out of range for a length-2 result).
	k.AddLoad(buf, permutedLoad(-1, 5, -1))
	k.AddLoad(buf, permutedLoad(0, 5, -1))
	k.AddLoad(buf, permutedLoad(1, 5, -1))

	r := reuse.KernelReusePotential(k)
	require.Len(t, r, 2)
	assert.Equal(t, []uint64{0, 2}, r)
}

// BufferReusePotential weights each reuse pair by the consuming kernel's
// trip count on the corresponding axis.
func TestBufferReusePotentialWeightsByTripCount(t *testing.T) {
	b := ir.NewBuilder()
	shape := rangeshape.NewShape(rangeshape.NewRange(0, 1, 100))
	buf := b.Buffer(shape, ntype.Float64, 0)

	bigSpace := rangeshape.NewShape(rangeshape.NewRange(0, 1, 40))
	k := b.Kernel(bigSpace)
	k.AddLoad(buf, loadTransform(-1))
	k.AddLoad(buf, loadTransform(0))
	k.AddLoad(buf, loadTransform(1))

	r := reuse.BufferReusePotential(buf)
	require.Len(t, r, 1)
	// one class of size 3 -> (3-1) pairs, weighted by the reader
	// kernel's trip count (40) on the axis sourcing output axis 0.
	assert.Equal(t, uint64(2*40), r[0])
}

// A buffer with no readers has zero reuse potential on every axis.
func TestBufferReusePotentialNoReadersIsZero(t *testing.T) {
	b := ir.NewBuilder()
	shape := rangeshape.NewShape(rangeshape.NewRange(0, 1, 10))
	buf := b.Buffer(shape, ntype.Float64, 0)

	r := reuse.BufferReusePotential(buf)
	assert.Equal(t, []uint64{0}, r)
}

// Reuse-optimizing sort stability: equal reuse values preserve axis
// order.
func TestReuseOptimizingTransformationStableOnTies(t *testing.T) {
	r := []uint64{5, 5, 5}
	tr := reuse.ReuseOptimizingTransformation(r)
	for k := 0; k < 3; k++ {
		require.NotNil(t, tr.OutputMask[k])
		assert.Equal(t, k, *tr.OutputMask[k])
	}
}

// Axes are ordered ascending by reuse potential: the lowest-reuse axis
// becomes outermost (output axis 0), highest-reuse becomes innermost.
func TestReuseOptimizingTransformationOrdersAscending(t *testing.T) {
	r := []uint64{10, 0, 5}
	tr := reuse.ReuseOptimizingTransformation(r)
	got := []int{*tr.OutputMask[0], *tr.OutputMask[1], *tr.OutputMask[2]}
	assert.Equal(t, []int{1, 2, 0}, got)
}
