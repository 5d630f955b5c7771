package ir

import "fmt"

// StencilMaxRadius bounds how far a load's offset may drift from its
// stencil's center along any axis, scaled by that axis's step. Tunable.
const StencilMaxRadius = 7

// Stencil clusters loads on the same buffer whose affine access patterns
// match (same OutputMask and Scalings) and whose offsets lie within
// StencilMaxRadius of a shared, floored-mean Center.
type Stencil struct {
	Center           []int64
	LoadInstructions []*Instruction
}

// offsets extracts a load instruction's per-output-axis offset vector.
func offsets(load *Instruction) []int64 {
	return load.Transformation.Offsets
}

// flooredMean computes the componentwise floored integer mean of a set of
// offset vectors, all required to share the same length. Panics (a
// programmer-error assertion, not a runtime condition) on a length
// mismatch or empty input.
func flooredMean(vecs [][]int64) []int64 {
	if len(vecs) == 0 {
		panic("ir: flooredMean: empty input")
	}
	k := len(vecs[0])
	sum := make([]int64, k)
	for _, v := range vecs {
		if len(v) != k {
			panic("ir: flooredMean: offset vectors of differing length")
		}
		for i, x := range v {
			sum[i] += x
		}
	}
	n := int64(len(vecs))
	mean := make([]int64, k)
	for i, s := range sum {
		mean[i] = floorDiv(s, n)
	}
	return mean
}

// floorDiv is integer division rounding toward negative infinity, needed
// since Go's / truncates toward zero.
func floorDiv(a, b int64) int64 {
	q := a / b
	r := a % b
	if (r != 0) && ((r < 0) != (b < 0)) {
		q--
	}
	return q
}

// withinRadius reports whether every axis of offs lies within
// StencilMaxRadius steps of center, scaled by buf's shape range step at
// the axis named by outputMask[axis] (skipping constant output axes).
func withinRadius(offs, center []int64, outputMask []*int, buf *Buffer) bool {
	for axis := range offs {
		if outputMask[axis] == nil {
			continue
		}
		inputAxis := *outputMask[axis]
		step := buf.Shape.Ranges[inputAxis].Step
		diff := offs[axis] - center[axis]
		if diff < 0 {
			diff = -diff
		}
		if diff > StencilMaxRadius*step {
			return false
		}
	}
	return true
}

func (s *Stencil) String() string {
	return fmt.Sprintf("#<stencil center=%v loads=%d>", s.Center, len(s.LoadInstructions))
}

// RecomputeCenter recomputes Center from the current offsets of
// LoadInstructions. Used by transform_kernel, which may have shifted
// offsets without going through the grouping insertion path.
func (s *Stencil) RecomputeCenter() {
	vecs := make([][]int64, len(s.LoadInstructions))
	for i, l := range s.LoadInstructions {
		vecs[i] = offsets(l)
	}
	s.Center = flooredMean(vecs)
}
