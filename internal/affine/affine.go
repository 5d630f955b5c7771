// Package affine implements the affine index-transformation algebra used
// throughout the IR: the map from an iteration index to a buffer index (for
// loads, stores, and irefs), and the maps used to rewrite kernels and
// buffers in place (transform_kernel, transform_buffer).
package affine

import (
	"fmt"
	"strings"

	"github.com/strata-ir/strata/internal/irerrors"
	"github.com/strata-ir/strata/internal/rangeshape"
)

// Mask entries: for InputMask, nil means "free"; a non-nil value is the
// fixed integer the axis is required to take. For OutputMask, nil means
// "constant" (output is offsets[k] regardless of input); a non-nil value
// names the source input axis by index.
type maskEntry = *int64

// Transformation is an affine map from an input space of rank InRank to an
// output space of rank OutRank:
//
//	output[k] = Offsets[k] + Scalings[k] * input[OutputMask[k]]
//
// with Scalings[k] == 0 whenever OutputMask[k] is nil (the output axis is
// constant).
type Transformation struct {
	InRank, OutRank int
	InputMask       []maskEntry // len == InRank
	OutputMask      []*int      // len == OutRank; nil entry => constant
	Scalings        []int64     // len == OutRank
	Offsets         []int64     // len == OutRank
}

// Make constructs a Transformation from the given fields, copying slices
// defensively. inputMask entries use a pointer-to-int64 so "free" (nil) is
// distinguishable from "fixed at zero".
func Make(inRank, outRank int, inputMask []*int64, outputMask []*int, scalings, offsets []int64) Transformation {
	if len(inputMask) != inRank {
		panic("affine: len(inputMask) != inRank")
	}
	if len(outputMask) != outRank || len(scalings) != outRank || len(offsets) != outRank {
		panic("affine: output-side slices must have length outRank")
	}
	t := Transformation{
		InRank:     inRank,
		OutRank:    outRank,
		InputMask:  append([]maskEntry(nil), inputMask...),
		OutputMask: append([]*int(nil), outputMask...),
		Scalings:   append([]int64(nil), scalings...),
		Offsets:    append([]int64(nil), offsets...),
	}
	return t
}

// Identity returns the rank-n identity transformation: free inputs,
// output[k] = input[k].
func Identity(n int) Transformation {
	inputMask := make([]*int64, n)
	outputMask := make([]*int, n)
	scalings := make([]int64, n)
	offsets := make([]int64, n)
	for k := 0; k < n; k++ {
		k := k
		outputMask[k] = &k
		scalings[k] = 1
	}
	return Transformation{InRank: n, OutRank: n, InputMask: inputMask, OutputMask: outputMask, Scalings: scalings, Offsets: offsets}
}

// fixed returns a pointer to v, for building masks inline.
func fixed(v int64) *int64 { return &v }

// freeAxis returns a pointer to v, for building output masks inline.
func freeAxis(v int) *int { return &v }

// IsIdentity reports whether t acts as the identity map: same rank in and
// out, every output axis sourced from the matching input axis with
// scaling 1 and offset 0, and no input axis fixed.
func (t Transformation) IsIdentity() bool {
	if t.InRank != t.OutRank {
		return false
	}
	for _, m := range t.InputMask {
		if m != nil {
			return false
		}
	}
	for k, m := range t.OutputMask {
		if m == nil || *m != k {
			return false
		}
		if t.Scalings[k] != 1 || t.Offsets[k] != 0 {
			return false
		}
	}
	return true
}

// Apply evaluates the transformation at a fully-specified input point,
// returning the output point. Input axes marked fixed in InputMask are
// not checked against the supplied value; Apply trusts the caller to
// supply a consistent point.
func (t Transformation) Apply(input []int64) []int64 {
	if len(input) != t.InRank {
		panic("affine: Apply: input rank mismatch")
	}
	out := make([]int64, t.OutRank)
	for k := 0; k < t.OutRank; k++ {
		if t.OutputMask[k] == nil {
			out[k] = t.Offsets[k]
			continue
		}
		out[k] = t.Offsets[k] + t.Scalings[k]*input[*t.OutputMask[k]]
	}
	return out
}

// Compose returns a ∘ b: first apply b, then a. Requires a.InRank ==
// b.OutRank; otherwise returns an InvalidTransformation error, per §7's
// error taxonomy (surfaced to the caller, not a programmer-error panic).
func Compose(a, b Transformation) (Transformation, error) {
	if a.InRank != b.OutRank {
		return Transformation{}, irerrors.NewInvalidTransformation(fmt.Sprintf(
			"compose: rank mismatch, a.InRank=%d b.OutRank=%d", a.InRank, b.OutRank))
	}
	outputMask := make([]*int, a.OutRank)
	scalings := make([]int64, a.OutRank)
	offsets := make([]int64, a.OutRank)

	for k := 0; k < a.OutRank; k++ {
		if a.OutputMask[k] == nil {
			// a's output k is constant; composing with b changes nothing.
			offsets[k] = a.Offsets[k]
			continue
		}
		j := *a.OutputMask[k] // axis of a's input = axis of b's output
		if b.OutputMask[j] == nil {
			// b's output j is constant: a's output k becomes constant too.
			offsets[k] = a.Offsets[k] + a.Scalings[k]*b.Offsets[j]
			continue
		}
		outputMask[k] = freeAxis(*b.OutputMask[j])
		scalings[k] = a.Scalings[k] * b.Scalings[j]
		offsets[k] = a.Offsets[k] + a.Scalings[k]*b.Offsets[j]
	}

	return Transformation{
		InRank:     b.InRank,
		OutRank:    a.OutRank,
		InputMask:  append([]maskEntry(nil), b.InputMask...),
		OutputMask: outputMask,
		Scalings:   scalings,
		Offsets:    offsets,
	}, nil
}

// Invert computes the inverse of t, valid iff t is a bijection on its
// unconstrained axes: every input axis not fixed by InputMask must be the
// source of exactly one output axis (a permutation, possibly scaled), and
// every such scaling must be ±1 so the inverse scaling is exact over the
// integers.
func Invert(t Transformation) (Transformation, error) {
	sourceOf := make([]int, t.InRank) // output axis (or -1) sourcing each input axis
	for i := range sourceOf {
		sourceOf[i] = -1
	}
	for k := 0; k < t.OutRank; k++ {
		if t.OutputMask[k] == nil {
			continue
		}
		j := *t.OutputMask[k]
		if sourceOf[j] != -1 {
			return Transformation{}, irerrors.NewInvalidTransformation(
				fmt.Sprintf("invert: input axis %d is sourced by more than one output axis", j))
		}
		sourceOf[j] = k
	}

	inRank := t.OutRank
	outRank := t.InRank
	inputMask := make([]maskEntry, inRank)
	outputMask := make([]*int, outRank)
	scalings := make([]int64, outRank)
	offsets := make([]int64, outRank)

	for j := 0; j < t.InRank; j++ {
		if t.InputMask[j] != nil {
			// j was fixed in the forward map: it becomes a constant output
			// axis of the inverse, at the value it was fixed to.
			outputMask[j] = nil
			offsets[j] = *t.InputMask[j]
			continue
		}
		k := sourceOf[j]
		if k == -1 {
			return Transformation{}, irerrors.NewInvalidTransformation(
				fmt.Sprintf("invert: free input axis %d is not the source of any output axis", j))
		}
		if t.Scalings[k] != 1 && t.Scalings[k] != -1 {
			return Transformation{}, irerrors.NewInvalidTransformation(
				fmt.Sprintf("invert: non-unit scaling %d on output axis %d is not invertible over the integers", t.Scalings[k], k))
		}
		outputMask[j] = freeAxis(k)
		scalings[j] = t.Scalings[k] // ±1, self-inverse
		offsets[j] = -t.Offsets[k] / t.Scalings[k]
	}

	return Transformation{
		InRank:     inRank,
		OutRank:    outRank,
		InputMask:  inputMask,
		OutputMask: outputMask,
		Scalings:   scalings,
		Offsets:    offsets,
	}, nil
}

// ApplyToShape rewrites a shape of rank t.InRank (the thing being
// reshaped) into one of rank t.OutRank, by mapping each output axis to the
// (possibly scaled, offset) range of its source input axis, or a size-one
// range when the output axis is constant. An input axis fixed by
// InputMask to a value that is not an element of the shape's range on
// that axis is reported as an InvalidTransformation error.
func ApplyToShape(t Transformation, s rangeshape.Shape) (rangeshape.Shape, error) {
	if s.Rank() != t.InRank {
		return rangeshape.Shape{}, irerrors.NewShapeMismatch(
			"apply-to-shape: rank mismatch",
			fmt.Sprintf("rank %d", s.Rank()),
			fmt.Sprintf("rank %d", t.InRank))
	}
	for j, m := range t.InputMask {
		if m == nil {
			continue
		}
		r := s.Ranges[j]
		d := *m - r.Start
		if d < 0 || d%r.Step != 0 || uint64(d/r.Step) >= r.Size {
			return rangeshape.Shape{}, irerrors.NewInvalidTransformation(fmt.Sprintf(
				"apply-to-shape: input axis %d is fixed at %d, which is not in %s", j, *m, r))
		}
	}
	ranges := make([]rangeshape.Range, t.OutRank)
	for k := 0; k < t.OutRank; k++ {
		if t.OutputMask[k] == nil {
			ranges[k] = rangeshape.NewRange(t.Offsets[k], 1, 1)
			continue
		}
		src := s.Ranges[*t.OutputMask[k]]
		step := t.Scalings[k] * src.Step
		if step < 0 {
			step = -step
		}
		if step == 0 {
			step = 1
		}
		start := t.Offsets[k] + t.Scalings[k]*src.Start
		if t.Scalings[k] < 0 && src.Size > 0 {
			// A negative scaling reverses the range: its lowest element is
			// the image of the source range's last element.
			start = t.Offsets[k] + t.Scalings[k]*src.At(src.Size-1)
		}
		ranges[k] = rangeshape.NewRange(start, step, src.Size)
	}
	return rangeshape.NewShape(ranges...), nil
}

func (t Transformation) String() string {
	parts := make([]string, t.OutRank)
	for k := 0; k < t.OutRank; k++ {
		if t.OutputMask[k] == nil {
			parts[k] = fmt.Sprintf("%d", t.Offsets[k])
			continue
		}
		parts[k] = fmt.Sprintf("%d+%d*x%d", t.Offsets[k], t.Scalings[k], *t.OutputMask[k])
	}
	return fmt.Sprintf("(transformation %d->%d [%s])", t.InRank, t.OutRank, strings.Join(parts, ", "))
}

// Fixed is exported for callers building an InputMask inline.
func Fixed(v int64) *int64 { return fixed(v) }

// FreeAxis is exported for callers building an OutputMask inline.
func FreeAxis(v int) *int { return freeAxis(v) }
