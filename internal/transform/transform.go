// Package transform implements the semantics-preserving rewrites:
// transform_buffer reshapes a buffer and updates every instruction that
// indexes into it; transform_kernel reshapes a kernel's iteration space
// and updates every iterating instruction inside it.
package transform

import (
	"github.com/strata-ir/strata/internal/affine"
	"github.com/strata-ir/strata/internal/ir"
)

// Buffer replaces b.Shape with ApplyToShape(t, b.Shape), then composes t
// onto the output side of every load and store instruction referencing
// b: i.Transformation <- Compose(t, i.Transformation). This updates the
// mapping from iteration index to buffer index to target b's new shape
// while preserving which physical element each instruction accesses.
func Buffer(b *ir.Buffer, t affine.Transformation) error {
	newShape, err := affine.ApplyToShape(t, b.Shape)
	if err != nil {
		return err
	}
	b.Shape = newShape

	for _, i := range b.LoadInstructions() {
		composed, err := affine.Compose(t, i.Transformation)
		if err != nil {
			return err
		}
		i.Transformation = composed
	}
	for _, i := range b.StoreInstructions() {
		composed, err := affine.Compose(t, i.Transformation)
		if err != nil {
			return err
		}
		i.Transformation = composed
	}
	return nil
}

// Kernel implements transform_kernel: if t is the identity, the iteration
// space is left untouched. Otherwise k.IterationSpace <-
// ApplyToShape(t, k.IterationSpace), and for every iterating instruction
// (Iref, Load, Store — every variant carrying a Transformation) in k,
// i.Transformation <- Compose(i.Transformation, invert(t)). This applies
// t's inverse on the input side so the composition
// i.Transformation ∘ invert(t) ∘ t equals the original mapping.
//
// Regardless of whether t is the identity, every stencil in k has its
// Center recomputed from its members' current offsets, since a rewrite
// (or repeated identity transforms) may have shifted them.
func Kernel(k *ir.Kernel, t affine.Transformation) error {
	if !t.IsIdentity() {
		newSpace, err := affine.ApplyToShape(t, k.IterationSpace)
		if err != nil {
			return err
		}
		tInv, err := affine.Invert(t)
		if err != nil {
			return err
		}
		for _, i := range k.InstructionVector {
			if i.Kind == ir.KindCall {
				continue
			}
			composed, err := affine.Compose(i.Transformation, tInv)
			if err != nil {
				return err
			}
			i.Transformation = composed
		}
		k.IterationSpace = newSpace
	}

	for _, s := range k.Stencils() {
		s.RecomputeCenter()
	}
	return nil
}
