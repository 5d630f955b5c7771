package ir

import (
	"fmt"

	"github.com/strata-ir/strata/internal/affine"
	"github.com/strata-ir/strata/internal/rangeshape"
)

// Kernel is a parametric loop nest over IterationSpace that reads from
// source buffers and writes to target buffers through an embedded
// instruction DAG. InstructionVector holds every instruction belonging to
// the kernel in bottom-up topological (post-order) order: leaves first,
// stores last.
type Kernel struct {
	IterationSpace    rangeshape.Shape
	Sources           *assoc[*Buffer, *Stencil]     // buffer -> stencils reading it
	Targets           *assoc[*Buffer, *Instruction]  // buffer -> store instructions writing it
	InstructionVector []*Instruction
	Task              *Task
	Data              interface{}
	Number            int
}

func newKernel(iterationSpace rangeshape.Shape, number int) *Kernel {
	return &Kernel{
		IterationSpace: iterationSpace,
		Sources:        newAssoc[*Buffer, *Stencil](),
		Targets:        newAssoc[*Buffer, *Instruction](),
		Number:         number,
	}
}

// AddInstruction appends a non-iterating-source instruction (Call, or an
// Iref that does not belong to any buffer's stencil bookkeeping) to the
// kernel and renumbers. Load and Store go through AddLoad/AddStore instead,
// so that a buffer's readers/writers tables and a kernel's stencils stay
// consistent with the instruction vector.
func (k *Kernel) AddInstruction(i *Instruction) *Instruction {
	k.InstructionVector = append(k.InstructionVector, i)
	k.renumber()
	return i
}

// AddLoad attaches a new load of buf via transformation t to the kernel,
// implementing the stencil-grouping algorithm:
//  1. Among the stencils already recorded under (kernel, buf) whose
//     OutputMask and Scalings match t's, try each in insertion order.
//  2. For a candidate, compute the tentative new center as the floored
//     mean of the offsets of its members plus the new load.
//  3. Accept the first candidate for which every member (old and new)
//     stays within StencilMaxRadius of the new center on every axis.
//  4. On acceptance, update the stencil's members and center, and stop.
//  5. Otherwise, start a new stencil containing only the new load.
//
// The new load is also recorded in buf.Readers[k].
func (k *Kernel) AddLoad(buf *Buffer, t affine.Transformation) *Instruction {
	load := newLoad(buf, t)

	for _, stencil := range k.Sources.Values(buf) {
		if !maskScalingsMatch(stencil, t) {
			continue
		}
		candidateVecs := make([][]int64, 0, len(stencil.LoadInstructions)+1)
		for _, l := range stencil.LoadInstructions {
			candidateVecs = append(candidateVecs, offsets(l))
		}
		candidateVecs = append(candidateVecs, offsets(load))
		newCenter := flooredMean(candidateVecs)

		accepted := true
		for _, v := range candidateVecs {
			if !withinRadius(v, newCenter, t.OutputMask, buf) {
				accepted = false
				break
			}
		}
		if accepted {
			stencil.Center = newCenter
			stencil.LoadInstructions = append(stencil.LoadInstructions, load)
			k.finishAddLoad(buf, load)
			return load
		}
	}

	// No stencil accepted: start a new one.
	k.Sources.Append(buf, &Stencil{Center: append([]int64(nil), offsets(load)...), LoadInstructions: []*Instruction{load}})
	k.finishAddLoad(buf, load)
	return load
}

func (k *Kernel) finishAddLoad(buf *Buffer, load *Instruction) {
	buf.Readers.Append(k, load)
	k.InstructionVector = append(k.InstructionVector, load)
	k.renumber()
}

// maskScalingsMatch reports whether t's OutputMask and Scalings match the
// stencil's member loads' (all members of a stencil share these fields by
// invariant, so the first member's transformation suffices).
func maskScalingsMatch(s *Stencil, t affine.Transformation) bool {
	if len(s.LoadInstructions) == 0 {
		return false
	}
	ref := s.LoadInstructions[0].Transformation
	if len(ref.OutputMask) != len(t.OutputMask) || len(ref.Scalings) != len(t.Scalings) {
		return false
	}
	for i := range ref.OutputMask {
		a, b := ref.OutputMask[i], t.OutputMask[i]
		if (a == nil) != (b == nil) {
			return false
		}
		if a != nil && *a != *b {
			return false
		}
		if ref.Scalings[i] != t.Scalings[i] {
			return false
		}
	}
	return true
}

// AddStore attaches a store of value into buf via transformation t.
// Stores do not group: it is simply appended to k.Targets[buf] and
// buf.Writers[k].
func (k *Kernel) AddStore(buf *Buffer, value Input, t affine.Transformation) *Instruction {
	store := newStore(buf, t, value)
	k.Targets.Append(buf, store)
	buf.Writers.Append(k, store)
	k.InstructionVector = append(k.InstructionVector, store)
	k.renumber()
	return store
}

// renumber reassigns Number to every instruction in InstructionVector in
// depth-first post-order from the leaves, so a producer always receives
// a lower number than its consumers, and (assuming every value
// eventually feeds some store — true of any well-formed kernel) the
// overall maximum number is attained by a store.
func (k *Kernel) renumber() {
	visited := make(map[*Instruction]bool, len(k.InstructionVector))
	ordered := make([]*Instruction, 0, len(k.InstructionVector))
	var visit func(i *Instruction)
	visit = func(i *Instruction) {
		if visited[i] {
			return
		}
		visited[i] = true
		for _, in := range i.Inputs {
			if in.Producer != nil {
				visit(in.Producer)
			}
		}
		ordered = append(ordered, i)
	}
	for _, i := range k.InstructionVector {
		visit(i)
	}
	for idx, i := range ordered {
		i.Number = idx
	}
	k.InstructionVector = ordered
}

// HighestInstructionNumber scans only the store instructions' numbers,
// trusting the numbering discipline to have put the maximum there. The
// zero value is returned for a kernel with no stores.
func (k *Kernel) HighestInstructionNumber() int {
	highest := 0
	found := false
	for _, i := range k.InstructionVector {
		if i.Kind == KindStore {
			if !found || i.Number > highest {
				highest = i.Number
				found = true
			}
		}
	}
	return highest
}

// Cost is the cheap scheduling proxy kernel_cost: max(1, iteration space
// size * highest instruction number).
func (k *Kernel) Cost() uint64 {
	cost := k.IterationSpace.Size() * uint64(k.HighestInstructionNumber())
	if cost < 1 {
		return 1
	}
	return cost
}

// Stencils returns every stencil recorded on the kernel, across every
// source buffer, in buffer (push-to-front) then per-buffer insertion
// order.
func (k *Kernel) Stencils() []*Stencil {
	var out []*Stencil
	for _, buf := range k.Sources.Keys() {
		out = append(out, k.Sources.Values(buf)...)
	}
	return out
}

// StencilsFor returns the stencils recorded for a specific source buffer.
func (k *Kernel) StencilsFor(buf *Buffer) []*Stencil {
	return k.Sources.Values(buf)
}

// LoadInstructions returns every load instruction in the kernel, across
// every source buffer's stencils.
func (k *Kernel) LoadInstructions() []*Instruction {
	var out []*Instruction
	for _, s := range k.Stencils() {
		out = append(out, s.LoadInstructions...)
	}
	return out
}

// StoreInstructions returns every store instruction in the kernel, across
// every target buffer.
func (k *Kernel) StoreInstructions() []*Instruction {
	var out []*Instruction
	for _, buf := range k.Targets.Keys() {
		out = append(out, k.Targets.Values(buf)...)
	}
	return out
}

// InputBuffers returns the buffers the kernel reads (map_kernel_inputs).
func (k *Kernel) InputBuffers() []*Buffer { return k.Sources.Keys() }

// OutputBuffers returns the buffers the kernel writes (map_kernel_outputs).
func (k *Kernel) OutputBuffers() []*Buffer { return k.Targets.Keys() }

func (k *Kernel) String() string {
	return fmt.Sprintf("#<kernel %d iteration-space=%s>", k.Number, k.IterationSpace)
}
