// Package traverse gives the graph's map_* traversal primitives a single,
// uniform surface. Each entity already exposes the relevant iteration as
// a plain slice-returning method (Buffer.LoadInstructions,
// Kernel.Stencils, and so on); this package is the thin, uniformly-named
// adapter over those methods, plus a Do* callback form for callers that
// want visitor-style iteration instead of a slice.
//
// Every Map* function returns a fresh slice snapshotting the underlying
// container at call time, so a caller that mutates the same container
// from within a Do* callback cannot observe its own edit mid-iteration.
package traverse

import "github.com/strata-ir/strata/internal/ir"

func MapProgramTasks(p *ir.Program) []*ir.Task { return append([]*ir.Task(nil), p.TaskVector...) }

func MapProgramBuffers(p *ir.Program) []*ir.Buffer { return append([]*ir.Buffer(nil), p.Buffers...) }

func MapProgramKernels(p *ir.Program) []*ir.Kernel { return append([]*ir.Kernel(nil), p.Kernels...) }

func MapTaskPredecessors(t *ir.Task) []*ir.Task { return t.Predecessors.Items() }

func MapTaskSuccessors(t *ir.Task) []*ir.Task { return t.Successors.Items() }

func MapTaskKernels(t *ir.Task) []*ir.Kernel { return append([]*ir.Kernel(nil), t.Kernels...) }

func MapTaskDefinedBuffers(t *ir.Task) []*ir.Buffer {
	return append([]*ir.Buffer(nil), t.DefinedBuffers...)
}

func MapBufferInputs(b *ir.Buffer) []*ir.Kernel { return b.InputKernels() }

func MapBufferOutputs(b *ir.Buffer) []*ir.Kernel { return b.OutputKernels() }

func MapBufferLoadInstructions(b *ir.Buffer) []*ir.Instruction { return b.LoadInstructions() }

func MapBufferStoreInstructions(b *ir.Buffer) []*ir.Instruction { return b.StoreInstructions() }

func MapKernelInputs(k *ir.Kernel) []*ir.Buffer { return k.InputBuffers() }

func MapKernelOutputs(k *ir.Kernel) []*ir.Buffer { return k.OutputBuffers() }

func MapKernelStencils(k *ir.Kernel) []*ir.Stencil { return k.Stencils() }

func MapKernelLoadInstructions(k *ir.Kernel) []*ir.Instruction { return k.LoadInstructions() }

func MapKernelStoreInstructions(k *ir.Kernel) []*ir.Instruction { return k.StoreInstructions() }

func MapKernelInstructions(k *ir.Kernel) []*ir.Instruction {
	return append([]*ir.Instruction(nil), k.InstructionVector...)
}

func MapStencilLoadInstructions(s *ir.Stencil) []*ir.Instruction {
	return append([]*ir.Instruction(nil), s.LoadInstructions...)
}

func MapInstructionInputs(i *ir.Instruction) []ir.Input {
	return append([]ir.Input(nil), i.Inputs...)
}

// KernelStencils is the "kernel_stencils(kernel, buffer)" helper named in
// the reuse-analysis design note: the stencils a kernel holds for one
// specific source buffer, rather than all of them.
func KernelStencils(k *ir.Kernel, b *ir.Buffer) []*ir.Stencil { return k.StencilsFor(b) }

// Do* variants: visitor-callback iteration over the same snapshots, for
// callers that prefer not to hold the intermediate slice.

func DoProgramTasks(p *ir.Program, f func(*ir.Task)) { forEach(MapProgramTasks(p), f) }
func DoProgramBuffers(p *ir.Program, f func(*ir.Buffer)) { forEach(MapProgramBuffers(p), f) }
func DoProgramKernels(p *ir.Program, f func(*ir.Kernel)) { forEach(MapProgramKernels(p), f) }
func DoTaskKernels(t *ir.Task, f func(*ir.Kernel)) { forEach(MapTaskKernels(t), f) }
func DoTaskDefinedBuffers(t *ir.Task, f func(*ir.Buffer)) { forEach(MapTaskDefinedBuffers(t), f) }
func DoKernelInstructions(k *ir.Kernel, f func(*ir.Instruction)) { forEach(MapKernelInstructions(k), f) }
func DoKernelStencils(k *ir.Kernel, f func(*ir.Stencil)) { forEach(MapKernelStencils(k), f) }

func forEach[T any](items []T, f func(T)) {
	for _, item := range items {
		f(item)
	}
}
