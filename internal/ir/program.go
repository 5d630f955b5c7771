// Package ir is the post-lowering intermediate representation: programs,
// tasks, buffers, kernels, stencils, and instructions, together with the
// construction operations (stencil-grouping load/store insertion,
// instruction numbering) that keep the graph well-formed as it is built
// and mutated. Buffer, Kernel, Task, and Instruction all live in one
// package rather than one-per-entity, because they cross-reference each
// other cyclically (a kernel's sources point at buffers, a buffer's
// writers point back at kernels, a kernel and buffer both point at their
// task) — see DESIGN.md for why that ruled out a strict one-type-per-
// package split. Algorithms that only need read access to this graph
// (traversal, transform, reuse analysis, structural edits) live in
// sibling packages that import ir, never the reverse.
//
// Cross-entity references are plain Go pointers rather than arena
// indices into parallel slices; see DESIGN.md for the tradeoff against
// an index-based alternative.
package ir

import (
	"fmt"

	"github.com/strata-ir/strata/internal/ntype"
	"github.com/strata-ir/strata/internal/rangeshape"
)

// LeafBinding pairs a leaf buffer with the original lazy-array handle it
// was lowered from, recorded in Program.LeafAlist.
type LeafBinding struct {
	Buffer *Buffer
	Handle interface{}
}

// Program is the top-level IR container for one compilation. It owns
// every task, kernel, and buffer reachable from RootBuffers, stored in
// flat arenas (Buffers, Kernels) indexed by each entity's Number — giving
// ProgramBuffer/ProgramKernel (in package edit) O(1) lookup instead of
// the O(N) scan a plain association list would require.
type Program struct {
	InitialTask *Task
	FinalTask   *Task
	TaskVector  []*Task
	LeafAlist   []LeafBinding
	RootBuffers []*Buffer

	Buffers []*Buffer // arena, indexed by Buffer.Number
	Kernels []*Kernel // arena, indexed by Kernel.Number
}

// NewProgram returns an empty program with no tasks yet. Callers build up
// the graph with NewTask, NewBuffer, and NewKernel, then set InitialTask/
// FinalTask once the task DAG's unique source and sink are known (see
// Builder for a convenience wrapper used by tests and the CLI demo).
func NewProgram() *Program {
	return &Program{}
}

// NewTask creates a task owned by p and appends it to TaskVector; its
// Number equals its index in TaskVector.
func (p *Program) NewTask() *Task {
	t := newTask(p, len(p.TaskVector))
	p.TaskVector = append(p.TaskVector, t)
	return t
}

// NumberOfTasks is the task counter backing TaskVector's length.
func (p *Program) NumberOfTasks() int { return len(p.TaskVector) }

// NumberOfBuffers is the buffer counter backing the Buffers arena's
// length.
func (p *Program) NumberOfBuffers() int { return len(p.Buffers) }

// NumberOfKernels is the kernel counter backing the Kernels arena's
// length.
func (p *Program) NumberOfKernels() int { return len(p.Kernels) }

// NewBuffer creates a buffer owned by task, appends it to the program's
// buffer arena, and registers it in task.DefinedBuffers.
func (p *Program) NewBuffer(task *Task, shape rangeshape.Shape, nt ntype.Ntype, depth int) *Buffer {
	b := newBuffer(shape, nt, depth, len(p.Buffers))
	b.Task = task
	p.Buffers = append(p.Buffers, b)
	task.DefinedBuffers = append(task.DefinedBuffers, b)
	return b
}

// NewKernel creates a kernel owned by task, appends it to the program's
// kernel arena, and registers it in task.Kernels.
func (p *Program) NewKernel(task *Task, iterationSpace rangeshape.Shape) *Kernel {
	k := newKernel(iterationSpace, len(p.Kernels))
	k.Task = task
	p.Kernels = append(p.Kernels, k)
	task.Kernels = append(task.Kernels, k)
	return k
}

// AddLeafBinding records a leaf buffer's original lazy-array handle. When
// handle is an ExternalArray, it is checked against b's shape and ntype
// first (§7's array/buffer mismatch check); any other handle type is
// recorded unchecked, since the IR treats the lazy-array handle as
// otherwise opaque.
func (p *Program) AddLeafBinding(b *Buffer, handle interface{}) error {
	if arr, ok := handle.(ExternalArray); ok {
		if err := CheckArrayBuffer(b, arr); err != nil {
			return err
		}
	}
	p.LeafAlist = append(p.LeafAlist, LeafBinding{Buffer: b, Handle: handle})
	return nil
}

func (p *Program) String() string {
	return fmt.Sprintf("#<program tasks=%d kernels=%d buffers=%d>", len(p.TaskVector), len(p.Kernels), len(p.Buffers))
}
